package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/architeacher/storefront/pkg/circuitbreaker"
	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/infrastructure"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

const (
	productCacheVersion = "v1"
	productKeyPrefix    = "product:" + productCacheVersion + ":"
	searchKeyPrefix     = "products:search:" + productCacheVersion + ":"
)

type (
	cachedProduct struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Brand       string    `json:"brand"`
		Price       float64   `json:"price"`
		Stock       int64     `json:"stock"`
		CategoryID  string    `json:"category_id,omitempty"`
		Rating      float64   `json:"rating"`
		ReviewCount int64     `json:"review_count"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	cachedProductList struct {
		Products   []cachedProduct  `json:"products"`
		Pagination model.Pagination `json:"pagination"`
	}

	// ProductsCacheRepository keeps products and search pages in KeyDB.
	// Calls run through a circuit breaker so an unhealthy cache is skipped
	// quickly instead of slowing every read.
	ProductsCacheRepository struct {
		client  *infrastructure.KeydbClient
		breaker *circuitbreaker.CircuitBreaker[[]byte]
		logger  logger.Logger
	}
)

var _ ports.ProductsCache = (*ProductsCacheRepository)(nil)

func NewProductsCacheRepository(
	client *infrastructure.KeydbClient,
	breaker *circuitbreaker.CircuitBreaker[[]byte],
	log logger.Logger,
) *ProductsCacheRepository {
	return &ProductsCacheRepository{
		client:  client,
		breaker: breaker,
		logger:  log,
	}
}

func (r *ProductsCacheRepository) GetProduct(ctx context.Context, id model.ProductID) (ports.CacheResult[*model.Product], error) {
	data, hit, err := r.get(ctx, productKey(id))
	if err != nil || !hit {
		return ports.CacheResult[*model.Product]{}, err
	}

	var cached cachedProduct
	if err := json.Unmarshal(data, &cached); err != nil {
		return ports.CacheResult[*model.Product]{}, fmt.Errorf("unmarshalling cached product: %w", err)
	}

	product, err := cached.toProduct()
	if err != nil {
		return ports.CacheResult[*model.Product]{}, fmt.Errorf("converting cached product: %w", err)
	}

	return ports.CacheResult[*model.Product]{Value: product, Hit: true}, nil
}

func (r *ProductsCacheRepository) SetProduct(ctx context.Context, product *model.Product, ttl time.Duration) error {
	data, err := json.Marshal(toCachedProduct(product))
	if err != nil {
		return fmt.Errorf("marshalling product: %w", err)
	}

	return r.set(ctx, productKey(product.ID), data, ttl)
}

func (r *ProductsCacheRepository) GetSearch(ctx context.Context, key string) (ports.CacheResult[*model.ProductList], error) {
	data, hit, err := r.get(ctx, searchKeyPrefix+key)
	if err != nil || !hit {
		return ports.CacheResult[*model.ProductList]{}, err
	}

	var cached cachedProductList
	if err := json.Unmarshal(data, &cached); err != nil {
		return ports.CacheResult[*model.ProductList]{}, fmt.Errorf("unmarshalling cached search: %w", err)
	}

	list := &model.ProductList{
		Products:   make([]*model.Product, 0, len(cached.Products)),
		Pagination: cached.Pagination,
	}

	for index := range cached.Products {
		product, err := cached.Products[index].toProduct()
		if err != nil {
			return ports.CacheResult[*model.ProductList]{}, fmt.Errorf("converting cached product at index %d: %w", index, err)
		}

		list.Products = append(list.Products, product)
	}

	return ports.CacheResult[*model.ProductList]{Value: list, Hit: true}, nil
}

func (r *ProductsCacheRepository) SetSearch(ctx context.Context, key string, list *model.ProductList, ttl time.Duration) error {
	cached := cachedProductList{
		Products:   make([]cachedProduct, len(list.Products)),
		Pagination: list.Pagination,
	}

	for index, product := range list.Products {
		cached.Products[index] = toCachedProduct(product)
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshalling search page: %w", err)
	}

	return r.set(ctx, searchKeyPrefix+key, data, ttl)
}

// Invalidate drops the product entry and every search page, since any of
// them may include the product.
func (r *ProductsCacheRepository) Invalidate(ctx context.Context, id model.ProductID) error {
	if err := r.client.Delete(ctx, productKey(id)); err != nil {
		return fmt.Errorf("invalidating cached product: %w", err)
	}

	purged, err := r.client.DeleteByPattern(ctx, searchKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cached searches: %w", err)
	}

	r.logger.Debug().
		Str("product_id", id.String()).
		Int64("purged_searches", purged).
		Msg("invalidated product cache")

	return nil
}

func (r *ProductsCacheRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

func (r *ProductsCacheRepository) get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := circuitbreaker.Execute(r.breaker, func() ([]byte, error) {
		return r.client.Get(ctx, key)
	})

	switch {
	case err == nil:
		return data, true, nil
	case errors.Is(err, infrastructure.ErrCacheMiss):
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
}

func (r *ProductsCacheRepository) set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	_, err := circuitbreaker.Execute(r.breaker, func() ([]byte, error) {
		return nil, r.client.Set(ctx, key, data, ttl)
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	return nil
}

func productKey(id model.ProductID) string {
	return productKeyPrefix + id.String()
}

func toCachedProduct(p *model.Product) cachedProduct {
	cached := cachedProduct{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Price:       p.Price,
		Stock:       p.Stock,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if p.CategoryID != nil {
		cached.CategoryID = p.CategoryID.String()
	}

	return cached
}

func (c cachedProduct) toProduct() (*model.Product, error) {
	row := productRow{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Brand:       c.Brand,
		Price:       c.Price,
		Stock:       c.Stock,
		Rating:      c.Rating,
		ReviewCount: c.ReviewCount,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}

	if c.CategoryID != "" {
		row.CategoryID = &c.CategoryID
	}

	return row.toProduct()
}
