package repos

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/queries"
)

type (
	// GetProductCacheAdapter adapts ProductsCache for GetProductQuery.
	GetProductCacheAdapter struct {
		cache ports.ProductsCache
	}

	// SearchProductsCacheAdapter adapts ProductsCache for SearchProductsQuery.
	SearchProductsCacheAdapter struct {
		cache ports.ProductsCache
	}
)

func NewGetProductCacheAdapter(cache ports.ProductsCache) *GetProductCacheAdapter {
	return &GetProductCacheAdapter{cache: cache}
}

func (a *GetProductCacheAdapter) Get(ctx context.Context, query queries.GetProductQuery) (*model.Product, bool, error) {
	result, err := a.cache.GetProduct(ctx, query.ID)
	if err != nil {
		return nil, false, err
	}

	return result.Value, result.Hit, nil
}

func (a *GetProductCacheAdapter) Set(ctx context.Context, _ queries.GetProductQuery, product *model.Product, ttl time.Duration) error {
	return a.cache.SetProduct(ctx, product, ttl)
}

func NewSearchProductsCacheAdapter(cache ports.ProductsCache) *SearchProductsCacheAdapter {
	return &SearchProductsCacheAdapter{cache: cache}
}

func (a *SearchProductsCacheAdapter) Get(ctx context.Context, query queries.SearchProductsQuery) (*model.ProductList, bool, error) {
	result, err := a.cache.GetSearch(ctx, SearchCacheKey(query.Criteria))
	if err != nil {
		return nil, false, err
	}

	return result.Value, result.Hit, nil
}

func (a *SearchProductsCacheAdapter) Set(
	ctx context.Context,
	query queries.SearchProductsQuery,
	list *model.ProductList,
	ttl time.Duration,
) error {
	return a.cache.SetSearch(ctx, SearchCacheKey(query.Criteria), list, ttl)
}

// SearchCacheKey digests everything that shapes a result page. Equal
// criteria map to the same key regardless of how they were built.
func SearchCacheKey(criteria model.Criteria) string {
	var b strings.Builder

	b.WriteString(criteria.Spec().String())
	b.WriteByte('|')

	for _, s := range criteria.Sorting() {
		b.WriteString(s.Field)
		b.WriteByte(' ')
		b.WriteString(string(s.Direction))
		b.WriteByte(',')
	}

	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(uint64(criteria.Page()), 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(uint64(criteria.Size()), 10))

	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}
