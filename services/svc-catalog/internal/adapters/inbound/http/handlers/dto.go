package handlers

import (
	"time"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

type (
	productRequest struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Brand       string  `json:"brand"`
		Price       float64 `json:"price"`
		Stock       int64   `json:"stock"`
		CategoryID  *string `json:"categoryId,omitempty"`
	}

	productResponse struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Brand       string    `json:"brand"`
		Price       float64   `json:"price"`
		Stock       int64     `json:"stock"`
		InStock     bool      `json:"inStock"`
		CategoryID  *string   `json:"categoryId,omitempty"`
		Rating      float64   `json:"rating"`
		ReviewCount int64     `json:"reviewCount"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	categoryRequest struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	categoryResponse struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	reviewRequest struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}

	reviewResponse struct {
		ID        string    `json:"id"`
		ProductID string    `json:"productId"`
		UserID    string    `json:"userId"`
		Rating    int       `json:"rating"`
		Comment   string    `json:"comment"`
		CreatedAt time.Time `json:"createdAt"`
	}

	imageResponse struct {
		ID          string    `json:"id"`
		ProductID   string    `json:"productId"`
		ContentType string    `json:"contentType"`
		Size        int64     `json:"size"`
		URL         string    `json:"url,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	credentialsRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	userResponse struct {
		ID        string    `json:"id"`
		Email     string    `json:"email"`
		Role      string    `json:"role"`
		CreatedAt time.Time `json:"createdAt"`
	}

	tokenResponse struct {
		AccessToken string    `json:"accessToken"`
		TokenType   string    `json:"tokenType"`
		ExpiresAt   time.Time `json:"expiresAt"`
	}
)

func (p productRequest) attributes() (model.ProductAttributes, error) {
	attrs := model.ProductAttributes{
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Price:       p.Price,
		Stock:       p.Stock,
	}

	if p.CategoryID != nil && *p.CategoryID != "" {
		id, err := model.ParseCategoryID(*p.CategoryID)
		if err != nil {
			return model.ProductAttributes{}, err
		}

		attrs.CategoryID = &id
	}

	return attrs, nil
}

func toProductResponse(p *model.Product) productResponse {
	resp := productResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Price:       p.Price,
		Stock:       p.Stock,
		InStock:     p.InStock(),
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if p.CategoryID != nil {
		id := p.CategoryID.String()
		resp.CategoryID = &id
	}

	return resp
}

func toCategoryResponse(c *model.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toReviewResponse(r *model.Review) reviewResponse {
	return reviewResponse{
		ID:        r.ID.String(),
		ProductID: r.ProductID.String(),
		UserID:    r.UserID.String(),
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func toImageResponse(i *model.Image) imageResponse {
	return imageResponse{
		ID:          i.ID.String(),
		ProductID:   i.ProductID.String(),
		ContentType: i.ContentType,
		Size:        i.Size,
		URL:         i.URL,
		CreatedAt:   i.CreatedAt,
	}
}

func mapSlice[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}

	return out
}
