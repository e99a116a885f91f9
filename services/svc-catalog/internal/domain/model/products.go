package model

import (
	"strings"
	"time"
)

type (
	Product struct {
		ID          ProductID
		Name        string
		Description string
		Brand       string
		Price       float64
		Stock       int64
		CategoryID  *CategoryID
		Rating      float64
		ReviewCount int64
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// ProductAttributes are the client-writable fields of a product.
	ProductAttributes struct {
		Name        string
		Description string
		Brand       string
		Price       float64
		Stock       int64
		CategoryID  *CategoryID
	}

	ProductList struct {
		Products   []*Product
		Pagination Pagination
	}
)

const maxProductNameLength = 255

func (a ProductAttributes) Validate() error {
	errs := NewValidationErrors()

	name := strings.TrimSpace(a.Name)

	switch {
	case name == "":
		errs.Add("name", "name is required", "REQUIRED")
	case len(name) > maxProductNameLength:
		errs.Add("name", "name must not exceed 255 characters", "TOO_LONG")
	}

	if a.Price < 0 {
		errs.Add("price", "price must not be negative", "OUT_OF_RANGE")
	}

	if a.Stock < 0 {
		errs.Add("stock", "stock must not be negative", "OUT_OF_RANGE")
	}

	return errs.OrNil()
}

func NewProduct(attrs ProductAttributes) (*Product, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	p := &Product{
		ID:        NewProductID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.apply(attrs)

	return p, nil
}

// Update replaces every writable field. Rating is derived from reviews.
func (p *Product) Update(attrs ProductAttributes) error {
	if err := attrs.Validate(); err != nil {
		return err
	}

	p.apply(attrs)
	p.UpdatedAt = time.Now().UTC()

	return nil
}

func (p *Product) apply(attrs ProductAttributes) {
	p.Name = strings.TrimSpace(attrs.Name)
	p.Description = attrs.Description
	p.Brand = strings.TrimSpace(attrs.Brand)
	p.Price = attrs.Price
	p.Stock = attrs.Stock
	p.CategoryID = attrs.CategoryID
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}
