package model

import (
	"strings"
	"time"
)

type Category struct {
	ID          CategoryID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func validateCategory(name string) error {
	errs := NewValidationErrors()

	if strings.TrimSpace(name) == "" {
		errs.Add("name", "name is required", "REQUIRED")
	}

	return errs.OrNil()
}

func NewCategory(name, description string) (*Category, error) {
	if err := validateCategory(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Category{
		ID:          NewCategoryID(),
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (c *Category) Update(name, description string) error {
	if err := validateCategory(name); err != nil {
		return err
	}

	c.Name = strings.TrimSpace(name)
	c.Description = description
	c.UpdatedAt = time.Now().UTC()

	return nil
}
