package model

import (
	"fmt"

	"github.com/google/uuid"
)

type (
	ProductID  struct{ uuid.UUID }
	CategoryID struct{ uuid.UUID }
	ReviewID   struct{ uuid.UUID }
	ImageID    struct{ uuid.UUID }
	UserID     struct{ uuid.UUID }
)

func newV7() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

func parseID(kind, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", ErrInvalidID, kind, s)
	}

	return id, nil
}

func NewProductID() ProductID   { return ProductID{newV7()} }
func NewCategoryID() CategoryID { return CategoryID{newV7()} }
func NewReviewID() ReviewID     { return ReviewID{newV7()} }
func NewImageID() ImageID       { return ImageID{newV7()} }
func NewUserID() UserID         { return UserID{newV7()} }

func ParseProductID(s string) (ProductID, error) {
	id, err := parseID("product", s)

	return ProductID{id}, err
}

func ParseCategoryID(s string) (CategoryID, error) {
	id, err := parseID("category", s)

	return CategoryID{id}, err
}

func ParseReviewID(s string) (ReviewID, error) {
	id, err := parseID("review", s)

	return ReviewID{id}, err
}

func ParseImageID(s string) (ImageID, error) {
	id, err := parseID("image", s)

	return ImageID{id}, err
}

func ParseUserID(s string) (UserID, error) {
	id, err := parseID("user", s)

	return UserID{id}, err
}

func (id ProductID) IsZero() bool { return id.UUID == uuid.Nil }
func (id UserID) IsZero() bool    { return id.UUID == uuid.Nil }
