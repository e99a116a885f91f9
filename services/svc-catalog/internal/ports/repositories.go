package ports

import (
	"context"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

type (
	ProductsRepository interface {
		Create(ctx context.Context, product *model.Product) error
		FetchByID(ctx context.Context, id model.ProductID) (*model.Product, error)
		// Search returns the products matching criteria; an empty
		// specification returns every product.
		Search(ctx context.Context, criteria model.Criteria) (*model.ProductList, error)
		Update(ctx context.Context, product *model.Product) error
		Delete(ctx context.Context, id model.ProductID) error
		// RefreshRating recomputes rating and review count from reviews.
		RefreshRating(ctx context.Context, id model.ProductID) error
	}

	CategoriesRepository interface {
		Create(ctx context.Context, category *model.Category) error
		FetchByID(ctx context.Context, id model.CategoryID) (*model.Category, error)
		List(ctx context.Context) ([]*model.Category, error)
		Update(ctx context.Context, category *model.Category) error
		Delete(ctx context.Context, id model.CategoryID) error
	}

	ReviewsRepository interface {
		Create(ctx context.Context, review *model.Review) error
		FetchByID(ctx context.Context, id model.ReviewID) (*model.Review, error)
		ListByProduct(ctx context.Context, productID model.ProductID) ([]*model.Review, error)
		Delete(ctx context.Context, id model.ReviewID) error
	}

	ImagesRepository interface {
		Create(ctx context.Context, image *model.Image) error
		FetchByID(ctx context.Context, id model.ImageID) (*model.Image, error)
		ListByProduct(ctx context.Context, productID model.ProductID) ([]*model.Image, error)
		Delete(ctx context.Context, id model.ImageID) error
	}

	UsersRepository interface {
		Create(ctx context.Context, user *model.User) error
		FetchByEmail(ctx context.Context, email string) (*model.User, error)
		FetchByID(ctx context.Context, id model.UserID) (*model.User, error)
	}
)
