package ports

import (
	"context"
	"io"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

type (
	ProductsService interface {
		CreateProduct(ctx context.Context, attrs model.ProductAttributes) (*model.Product, error)
		GetProduct(ctx context.Context, id model.ProductID) (*model.Product, error)
		SearchProducts(ctx context.Context, criteria model.Criteria) (*model.ProductList, error)
		UpdateProduct(ctx context.Context, id model.ProductID, attrs model.ProductAttributes) (*model.Product, error)
		DeleteProduct(ctx context.Context, id model.ProductID) error
	}

	CategoriesService interface {
		CreateCategory(ctx context.Context, name, description string) (*model.Category, error)
		GetCategory(ctx context.Context, id model.CategoryID) (*model.Category, error)
		ListCategories(ctx context.Context) ([]*model.Category, error)
		UpdateCategory(ctx context.Context, id model.CategoryID, name, description string) (*model.Category, error)
		DeleteCategory(ctx context.Context, id model.CategoryID) error
	}

	ReviewsService interface {
		CreateReview(ctx context.Context, author model.Principal, productID model.ProductID, rating int, comment string) (*model.Review, error)
		ListReviews(ctx context.Context, productID model.ProductID) ([]*model.Review, error)
		DeleteReview(ctx context.Context, actor model.Principal, id model.ReviewID) error
	}

	ImagesService interface {
		UploadImage(ctx context.Context, productID model.ProductID, contentType string, size int64, body io.Reader) (*model.Image, error)
		ListImages(ctx context.Context, productID model.ProductID) ([]*model.Image, error)
		DeleteImage(ctx context.Context, productID model.ProductID, id model.ImageID) error
	}

	AuthService interface {
		Register(ctx context.Context, email, password string) (*model.User, error)
		Login(ctx context.Context, email, password string) (*model.AccessToken, error)
		Logout(ctx context.Context, principal model.Principal) error
		Authenticate(ctx context.Context, token string) (model.Principal, error)
	}

	// Authorizer decides whether a role may perform action on resource.
	Authorizer interface {
		Authorize(role model.Role, resource, action string) (bool, error)
	}
)
