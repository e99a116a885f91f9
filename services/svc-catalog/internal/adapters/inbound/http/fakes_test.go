package http_test

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

type fakeProductsService struct {
	mu           sync.Mutex
	products     map[model.ProductID]*model.Product
	lastCriteria model.Criteria
}

func newFakeProductsService() *fakeProductsService {
	return &fakeProductsService{products: map[model.ProductID]*model.Product{}}
}

func (f *fakeProductsService) CreateProduct(_ context.Context, attrs model.ProductAttributes) (*model.Product, error) {
	product, err := model.NewProduct(attrs)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.products[product.ID] = product

	return product, nil
}

func (f *fakeProductsService) GetProduct(_ context.Context, id model.ProductID) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

func (f *fakeProductsService) SearchProducts(_ context.Context, criteria model.Criteria) (*model.ProductList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastCriteria = criteria

	products := make([]*model.Product, 0, len(f.products))
	for _, p := range f.products {
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b *model.Product) int {
		return strings.Compare(a.Name, b.Name)
	})

	return &model.ProductList{
		Products:   products,
		Pagination: model.NewPagination(criteria.Page(), criteria.Size(), uint(len(products))),
	}, nil
}

func (f *fakeProductsService) UpdateProduct(_ context.Context, id model.ProductID, attrs model.ProductAttributes) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}

	if err := product.Update(attrs); err != nil {
		return nil, err
	}

	return product, nil
}

func (f *fakeProductsService) DeleteProduct(_ context.Context, id model.ProductID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.products[id]; !ok {
		return model.ErrProductNotFound
	}

	delete(f.products, id)

	return nil
}

func (f *fakeProductsService) criteria() model.Criteria {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lastCriteria
}

type fakeCategoriesService struct {
	mu         sync.Mutex
	categories map[model.CategoryID]*model.Category
}

func newFakeCategoriesService() *fakeCategoriesService {
	return &fakeCategoriesService{categories: map[model.CategoryID]*model.Category{}}
}

func (f *fakeCategoriesService) CreateCategory(_ context.Context, name, description string) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.categories {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return nil, model.ErrDuplicateCategory
		}
	}

	category, err := model.NewCategory(name, description)
	if err != nil {
		return nil, err
	}

	f.categories[category.ID] = category

	return category, nil
}

func (f *fakeCategoriesService) GetCategory(_ context.Context, id model.CategoryID) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	category, ok := f.categories[id]
	if !ok {
		return nil, model.ErrCategoryNotFound
	}

	return category, nil
}

func (f *fakeCategoriesService) ListCategories(context.Context) ([]*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	categories := make([]*model.Category, 0, len(f.categories))
	for _, c := range f.categories {
		categories = append(categories, c)
	}

	return categories, nil
}

func (f *fakeCategoriesService) UpdateCategory(_ context.Context, id model.CategoryID, name, description string) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	category, ok := f.categories[id]
	if !ok {
		return nil, model.ErrCategoryNotFound
	}

	if err := category.Update(name, description); err != nil {
		return nil, err
	}

	return category, nil
}

func (f *fakeCategoriesService) DeleteCategory(_ context.Context, id model.CategoryID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.categories[id]; !ok {
		return model.ErrCategoryNotFound
	}

	delete(f.categories, id)

	return nil
}

type fakeReviewsService struct {
	mu       sync.Mutex
	products *fakeProductsService
	reviews  map[model.ReviewID]*model.Review
}

func (f *fakeReviewsService) CreateReview(ctx context.Context, author model.Principal, productID model.ProductID, rating int, comment string) (*model.Review, error) {
	if _, err := f.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.reviews {
		if r.ProductID == productID && r.UserID == author.UserID {
			return nil, model.ErrDuplicateReview
		}
	}

	review, err := model.NewReview(productID, author.UserID, rating, comment)
	if err != nil {
		return nil, err
	}

	f.reviews[review.ID] = review

	return review, nil
}

func (f *fakeReviewsService) ListReviews(_ context.Context, productID model.ProductID) ([]*model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var reviews []*model.Review

	for _, r := range f.reviews {
		if r.ProductID == productID {
			reviews = append(reviews, r)
		}
	}

	return reviews, nil
}

func (f *fakeReviewsService) DeleteReview(_ context.Context, actor model.Principal, id model.ReviewID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	review, ok := f.reviews[id]
	if !ok {
		return model.ErrReviewNotFound
	}

	if !review.CanBeDeletedBy(actor) {
		return model.ErrForbidden
	}

	delete(f.reviews, id)

	return nil
}

type fakeImagesService struct {
	mu     sync.Mutex
	images map[model.ImageID]*model.Image
	stored map[string][]byte
}

func (f *fakeImagesService) UploadImage(_ context.Context, productID model.ProductID, contentType string, size int64, body io.Reader) (*model.Image, error) {
	image, err := model.NewImage(productID, contentType, size)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.images[image.ID] = image
	f.stored[image.ObjectKey] = data

	return image, nil
}

func (f *fakeImagesService) ListImages(_ context.Context, productID model.ProductID) ([]*model.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var images []*model.Image

	for _, image := range f.images {
		if image.ProductID == productID {
			image.URL = "https://objects.example/" + image.ObjectKey
			images = append(images, image)
		}
	}

	return images, nil
}

func (f *fakeImagesService) DeleteImage(_ context.Context, productID model.ProductID, id model.ImageID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	image, ok := f.images[id]
	if !ok || image.ProductID != productID {
		return model.ErrImageNotFound
	}

	delete(f.images, id)
	delete(f.stored, image.ObjectKey)

	return nil
}

type fakeAuthService struct {
	mu     sync.Mutex
	users  map[string]*model.User
	tokens map[string]model.Principal
}

func (f *fakeAuthService) Register(_ context.Context, email, password string) (*model.User, error) {
	if err := model.ValidateRegistration(email, password); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	email = model.NormalizeEmail(email)
	if _, ok := f.users[email]; ok {
		return nil, model.ErrDuplicateEmail
	}

	user := model.NewUser(email, "hash:"+password, model.RoleCustomer)
	f.users[email] = user

	return user, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (*model.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[model.NormalizeEmail(email)]
	if !ok || user.PasswordHash != "hash:"+password {
		return nil, model.ErrInvalidCredentials
	}

	token := "token-" + user.ID.String()
	f.tokens[token] = model.Principal{UserID: user.ID, Email: user.Email, Role: user.Role, TokenID: token}

	return &model.AccessToken{Token: token, TokenID: token}, nil
}

func (f *fakeAuthService) Logout(_ context.Context, principal model.Principal) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.tokens, principal.TokenID)

	return nil
}

func (f *fakeAuthService) Authenticate(_ context.Context, token string) (model.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	principal, ok := f.tokens[token]
	if !ok {
		return model.Principal{}, model.ErrInvalidToken
	}

	return principal, nil
}

func (f *fakeAuthService) issue(token string, role model.Role) model.Principal {
	f.mu.Lock()
	defer f.mu.Unlock()

	principal := model.Principal{UserID: model.NewUserID(), Role: role, TokenID: token}
	f.tokens[token] = principal

	return principal
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}
