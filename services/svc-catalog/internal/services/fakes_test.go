package services_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

type fakeProductsRepository struct {
	mu         sync.Mutex
	products   map[model.ProductID]*model.Product
	fetches    int
	refreshed  []model.ProductID
	fetchDelay time.Duration
	fetchErr   error
}

func newFakeProductsRepository(products ...*model.Product) *fakeProductsRepository {
	repo := &fakeProductsRepository{products: make(map[model.ProductID]*model.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}

	return repo
}

func (r *fakeProductsRepository) Create(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.CategoryID != nil && product.CategoryID.UUID == uuid.Nil {
		return model.ErrCategoryNotFound
	}

	r.products[product.ID] = product

	return nil
}

func (r *fakeProductsRepository) FetchByID(_ context.Context, id model.ProductID) (*model.Product, error) {
	time.Sleep(r.fetchDelay)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.fetches++

	if r.fetchErr != nil {
		return nil, r.fetchErr
	}

	product, ok := r.products[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}

	clone := *product

	return &clone, nil
}

func (r *fakeProductsRepository) Search(_ context.Context, criteria model.Criteria) (*model.ProductList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := &model.ProductList{}
	for _, p := range r.products {
		list.Products = append(list.Products, p)
	}

	list.Pagination = model.NewPagination(criteria.Page(), criteria.Size(), uint(len(list.Products)))

	return list, nil
}

func (r *fakeProductsRepository) Update(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return model.ErrProductNotFound
	}

	r.products[product.ID] = product

	return nil
}

func (r *fakeProductsRepository) Delete(_ context.Context, id model.ProductID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return model.ErrProductNotFound
	}

	delete(r.products, id)

	return nil
}

func (r *fakeProductsRepository) RefreshRating(_ context.Context, id model.ProductID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return model.ErrProductNotFound
	}

	r.refreshed = append(r.refreshed, id)

	return nil
}

type fakeCategoriesRepository struct {
	categories map[model.CategoryID]*model.Category
}

func newFakeCategoriesRepository() *fakeCategoriesRepository {
	return &fakeCategoriesRepository{categories: make(map[model.CategoryID]*model.Category)}
}

func (r *fakeCategoriesRepository) Create(_ context.Context, category *model.Category) error {
	for _, existing := range r.categories {
		if existing.Name == category.Name {
			return model.ErrDuplicateCategory
		}
	}

	r.categories[category.ID] = category

	return nil
}

func (r *fakeCategoriesRepository) FetchByID(_ context.Context, id model.CategoryID) (*model.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, model.ErrCategoryNotFound
	}

	clone := *category

	return &clone, nil
}

func (r *fakeCategoriesRepository) List(context.Context) ([]*model.Category, error) {
	out := make([]*model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}

	return out, nil
}

func (r *fakeCategoriesRepository) Update(_ context.Context, category *model.Category) error {
	if _, ok := r.categories[category.ID]; !ok {
		return model.ErrCategoryNotFound
	}

	r.categories[category.ID] = category

	return nil
}

func (r *fakeCategoriesRepository) Delete(_ context.Context, id model.CategoryID) error {
	if _, ok := r.categories[id]; !ok {
		return model.ErrCategoryNotFound
	}

	delete(r.categories, id)

	return nil
}

type fakeReviewsRepository struct {
	reviews map[model.ReviewID]*model.Review
}

func newFakeReviewsRepository() *fakeReviewsRepository {
	return &fakeReviewsRepository{reviews: make(map[model.ReviewID]*model.Review)}
}

func (r *fakeReviewsRepository) Create(_ context.Context, review *model.Review) error {
	for _, existing := range r.reviews {
		if existing.ProductID == review.ProductID && existing.UserID == review.UserID {
			return model.ErrDuplicateReview
		}
	}

	r.reviews[review.ID] = review

	return nil
}

func (r *fakeReviewsRepository) FetchByID(_ context.Context, id model.ReviewID) (*model.Review, error) {
	review, ok := r.reviews[id]
	if !ok {
		return nil, model.ErrReviewNotFound
	}

	return review, nil
}

func (r *fakeReviewsRepository) ListByProduct(_ context.Context, productID model.ProductID) ([]*model.Review, error) {
	var out []*model.Review
	for _, review := range r.reviews {
		if review.ProductID == productID {
			out = append(out, review)
		}
	}

	return out, nil
}

func (r *fakeReviewsRepository) Delete(_ context.Context, id model.ReviewID) error {
	if _, ok := r.reviews[id]; !ok {
		return model.ErrReviewNotFound
	}

	delete(r.reviews, id)

	return nil
}

type fakeImagesRepository struct {
	images    map[model.ImageID]*model.Image
	createErr error
}

func newFakeImagesRepository() *fakeImagesRepository {
	return &fakeImagesRepository{images: make(map[model.ImageID]*model.Image)}
}

func (r *fakeImagesRepository) Create(_ context.Context, image *model.Image) error {
	if r.createErr != nil {
		return r.createErr
	}

	r.images[image.ID] = image

	return nil
}

func (r *fakeImagesRepository) FetchByID(_ context.Context, id model.ImageID) (*model.Image, error) {
	image, ok := r.images[id]
	if !ok {
		return nil, model.ErrImageNotFound
	}

	return image, nil
}

func (r *fakeImagesRepository) ListByProduct(_ context.Context, productID model.ProductID) ([]*model.Image, error) {
	var out []*model.Image
	for _, image := range r.images {
		if image.ProductID == productID {
			out = append(out, image)
		}
	}

	return out, nil
}

func (r *fakeImagesRepository) Delete(_ context.Context, id model.ImageID) error {
	if _, ok := r.images[id]; !ok {
		return model.ErrImageNotFound
	}

	delete(r.images, id)

	return nil
}

type fakeUsersRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUsersRepository() *fakeUsersRepository {
	return &fakeUsersRepository{users: make(map[string]*model.User)}
}

func (r *fakeUsersRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return model.ErrDuplicateEmail
	}

	r.users[user.Email] = user

	return nil
}

func (r *fakeUsersRepository) FetchByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[model.NormalizeEmail(email)]
	if !ok {
		return nil, model.ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUsersRepository) FetchByID(_ context.Context, id model.UserID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}

	return nil, model.ErrUserNotFound
}

type fakeObjectStore struct {
	objects map[string][]byte
	removed []string
	putErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	s.objects[key] = data

	return nil
}

func (s *fakeObjectStore) Remove(_ context.Context, key string) error {
	delete(s.objects, key)
	s.removed = append(s.removed, key)

	return nil
}

func (s *fakeObjectStore) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.test/" + key, nil
}

func (s *fakeObjectStore) Ping(context.Context) error { return nil }

type fakeProductsCache struct {
	mu          sync.Mutex
	invalidated []model.ProductID
}

func (c *fakeProductsCache) GetProduct(context.Context, model.ProductID) (ports.CacheResult[*model.Product], error) {
	return ports.CacheResult[*model.Product]{}, nil
}

func (c *fakeProductsCache) SetProduct(context.Context, *model.Product, time.Duration) error {
	return nil
}

func (c *fakeProductsCache) GetSearch(context.Context, string) (ports.CacheResult[*model.ProductList], error) {
	return ports.CacheResult[*model.ProductList]{}, nil
}

func (c *fakeProductsCache) SetSearch(context.Context, string, *model.ProductList, time.Duration) error {
	return nil
}

func (c *fakeProductsCache) Invalidate(_ context.Context, id model.ProductID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invalidated = append(c.invalidated, id)

	return nil
}
