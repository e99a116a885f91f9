package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

var errStoreDown = errors.New("store down")

type fakeAuthService struct {
	principals map[string]model.Principal
	errs       map[string]error
}

func (f *fakeAuthService) Register(context.Context, string, string) (*model.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) Login(context.Context, string, string) (*model.AccessToken, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) Logout(context.Context, model.Principal) error {
	return nil
}

func (f *fakeAuthService) Authenticate(_ context.Context, token string) (model.Principal, error) {
	if err, ok := f.errs[token]; ok {
		return model.Principal{}, err
	}

	if p, ok := f.principals[token]; ok {
		return p, nil
	}

	return model.Principal{}, model.ErrInvalidToken
}

type memoryIdempotencyRepository struct {
	mu        sync.Mutex
	responses map[string]*ports.CachedResponse
	locks     map[string]bool
	getErr    error
	contended bool
}

func newMemoryIdempotencyRepository() *memoryIdempotencyRepository {
	return &memoryIdempotencyRepository{
		responses: map[string]*ports.CachedResponse{},
		locks:     map[string]bool{},
	}
}

func (m *memoryIdempotencyRepository) Get(_ context.Context, key string) (*ports.CachedResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	return m.responses[key], nil
}

func (m *memoryIdempotencyRepository) Set(_ context.Context, key string, response *ports.CachedResponse, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses[key] = response

	return nil
}

func (m *memoryIdempotencyRepository) Lock(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.contended || m.locks[key] {
		return false, nil
	}

	m.locks[key] = true

	return true, nil
}

func (m *memoryIdempotencyRepository) Unlock(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.locks, key)

	return nil
}

func (m *memoryIdempotencyRepository) stored() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.responses)
}

type failingStore struct{}

func (failingStore) GetWithTime(context.Context, string) (int64, time.Time, error) {
	return 0, time.Time{}, errStoreDown
}

func (failingStore) SetIfNotExistsWithTTL(context.Context, string, int64, time.Duration) (bool, error) {
	return false, errStoreDown
}

func (failingStore) CompareAndSwapWithTTL(context.Context, string, int64, int64, time.Duration) (bool, error) {
	return false, errStoreDown
}

func statusHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
}
