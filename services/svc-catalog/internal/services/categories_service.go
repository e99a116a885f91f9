package services

import (
	"context"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

type CategoriesService struct {
	repo ports.CategoriesRepository
}

var _ ports.CategoriesService = (*CategoriesService)(nil)

func NewCategoriesService(repo ports.CategoriesRepository) *CategoriesService {
	return &CategoriesService{repo: repo}
}

func (s *CategoriesService) CreateCategory(ctx context.Context, name, description string) (*model.Category, error) {
	category, err := model.NewCategory(name, description)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *CategoriesService) GetCategory(ctx context.Context, id model.CategoryID) (*model.Category, error) {
	return s.repo.FetchByID(ctx, id)
}

func (s *CategoriesService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoriesService) UpdateCategory(ctx context.Context, id model.CategoryID, name, description string) (*model.Category, error) {
	category, err := s.repo.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := category.Update(name, description); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *CategoriesService) DeleteCategory(ctx context.Context, id model.CategoryID) error {
	return s.repo.Delete(ctx, id)
}
