package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/architeacher/storefront/pkg/logger"
	metricsNoop "github.com/architeacher/storefront/pkg/metrics/noop"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/commands"
)

type mockProductsService struct {
	createProductFn func(ctx context.Context, attrs model.ProductAttributes) (*model.Product, error)
	deleteProductFn func(ctx context.Context, id model.ProductID) error
}

func (m *mockProductsService) CreateProduct(ctx context.Context, attrs model.ProductAttributes) (*model.Product, error) {
	if m.createProductFn != nil {
		return m.createProductFn(ctx, attrs)
	}

	return model.NewProduct(attrs)
}

func (m *mockProductsService) GetProduct(context.Context, model.ProductID) (*model.Product, error) {
	return nil, model.ErrProductNotFound
}

func (m *mockProductsService) SearchProducts(context.Context, model.Criteria) (*model.ProductList, error) {
	return &model.ProductList{}, nil
}

func (m *mockProductsService) UpdateProduct(context.Context, model.ProductID, model.ProductAttributes) (*model.Product, error) {
	return nil, model.ErrProductNotFound
}

func (m *mockProductsService) DeleteProduct(ctx context.Context, id model.ProductID) error {
	if m.deleteProductFn != nil {
		return m.deleteProductFn(ctx, id)
	}

	return model.ErrProductNotFound
}

type mockReviewsService struct {
	deleted []model.Principal
}

func (m *mockReviewsService) CreateReview(
	_ context.Context, author model.Principal, productID model.ProductID, rating int, comment string,
) (*model.Review, error) {
	return model.NewReview(productID, author.UserID, rating, comment)
}

func (m *mockReviewsService) ListReviews(context.Context, model.ProductID) ([]*model.Review, error) {
	return nil, nil
}

func (m *mockReviewsService) DeleteReview(_ context.Context, actor model.Principal, _ model.ReviewID) error {
	m.deleted = append(m.deleted, actor)

	return nil
}

func TestCreateProductCommandHandler(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		cmd         commands.CreateProductCommand
		expectError bool
	}{
		{
			name: "creates product",
			cmd:  commands.CreateProductCommand{Attributes: model.ProductAttributes{Name: "Widget", Price: 9.5}},
		},
		{
			name:        "rejects invalid product",
			cmd:         commands.CreateProductCommand{Attributes: model.ProductAttributes{Price: -1}},
			expectError: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := commands.NewCreateProductCommandHandler(
				&mockProductsService{},
				logger.NewTestLogger(),
				metricsNoop.NewMetricsClient(),
				noop.NewTracerProvider(),
			)

			product, err := handler.Handle(context.Background(), tc.cmd)
			if tc.expectError {
				require.Error(t, err)
				require.Nil(t, product)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.cmd.Attributes.Name, product.Name)
		})
	}
}

func TestDeleteProductCommandHandler(t *testing.T) {
	t.Parallel()

	id := model.NewProductID()

	var deleted model.ProductID

	handler := commands.NewDeleteProductCommandHandler(
		&mockProductsService{deleteProductFn: func(_ context.Context, got model.ProductID) error {
			deleted = got

			return nil
		}},
		logger.NewTestLogger(),
		metricsNoop.NewMetricsClient(),
		noop.NewTracerProvider(),
	)

	_, err := handler.Handle(context.Background(), commands.DeleteProductCommand{ID: id})
	require.NoError(t, err)
	require.Equal(t, id, deleted)

	missing := commands.NewDeleteProductCommandHandler(
		&mockProductsService{},
		logger.NewTestLogger(),
		metricsNoop.NewMetricsClient(),
		noop.NewTracerProvider(),
	)

	_, err = missing.Handle(context.Background(), commands.DeleteProductCommand{ID: id})
	require.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestDeleteReviewCommandHandler_PassesActor(t *testing.T) {
	t.Parallel()

	svc := &mockReviewsService{}
	actor := model.Principal{UserID: model.NewUserID(), Role: model.RoleCustomer}

	handler := commands.NewDeleteReviewCommandHandler(
		svc,
		logger.NewTestLogger(),
		metricsNoop.NewMetricsClient(),
		noop.NewTracerProvider(),
	)

	_, err := handler.Handle(context.Background(), commands.DeleteReviewCommand{Actor: actor, ID: model.NewReviewID()})
	require.NoError(t, err)
	require.Equal(t, []model.Principal{actor}, svc.deleted)
}
