package usecases

import (
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront/pkg/decorator"
	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/pkg/metrics"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/commands"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/queries"
)

type (
	Commands struct {
		CreateProduct  commands.CreateProductCommandHandler
		UpdateProduct  commands.UpdateProductCommandHandler
		DeleteProduct  commands.DeleteProductCommandHandler
		CreateCategory commands.CreateCategoryCommandHandler
		UpdateCategory commands.UpdateCategoryCommandHandler
		DeleteCategory commands.DeleteCategoryCommandHandler
		CreateReview   commands.CreateReviewCommandHandler
		DeleteReview   commands.DeleteReviewCommandHandler
		UploadImage    commands.UploadImageCommandHandler
		DeleteImage    commands.DeleteImageCommandHandler
		RegisterUser   commands.RegisterUserCommandHandler
		Login          commands.LoginCommandHandler
		Logout         commands.LogoutCommandHandler
	}

	Queries struct {
		GetProduct        queries.GetProductQueryHandler
		SearchProducts    queries.SearchProductsQueryHandler
		GetCategory       queries.GetCategoryQueryHandler
		ListCategories    queries.ListCategoriesQueryHandler
		ListReviews       queries.ListReviewsQueryHandler
		ListImages        queries.ListImagesQueryHandler
		FetchLiveness     queries.FetchLivenessQueryHandler
		FetchReadiness    queries.FetchReadinessQueryHandler
		FetchHealthReport queries.FetchHealthReportQueryHandler
	}

	Services struct {
		Products   ports.ProductsService
		Categories ports.CategoriesService
		Reviews    ports.ReviewsService
		Images     ports.ImagesService
		Auth       ports.AuthService
	}

	// QueryCaches holds the read-through caches; leave a field nil to
	// serve that query straight from the database.
	QueryCaches struct {
		Product       decorator.Cache[queries.GetProductQuery, *model.Product]
		ProductConfig decorator.CacheConfig
		Search        decorator.Cache[queries.SearchProductsQuery, *model.ProductList]
		SearchConfig  decorator.CacheConfig
	}

	Health struct {
		Database     ports.Pinger
		Dependencies map[string]ports.Pinger
		Version      string
	}

	Application struct {
		Commands Commands
		Queries  Queries
	}
)

func NewApplication(
	svc Services,
	caches QueryCaches,
	health Health,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) *Application {
	return &Application{
		Commands: Commands{
			CreateProduct:  commands.NewCreateProductCommandHandler(svc.Products, log, metricsClient, tracerProvider),
			UpdateProduct:  commands.NewUpdateProductCommandHandler(svc.Products, log, metricsClient, tracerProvider),
			DeleteProduct:  commands.NewDeleteProductCommandHandler(svc.Products, log, metricsClient, tracerProvider),
			CreateCategory: commands.NewCreateCategoryCommandHandler(svc.Categories, log, metricsClient, tracerProvider),
			UpdateCategory: commands.NewUpdateCategoryCommandHandler(svc.Categories, log, metricsClient, tracerProvider),
			DeleteCategory: commands.NewDeleteCategoryCommandHandler(svc.Categories, log, metricsClient, tracerProvider),
			CreateReview:   commands.NewCreateReviewCommandHandler(svc.Reviews, log, metricsClient, tracerProvider),
			DeleteReview:   commands.NewDeleteReviewCommandHandler(svc.Reviews, log, metricsClient, tracerProvider),
			UploadImage:    commands.NewUploadImageCommandHandler(svc.Images, log, metricsClient, tracerProvider),
			DeleteImage:    commands.NewDeleteImageCommandHandler(svc.Images, log, metricsClient, tracerProvider),
			RegisterUser:   commands.NewRegisterUserCommandHandler(svc.Auth, log, metricsClient, tracerProvider),
			Login:          commands.NewLoginCommandHandler(svc.Auth, log, metricsClient, tracerProvider),
			Logout:         commands.NewLogoutCommandHandler(svc.Auth, log, metricsClient, tracerProvider),
		},
		Queries: Queries{
			GetProduct: queries.NewGetProductQueryHandler(
				svc.Products, caches.Product, caches.ProductConfig, log, metricsClient, tracerProvider,
			),
			SearchProducts: queries.NewSearchProductsQueryHandler(
				svc.Products, caches.Search, caches.SearchConfig, log, metricsClient, tracerProvider,
			),
			GetCategory:    queries.NewGetCategoryQueryHandler(svc.Categories, log, metricsClient, tracerProvider),
			ListCategories: queries.NewListCategoriesQueryHandler(svc.Categories, log, metricsClient, tracerProvider),
			ListReviews:    queries.NewListReviewsQueryHandler(svc.Reviews, log, metricsClient, tracerProvider),
			ListImages:     queries.NewListImagesQueryHandler(svc.Images, log, metricsClient, tracerProvider),
			FetchLiveness:  queries.NewFetchLivenessQueryHandler(log, metricsClient, tracerProvider),
			FetchReadiness: queries.NewFetchReadinessQueryHandler(health.Database, log, metricsClient, tracerProvider),
			FetchHealthReport: queries.NewFetchHealthReportQueryHandler(
				health.Dependencies, health.Version, log, metricsClient, tracerProvider,
			),
		},
	}
}
