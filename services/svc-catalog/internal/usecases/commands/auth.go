package commands

import (
	"context"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront/pkg/decorator"
	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/pkg/metrics"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

type (
	RegisterUserCommand struct {
		Email    string
		Password string
	}

	LoginCommand struct {
		Email    string
		Password string
	}

	// LogoutCommand revokes the token the principal authenticated with.
	LogoutCommand struct {
		Principal model.Principal
	}

	RegisterUserCommandHandler = decorator.CommandHandler[RegisterUserCommand, *model.User]
	LoginCommandHandler        = decorator.CommandHandler[LoginCommand, *model.AccessToken]
	LogoutCommandHandler       = decorator.CommandHandler[LogoutCommand, struct{}]

	registerUserCommandHandler struct {
		authService ports.AuthService
	}

	loginCommandHandler struct {
		authService ports.AuthService
	}

	logoutCommandHandler struct {
		authService ports.AuthService
	}
)

func NewRegisterUserCommandHandler(
	svc ports.AuthService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) RegisterUserCommandHandler {
	return decorator.ApplyCommandDecorators[RegisterUserCommand, *model.User](
		registerUserCommandHandler{authService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h registerUserCommandHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*model.User, error) {
	return h.authService.Register(ctx, cmd.Email, cmd.Password)
}

func NewLoginCommandHandler(
	svc ports.AuthService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) LoginCommandHandler {
	return decorator.ApplyCommandDecorators[LoginCommand, *model.AccessToken](
		loginCommandHandler{authService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h loginCommandHandler) Handle(ctx context.Context, cmd LoginCommand) (*model.AccessToken, error) {
	return h.authService.Login(ctx, cmd.Email, cmd.Password)
}

func NewLogoutCommandHandler(
	svc ports.AuthService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) LogoutCommandHandler {
	return decorator.ApplyCommandDecorators[LogoutCommand, struct{}](
		logoutCommandHandler{authService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h logoutCommandHandler) Handle(ctx context.Context, cmd LogoutCommand) (struct{}, error) {
	return struct{}{}, h.authService.Logout(ctx, cmd.Principal)
}
