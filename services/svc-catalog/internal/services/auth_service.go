package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

type AuthService struct {
	users       ports.UsersRepository
	revocations ports.TokenRevocationStore
	tokens      *TokenIssuer
	bcryptCost  int
	logger      logger.Logger

	comparePassword func(hash, password []byte) error
	decoyOnce       sync.Once
	decoyHash       []byte
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	users ports.UsersRepository,
	revocations ports.TokenRevocationStore,
	tokens *TokenIssuer,
	bcryptCost int,
	log logger.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		revocations: revocations,
		tokens:      tokens,
		bcryptCost:  bcryptCost,
		logger:      log,

		comparePassword: bcrypt.CompareHashAndPassword,
	}
}

// Register creates a customer account.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	return s.createUser(ctx, email, password, model.RoleCustomer)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.AccessToken, error) {
	user, err := s.users.FetchByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// Unknown emails pay for a comparison too, so response times
			// do not reveal which accounts exist.
			_ = s.comparePassword(s.decoy(), []byte(password))

			return nil, model.ErrInvalidCredentials
		}

		return nil, err
	}

	if err := s.comparePassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return s.tokens.Issue(user)
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, principal model.Principal) error {
	return s.revocations.Revoke(ctx, principal.TokenID, principal.ExpiresAt)
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Principal, error) {
	principal, err := s.tokens.Parse(token)
	if err != nil {
		return model.Principal{}, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, principal.TokenID)
	if err != nil {
		return model.Principal{}, err
	}

	if revoked {
		return model.Principal{}, model.ErrTokenRevoked
	}

	return principal, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.users.FetchByEmail(ctx, email)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, model.ErrUserNotFound):
		return err
	}

	user, err := s.createUser(ctx, email, password, model.RoleAdmin)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			return nil
		}

		return fmt.Errorf("creating bootstrap admin: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("created bootstrap admin")

	return nil
}

// decoy is a hash at the configured cost that no password matches.
func (s *AuthService) decoy() []byte {
	s.decoyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.bcryptCost)
		if err != nil {
			s.logger.Warn().Err(err).Msg("generating decoy password hash")

			return
		}

		s.decoyHash = hash
	})

	return s.decoyHash
}

func (s *AuthService) createUser(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	email = model.NormalizeEmail(email)

	if err := model.ValidateRegistration(email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := model.NewUser(email, string(hash), role)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
