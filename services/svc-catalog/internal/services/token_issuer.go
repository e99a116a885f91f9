package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

type (
	accessClaims struct {
		Email string `json:"email"`
		Role  string `json:"role"`
		jwt.RegisteredClaims
	}

	// TokenIssuer signs and verifies HS256 access tokens. Every token
	// carries a unique jti so it can be revoked on its own.
	TokenIssuer struct {
		secret []byte
		issuer string
		expiry time.Duration
		now    func() time.Time
	}
)

func NewTokenIssuer(secret, issuer string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}
}

func (i *TokenIssuer) Issue(user *model.User) (*model.AccessToken, error) {
	now := i.now().UTC()
	expiresAt := now.Add(i.expiry)
	tokenID := uuid.Must(uuid.NewV7()).String()

	claims := accessClaims{
		Email: user.Email,
		Role:  user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   user.ID.String(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &model.AccessToken{
		Token:     signed,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}, nil
}

// Parse verifies signature, issuer and expiry and returns the caller.
func (i *TokenIssuer) Parse(token string) (model.Principal, error) {
	var claims accessClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Principal{}, fmt.Errorf("%w: token expired", model.ErrInvalidToken)
		}

		return model.Principal{}, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}

	userID, err := model.ParseUserID(claims.Subject)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: bad subject", model.ErrInvalidToken)
	}

	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: bad role", model.ErrInvalidToken)
	}

	if claims.ID == "" {
		return model.Principal{}, fmt.Errorf("%w: missing token id", model.ErrInvalidToken)
	}

	return model.Principal{
		UserID:    userID,
		Email:     claims.Email,
		Role:      role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
