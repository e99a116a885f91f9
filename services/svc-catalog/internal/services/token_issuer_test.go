package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

func TestTokenIssuer(t *testing.T) {
	t.Parallel()

	user := model.NewUser("jane@example.com", "hash", model.RoleAdmin)
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		verifier    *TokenIssuer
		at          time.Time
		expectedErr error
	}{
		{
			name:     "valid token",
			verifier: NewTokenIssuer("secret", "svc-catalog", time.Hour),
			at:       issuedAt.Add(30 * time.Minute),
		},
		{
			name:        "expired token",
			verifier:    NewTokenIssuer("secret", "svc-catalog", time.Hour),
			at:          issuedAt.Add(2 * time.Hour),
			expectedErr: model.ErrInvalidToken,
		},
		{
			name:        "different secret",
			verifier:    NewTokenIssuer("other-secret", "svc-catalog", time.Hour),
			at:          issuedAt,
			expectedErr: model.ErrInvalidToken,
		},
		{
			name:        "different issuer",
			verifier:    NewTokenIssuer("secret", "someone-else", time.Hour),
			at:          issuedAt,
			expectedErr: model.ErrInvalidToken,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			issuer := NewTokenIssuer("secret", "svc-catalog", time.Hour)
			issuer.now = func() time.Time { return issuedAt }

			token, err := issuer.Issue(user)
			require.NoError(t, err)
			require.Equal(t, issuedAt.Add(time.Hour), token.ExpiresAt)

			tc.verifier.now = func() time.Time { return tc.at }

			principal, err := tc.verifier.Parse(token.Token)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)

				return
			}

			require.NoError(t, err)
			require.Equal(t, user.ID, principal.UserID)
			require.Equal(t, model.RoleAdmin, principal.Role)
			require.Equal(t, token.TokenID, principal.TokenID)
			require.True(t, principal.ExpiresAt.Equal(token.ExpiresAt))
		})
	}
}
