package model

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"

	MinPasswordLength = 8
)

func ParseRole(s string) (Role, error) {
	switch role := Role(strings.ToLower(s)); role {
	case RoleAdmin, RoleCustomer:
		return role, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           UserID
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration checks the credentials a client wants to register with.
func ValidateRegistration(email, password string) error {
	errs := NewValidationErrors()

	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		errs.Add("email", "email must be a valid address", "INVALID_FORMAT")
	}

	if len(password) < MinPasswordLength {
		errs.Add("password", "password must be at least 8 characters", "TOO_SHORT")
	}

	return errs.OrNil()
}

func NewUser(email, passwordHash string, role Role) *User {
	return &User{
		ID:           NewUserID(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    UserID
	Email     string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

type AccessToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}
