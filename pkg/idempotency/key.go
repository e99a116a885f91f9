package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

const (
	MinKeyLength = 16
	MaxKeyLength = 128
	KeyPrefix    = "idempotency"
	HeaderName   = "Idempotency-Key"
)

var (
	ErrKeyTooShort = errors.New("idempotency key must be at least 16 characters")
	ErrKeyTooLong  = errors.New("idempotency key must not exceed 128 characters")
	ErrKeyInvalid  = errors.New("idempotency key contains invalid characters")

	validKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// Scope identifies a replayable request. Subject is the authenticated
// user, so two customers can never replay each other's responses.
type Scope struct {
	Method  string
	Path    string
	Subject string
	Key     string
}

func Validate(key string) error {
	switch {
	case len(key) < MinKeyLength:
		return ErrKeyTooShort
	case len(key) > MaxKeyLength:
		return ErrKeyTooLong
	case !validKeyPattern.MatchString(key):
		return ErrKeyInvalid
	}

	return nil
}

// BuildCacheKey hashes the scope into a fixed-size Redis key.
func BuildCacheKey(scope Scope) string {
	combined := strings.Join([]string{
		strings.ToUpper(scope.Method),
		scope.Path,
		scope.Subject,
		scope.Key,
	}, "\x00")

	return KeyPrefix + ":" + hash([]byte(combined))
}

// LockKey is the key guarding a request that is still in flight.
func LockKey(cacheKey string) string {
	return cacheKey + ":lock"
}

// Fingerprint digests a request body; a key reused with a different
// body must be rejected instead of replayed.
func Fingerprint(body []byte) string {
	return hash(body)
}

func hash(b []byte) string {
	sum := sha256.Sum256(b)

	return hex.EncodeToString(sum[:])
}
