// Package auth handles the shared-secret credential guarding the API.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/muesli/crunchy"
)

// DefaultSecret is used when no secret is configured.
const DefaultSecret = "meetgeek"

// ErrMissingCredential is returned when no credential was supplied.
var ErrMissingCredential = errors.New("missing authorization credential")

// ErrInvalidCredential is returned when the supplied credential doesn't match.
var ErrInvalidCredential = errors.New("invalid authorization credential")

// ErrDefaultSecret is returned by WeakSecret for the built-in secret.
var ErrDefaultSecret = errors.New("the default secret is publicly known")

// Checker validates the credential attached to a request.
type Checker interface {
	Check(credential string) error
}

// GenerateToken returns the token clients present for the given secret.
func GenerateToken(secret string) string {
	if secret == "" {
		secret = DefaultSecret
	}

	return base64.StdEncoding.EncodeToString([]byte(secret))
}

// DecodeToken returns the secret encoded in a token.
func DecodeToken(token string) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", errors.New("invalid token format")
	}

	return string(secret), nil
}

// StaticToken accepts a single token derived from a shared secret.
type StaticToken struct {
	token []byte
}

// NewStaticToken returns a checker for the token derived from secret.
func NewStaticToken(secret string) *StaticToken {
	return &StaticToken{token: []byte(GenerateToken(secret))}
}

// Check accepts either the raw token or "Bearer <token>".
func (s *StaticToken) Check(credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ErrMissingCredential
	}

	token, found := strings.CutPrefix(credential, "Bearer ")
	if found {
		token = strings.TrimSpace(token)
	}

	if subtle.ConstantTimeCompare([]byte(token), s.token) != 1 {
		return ErrInvalidCredential
	}

	return nil
}

// WeakSecret returns an error describing why secret shouldn't be used, or nil.
func WeakSecret(secret string) error {
	if secret == "" || secret == DefaultSecret {
		return ErrDefaultSecret
	}

	validator := crunchy.NewValidatorWithOpts(crunchy.Options{
		MinLength: 12,
		MinDiff:   6,
		MinDist:   3,
	})

	return validator.Check(secret)
}
