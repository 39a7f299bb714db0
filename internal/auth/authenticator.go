// Package auth handles account registration, password checks and the
// session tokens handed to clients.
package auth

import (
	"context"

	"github.com/mmynk/tripsplit/internal/models"
)

var _ Authenticator = (*PasswordAuthenticator)(nil)

// Authenticator creates accounts and verifies login attempts.
type Authenticator interface {
	// Register creates an account. Emails are unique, compared case-insensitively.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account for email if credential matches.
	// Any mismatch, including an unknown email, is ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
}
