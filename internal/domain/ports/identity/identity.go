// Package identity defines the external identity-provider contract. Account
// lifecycle and credential checks live outside this repository; only the
// documented operations are consumed.
package identity

import "context"

// Account is the provider-side user record.
type Account struct {
	ID          string
	Email       string
	DisplayName string
	Disabled    bool
}

type Provider interface {
	// CreateAccount registers a new account and returns its id.
	// Fails with domain.ErrAlreadyExists for a known email.
	CreateAccount(ctx context.Context, email, password, displayName string) (string, error)
	// DeleteAccount removes an account. domain.ErrNotFound is tolerated by
	// callers.
	DeleteAccount(ctx context.Context, accountID string) error
	// SetClaims replaces the custom claims of an account.
	SetClaims(ctx context.Context, accountID string, claims map[string]any) error
	// GetAccountByEmail resolves an account, or domain.ErrNotFound.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	// SignIn verifies credentials and returns the account.
	// Fails with domain.ErrPermissionDenied on bad credentials.
	SignIn(ctx context.Context, email, password string) (*Account, error)
}
