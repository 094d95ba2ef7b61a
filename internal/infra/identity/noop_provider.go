package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"fitstudio-backend/internal/domain"
	idport "fitstudio-backend/internal/domain/ports/identity"
)

var _ idport.Provider = (*NoopProvider)(nil)

// NoopProvider keeps accounts in memory. Used in dev mode and by the seeder
// when no identity service is configured.
type NoopProvider struct {
	mu      sync.RWMutex
	byEmail map[string]*idport.Account
}

func NewNoopProvider() *NoopProvider {
	return &NoopProvider{byEmail: make(map[string]*idport.Account)}
}

func (p *NoopProvider) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	email = strings.ToLower(email)
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byEmail[email]; ok {
		return "", domain.ErrAlreadyExists
	}
	acc := &idport.Account{ID: uuid.NewString(), Email: email, DisplayName: displayName}
	p.byEmail[email] = acc
	return acc.ID, nil
}

func (p *NoopProvider) DeleteAccount(ctx context.Context, accountID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for email, acc := range p.byEmail {
		if acc.ID == accountID {
			delete(p.byEmail, email)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (p *NoopProvider) SetClaims(ctx context.Context, accountID string, claims map[string]any) error {
	return nil
}

func (p *NoopProvider) GetAccountByEmail(ctx context.Context, email string) (*idport.Account, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	acc, ok := p.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

// SignIn accepts any non-empty password for a known account.
func (p *NoopProvider) SignIn(ctx context.Context, email, password string) (*idport.Account, error) {
	if password == "" {
		return nil, domain.ErrPermissionDenied
	}
	return p.GetAccountByEmail(ctx, email)
}
