// Package identity adapts the external identity provider's REST API to the
// identity port.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fitstudio-backend/internal/domain"
	idport "fitstudio-backend/internal/domain/ports/identity"
)

var _ idport.Provider = (*RestProvider)(nil)

// RestProvider talks to the identity service over JSON/HTTP with an API key.
type RestProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRestProvider(baseURL, apiKey string) (*RestProvider, error) {
	if baseURL == "" {
		return nil, errors.New("identity base url empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid identity base url: %w", err)
	}
	return &RestProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type accountPayload struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Disabled    bool   `json:"disabled"`
}

func (p *RestProvider) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	var out accountPayload
	err := p.do(ctx, http.MethodPost, "/v1/accounts", map[string]any{
		"email":        email,
		"password":     password,
		"display_name": displayName,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", domain.ErrOperationFailed
	}
	return out.ID, nil
}

func (p *RestProvider) DeleteAccount(ctx context.Context, accountID string) error {
	return p.do(ctx, http.MethodDelete, "/v1/accounts/"+url.PathEscape(accountID), nil, nil)
}

func (p *RestProvider) SetClaims(ctx context.Context, accountID string, claims map[string]any) error {
	return p.do(ctx, http.MethodPut, "/v1/accounts/"+url.PathEscape(accountID)+"/claims", claims, nil)
}

func (p *RestProvider) GetAccountByEmail(ctx context.Context, email string) (*idport.Account, error) {
	var out accountPayload
	if err := p.do(ctx, http.MethodGet, "/v1/accounts?email="+url.QueryEscape(email), nil, &out); err != nil {
		return nil, err
	}
	return &idport.Account{ID: out.ID, Email: out.Email, DisplayName: out.DisplayName, Disabled: out.Disabled}, nil
}

func (p *RestProvider) SignIn(ctx context.Context, email, password string) (*idport.Account, error) {
	var out accountPayload
	err := p.do(ctx, http.MethodPost, "/v1/sessions", map[string]any{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Disabled {
		return nil, domain.ErrPermissionDenied
	}
	return &idport.Account{ID: out.ID, Email: out.Email, DisplayName: out.DisplayName}, nil
}

func (p *RestProvider) do(ctx context.Context, method, path string, payload any, out any) error {
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return domain.ErrInvalidArgument
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.ErrUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.ErrOperationFailed
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrAlreadyExists
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return domain.ErrPermissionDenied
	case resp.StatusCode == http.StatusServiceUnavailable, resp.StatusCode == http.StatusTooManyRequests:
		return domain.ErrUnavailable
	default:
		return domain.ErrOperationFailed
	}
}
