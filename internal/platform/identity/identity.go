// Package identity wraps the external identity provider that owns user
// accounts and credentials. The application never stores passwords; it
// creates users in the provider, mirrors their role into public metadata,
// and keeps its own tables keyed by the provider's user id.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NewUser is the payload for creating a user in the identity provider.
type NewUser struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// User is the provider's view of an account.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Provider is the subset of the identity provider API the application uses.
// CreateUser returns the provider-assigned user id which becomes the primary
// key of the local patient/doctor/staff row.
type Provider interface {
	CreateUser(ctx context.Context, u NewUser) (*User, error)
	SetRole(ctx context.Context, userID, role string) error
	DeleteUser(ctx context.Context, userID string) error
}

// HTTPProvider talks to the identity provider's management API over HTTP.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPProvider(baseURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *HTTPProvider) CreateUser(ctx context.Context, u NewUser) (*User, error) {
	body, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("marshaling user: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/users", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var created User
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decoding user response: %w", err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("identity provider returned empty user id")
	}
	return &created, nil
}

func (p *HTTPProvider) SetRole(ctx context.Context, userID, role string) error {
	body, err := json.Marshal(map[string]string{"role": role})
	if err != nil {
		return fmt.Errorf("marshaling role: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, p.baseURL+"/users/"+userID, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}
	return nil
}

func (p *HTTPProvider) DeleteUser(ctx context.Context, userID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, p.baseURL+"/users/"+userID, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}
	return nil
}

func (p *HTTPProvider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
