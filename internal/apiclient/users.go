// File: internal/apiclient/users.go
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"pawmart_web/internal/domain"
)

// ListUsers returns every application user (admin view).
func (c *Client) ListUsers(ctx context.Context) ([]domain.ApplicationUser, error) {
	var users []domain.ApplicationUser
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, err
	}
	out := users[:0]
	for _, u := range users {
		if u.Email == "" {
			continue
		}
		u.Normalize()
		out = append(out, u)
	}
	return out, nil
}

// GetUser fetches the application user keyed by email.
func (c *Client) GetUser(ctx context.Context, email string) (*domain.ApplicationUser, error) {
	var u domain.ApplicationUser
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(email), nil, nil, &u); err != nil {
		return nil, err
	}
	if u.Email == "" {
		// Some backends answer 200 with null for unknown users.
		return nil, &BackendError{Status: http.StatusNotFound, Message: fmt.Sprintf("user %s not found", email)}
	}
	u.Normalize()
	return &u, nil
}

// UpdateRole sets the role of the user keyed by email. It returns the
// backend's updated record, or nil when the backend only acknowledged.
func (c *Client) UpdateRole(ctx context.Context, email string, role domain.Role) (*domain.ApplicationUser, error) {
	var raw json.RawMessage
	body := map[string]domain.Role{"role": role}
	if err := c.do(ctx, http.MethodPatch, "/users/role/"+url.PathEscape(email), nil, body, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var u domain.ApplicationUser
	if json.Unmarshal(raw, &u) != nil || u.Email == "" {
		return nil, nil
	}
	u.Normalize()
	return &u, nil
}
