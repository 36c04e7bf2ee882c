// File: internal/apiclient/client.go
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"pawmart_web/internal/config"

	"go.uber.org/zap"
)

// ErrMalformedResponse is returned when the backend answers 2xx with a body
// that does not match the endpoint's schema.
var ErrMalformedResponse = errors.New("malformed backend response")

// Client talks to the marketplace REST backend. It is the only component that
// issues backend HTTP requests; every call carries the caller's credentials.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds a client for cfg.APIBaseURL. The http.Client has no timeout of
// its own: callers bound requests through their context.
func New(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	return NewWithHTTPClient(cfg.APIBaseURL, &http.Client{}, logger)
}

// NewWithHTTPClient is New with an explicit base URL and transport.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse API base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API base URL %q must be absolute", baseURL)
	}
	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		logger:     logger.Named("apiclient"),
	}, nil
}

type credentialsKey struct{}

// Credentials are forwarded to the backend on every request made with a
// context carrying them.
type Credentials struct {
	IDToken string
	Cookies []*http.Cookie
}

// WithCredentials attaches credentials to ctx.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

func credentialsFrom(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(Credentials)
	return creds, ok
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do issues a request and decodes a 2xx JSON body into out (when non-nil).
// Non-2xx responses become *BackendError; transport failures are wrapped.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds, ok := credentialsFrom(ctx); ok {
		if creds.IDToken != "" {
			req.Header.Set("Authorization", "Bearer "+creds.IDToken)
		}
		for _, ck := range creds.Cookies {
			req.AddCookie(ck)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		backendErr := newBackendError(resp.StatusCode, raw)
		c.logger.Debug("Backend returned error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", backendErr.Message),
		)
		return backendErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("Backend response did not match schema",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	return nil
}
