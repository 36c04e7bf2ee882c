package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pawmart_web/internal/config"
	"pawmart_web/internal/platform/crypto"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleProviderID is the identity provider id Google tokens are exchanged
// under.
const GoogleProviderID = "google.com"

// GoogleOAuth runs the authorization-code half of Google sign-in.
type GoogleOAuth struct {
	cfg    *config.Config
	oauth  *oauth2.Config
	client *http.Client
}

// NewGoogleOAuth returns nil when the Google client is not configured.
func NewGoogleOAuth(cfg *config.Config) *GoogleOAuth {
	if !cfg.GoogleOAuthConfigured() {
		return nil
	}
	return &GoogleOAuth{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		client: http.DefaultClient,
	}
}

// LoginURL generates a state, stores it in a short-lived cookie and returns
// the consent URL.
func (g *GoogleOAuth) LoginURL(c *gin.Context) (string, error) {
	state, err := crypto.NewToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	setOAuthCookie(c, g.cfg, g.cfg.OAuthStateCookieName, state)
	return g.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account")), nil
}

// Exchange checks state against the cookie set by LoginURL and trades code
// for Google's ID token.
func (g *GoogleOAuth) Exchange(c *gin.Context, code, state string) (string, error) {
	stored, err := getOAuthCookie(c, g.cfg, g.cfg.OAuthStateCookieName)
	if err != nil || stored == "" || stored != state {
		return "", ErrStateMismatch
	}
	ctx := context.WithValue(c.Request.Context(), oauth2.HTTPClient, g.client)
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			return "", &Error{Code: strings.ToUpper(rErr.ErrorCode), Raw: rErr.ErrorDescription, Err: err}
		}
		return "", &Error{Code: CodeNetwork, Err: err}
	}
	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return "", &Error{Code: "MISSING_ID_TOKEN", Raw: "Google did not return an ID token."}
	}
	return idToken, nil
}

// RedirectURI is the callback URL registered with Google.
func (g *GoogleOAuth) RedirectURI() string {
	return g.oauth.RedirectURL
}

// setOAuthCookie sets a short-lived cookie for the OAuth state.
func setOAuthCookie(c *gin.Context, cfg *config.Config, name, value string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   cfg.OAuthCookieMaxAgeMinutes * 60,
		Secure:   cfg.SessionCookieSecure,
		HttpOnly: true,
		SameSite: ParseSameSite(cfg.SessionCookieSameSite),
	})
}

// getOAuthCookie retrieves and deletes an OAuth cookie.
func getOAuthCookie(c *gin.Context, cfg *config.Config, name string) (string, error) {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return "", fmt.Errorf("%s cookie not found: %w", name, err)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   cfg.SessionCookieSecure,
		HttpOnly: true,
		SameSite: ParseSameSite(cfg.SessionCookieSameSite),
	})
	return cookie.Value, nil
}

// ParseSameSite maps a SameSite setting to its http constant, defaulting to Lax.
func ParseSameSite(s string) http.SameSite {
	switch s {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
