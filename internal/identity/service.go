// Package identity signs users in and out against Firebase Authentication
// and resolves ID tokens to sessions.
package identity

import (
	"context"
	"strings"
	"time"

	"pawmart_web/internal/common"
	"pawmart_web/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Firebase ID tokens are valid for one hour.
const idTokenLifetime = time.Hour

// SignInRequest is the email/password sign-in form.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUpRequest is the registration form.
type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	PhotoURL string `json:"photoURL" validate:"omitempty,url"`
	Password string `json:"password" validate:"required,password"`
}

// ProfileUpdate changes the session's display name and photo.
type ProfileUpdate struct {
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL" validate:"omitempty,url"`
}

type tokenAdmin interface {
	VerifyIDToken(ctx context.Context, idToken string) (*VerifiedToken, error)
	UpdateProfile(ctx context.Context, uid, displayName, photoURL string) (*domain.Session, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type accountsAPI interface {
	SignIn(ctx context.Context, email, password string) (string, error)
	SignUp(ctx context.Context, email, password string) (string, string, error)
	SignInWithIdP(ctx context.Context, providerID, idpToken, requestURI string) (string, error)
}

type oauthFlow interface {
	LoginURL(c *gin.Context) (string, error)
	Exchange(c *gin.Context, code, state string) (string, error)
	RedirectURI() string
}

// Service is the identity provider as the rest of the server sees it. Each
// flow answers ErrUnavailable when its settings are missing.
type Service struct {
	admin     tokenAdmin
	accounts  accountsAPI
	google    oauthFlow
	blocklist *Blocklist
	logger    *zap.Logger
}

// NewService assembles the provider from its optional parts.
func NewService(admin *Admin, accounts *Accounts, google *GoogleOAuth, blocklist *Blocklist, logger *zap.Logger) *Service {
	s := &Service{blocklist: blocklist, logger: logger.Named("identity")}
	if admin != nil {
		s.admin = admin
	}
	if accounts != nil {
		s.accounts = accounts
	}
	if google != nil {
		s.google = google
	}
	return s
}

// Verify resolves an ID token to its session.
func (s *Service) Verify(ctx context.Context, idToken string) (*domain.Session, error) {
	if s.admin == nil {
		return nil, ErrUnavailable
	}
	if s.blocklist.Contains(idToken) {
		return nil, ErrTokenRevoked
	}
	verified, err := s.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return verified.Session, nil
}

// SignIn signs in with an email and password.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*domain.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if s.accounts == nil || s.admin == nil {
		return nil, ErrUnavailable
	}
	idToken, err := s.accounts.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.Verify(ctx, idToken)
}

// SignUp creates the account, sets its profile and signs it in.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*domain.Session, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.PhotoURL = strings.TrimSpace(req.PhotoURL)
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if s.accounts == nil || s.admin == nil {
		return nil, ErrUnavailable
	}
	uid, idToken, err := s.accounts.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if _, err := s.admin.UpdateProfile(ctx, uid, req.Name, req.PhotoURL); err != nil {
		s.logger.Warn("Account created but profile update failed", zap.String("uid", uid), zap.Error(err))
	}
	return s.Verify(ctx, idToken)
}

// GoogleLoginURL starts Google sign-in.
func (s *Service) GoogleLoginURL(c *gin.Context) (string, error) {
	if s.google == nil || s.accounts == nil {
		return "", ErrUnavailable
	}
	return s.google.LoginURL(c)
}

// CompleteGoogleSignIn finishes Google sign-in from the callback's query.
// oauthErr is the callback's "error" parameter; access_denied means the user
// closed the consent screen.
func (s *Service) CompleteGoogleSignIn(c *gin.Context, code, state, oauthErr string) (*domain.Session, error) {
	if s.google == nil || s.accounts == nil || s.admin == nil {
		return nil, ErrUnavailable
	}
	switch oauthErr {
	case "":
	case "access_denied":
		return nil, &Error{Code: CodeCancelled}
	default:
		return nil, &Error{Code: strings.ToUpper(oauthErr)}
	}

	googleToken, err := s.google.Exchange(c, code, state)
	if err != nil {
		return nil, err
	}
	idToken, err := s.accounts.SignInWithIdP(c.Request.Context(), GoogleProviderID, googleToken, s.google.RedirectURI())
	if err != nil {
		return nil, err
	}
	return s.Verify(c.Request.Context(), idToken)
}

// UpdateProfile changes the display name and photo of the signed-in user.
func (s *Service) UpdateProfile(ctx context.Context, session *domain.Session, upd ProfileUpdate) (*domain.Session, error) {
	upd.DisplayName = strings.TrimSpace(upd.DisplayName)
	upd.PhotoURL = strings.TrimSpace(upd.PhotoURL)
	if err := common.ValidateStruct(upd); err != nil {
		return nil, err
	}
	if upd.DisplayName == "" && upd.PhotoURL == "" {
		return nil, common.FieldError("displayName", "Nothing to update.")
	}
	if s.admin == nil {
		return nil, ErrUnavailable
	}
	updated, err := s.admin.UpdateProfile(ctx, session.UID, upd.DisplayName, upd.PhotoURL)
	if err != nil {
		return nil, err
	}
	updated.IDToken = session.IDToken
	updated.TokenExpiresAt = session.TokenExpiresAt
	return updated, nil
}

// SignOut blocks the session's ID token and revokes its refresh tokens.
// Revocation failures are logged; sign-out itself always succeeds.
func (s *Service) SignOut(ctx context.Context, session *domain.Session) {
	if session == nil {
		return
	}
	s.blocklist.Add(session.IDToken, time.Now().Add(idTokenLifetime))
	if s.admin == nil || session.UID == "" {
		return
	}
	if err := s.admin.RevokeRefreshTokens(ctx, session.UID); err != nil {
		s.logger.Warn("Sign-out could not revoke refresh tokens", zap.String("uid", session.UID), zap.Error(err))
	}
}
