package identity

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"pawmart_web/internal/config"
	"pawmart_web/internal/domain"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// adminAuth is the subset of *auth.Client the BFF uses.
type adminAuth interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// VerifiedToken is a verified ID token resolved to its session.
type VerifiedToken struct {
	Session   *domain.Session
	ExpiresAt time.Time
}

// Admin wraps the Firebase Admin SDK.
type Admin struct {
	client adminAuth
	logger *zap.Logger
}

// NewAdmin initializes the Firebase Admin SDK. It returns nil without an
// error when the service account is not configured.
func NewAdmin(cfg *config.Config, logger *zap.Logger) (*Admin, error) {
	if !cfg.FirebaseAdminConfigured() {
		return nil, nil
	}
	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var fbConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}
	app, err := firebase.NewApp(context.Background(), fbConfig, opt)
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}
	client, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return newAdmin(client, logger), nil
}

func newAdmin(client adminAuth, logger *zap.Logger) *Admin {
	return &Admin{client: client, logger: logger.Named("firebase_admin")}
}

// VerifyIDToken verifies idToken and loads the account behind it.
func (a *Admin) VerifyIDToken(ctx context.Context, idToken string) (*VerifiedToken, error) {
	if idToken == "" {
		return nil, ErrInvalidToken
	}
	token, err := a.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		a.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return nil, ErrInvalidToken
	}

	session := sessionFromClaims(token)
	if record, err := a.client.GetUser(ctx, token.UID); err == nil {
		session = sessionFromRecord(record)
	} else {
		a.logger.Warn("Could not load Firebase user; using token claims", zap.String("uid", token.UID), zap.Error(err))
	}
	session.IDToken = idToken
	session.TokenExpiresAt = time.Unix(token.Expires, 0)

	a.logger.Debug("Firebase ID token verified successfully", zap.String("uid", token.UID))
	return &VerifiedToken{Session: session, ExpiresAt: session.TokenExpiresAt}, nil
}

// UpdateProfile sets the display name and photo URL of uid. Empty values are
// left unchanged.
func (a *Admin) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) (*domain.Session, error) {
	update := &auth.UserToUpdate{}
	if displayName != "" {
		update = update.DisplayName(displayName)
	}
	if photoURL != "" {
		update = update.PhotoURL(photoURL)
	}
	record, err := a.client.UpdateUser(ctx, uid, update)
	if err != nil {
		a.logger.Error("Failed to update Firebase profile", zap.String("uid", uid), zap.Error(err))
		return nil, classify(err)
	}
	return sessionFromRecord(record), nil
}

// RevokeRefreshTokens revokes all refresh tokens for uid.
func (a *Admin) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := a.client.RevokeRefreshTokens(ctx, uid); err != nil {
		a.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	a.logger.Info("Successfully revoked refresh tokens for user", zap.String("uid", uid))
	return nil
}

func sessionFromRecord(r *auth.UserRecord) *domain.Session {
	s := &domain.Session{}
	if r.UserInfo != nil {
		s.UID = r.UID
		s.Email = r.Email
		s.DisplayName = r.DisplayName
		s.PhotoURL = r.PhotoURL
	}
	if r.UserMetadata != nil {
		s.Metadata = domain.SessionMetadata{
			CreationTime:   formatMillis(r.UserMetadata.CreationTimestamp),
			LastSignInTime: formatMillis(r.UserMetadata.LastLogInTimestamp),
		}
	}
	return s
}

func sessionFromClaims(t *auth.Token) *domain.Session {
	s := &domain.Session{UID: t.UID}
	if v, ok := t.Claims["email"].(string); ok {
		s.Email = v
	}
	if v, ok := t.Claims["name"].(string); ok {
		s.DisplayName = v
	}
	if v, ok := t.Claims["picture"].(string); ok {
		s.PhotoURL = v
	}
	if t.AuthTime > 0 {
		s.Metadata.LastSignInTime = time.Unix(t.AuthTime, 0).UTC().Format(http.TimeFormat)
	}
	return s
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(http.TimeFormat)
}
