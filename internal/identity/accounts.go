package identity

import (
	"context"
	"fmt"
	"net/url"

	"pawmart_web/internal/config"

	"go.uber.org/zap"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// Accounts is the end-user side of the provider: the calls a browser would
// make with the project's web API key.
type Accounts struct {
	svc    *identitytoolkit.RelyingpartyService
	logger *zap.Logger
}

// NewAccounts returns nil without an error when FIREBASE_API_KEY is not set.
func NewAccounts(cfg *config.Config, logger *zap.Logger, opts ...option.ClientOption) (*Accounts, error) {
	if cfg.FirebaseAPIKey == "" {
		return nil, nil
	}
	opts = append([]option.ClientOption{option.WithAPIKey(cfg.FirebaseAPIKey)}, opts...)
	svc, err := identitytoolkit.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating identity toolkit client: %w", err)
	}
	return &Accounts{svc: svc.Relyingparty, logger: logger.Named("identity_accounts")}, nil
}

// SignIn exchanges an email and password for an ID token.
func (a *Accounts) SignIn(ctx context.Context, email, password string) (string, error) {
	resp, err := a.svc.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		a.logger.Info("Password sign-in rejected", zap.String("email", email), zap.Error(err))
		return "", classify(err)
	}
	return resp.IdToken, nil
}

// SignUp creates an email/password account and returns its UID and ID token.
func (a *Accounts) SignUp(ctx context.Context, email, password string) (string, string, error) {
	resp, err := a.svc.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		a.logger.Info("Account creation rejected", zap.String("email", email), zap.Error(err))
		return "", "", classify(err)
	}
	a.logger.Info("Account created", zap.String("uid", resp.LocalId))
	return resp.LocalId, resp.IdToken, nil
}

// SignInWithIdP exchanges an identity provider's ID token for a Firebase ID
// token. requestURI is the OAuth redirect URI the token was issued for.
func (a *Accounts) SignInWithIdP(ctx context.Context, providerID, idpToken, requestURI string) (string, error) {
	resp, err := a.svc.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		PostBody:          url.Values{"id_token": {idpToken}, "providerId": {providerID}}.Encode(),
		RequestUri:        requestURI,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return "", classify(err)
	}
	if resp.ErrorMessage != "" {
		return "", &Error{Code: resp.ErrorMessage}
	}
	return resp.IdToken, nil
}
