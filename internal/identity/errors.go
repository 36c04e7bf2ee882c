package identity

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"pawmart_web/internal/common"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
)

var (
	// ErrUnavailable is returned when the flow's provider settings are missing.
	ErrUnavailable = errors.New("identity provider is not configured")
	// ErrInvalidToken is returned for an ID token that fails verification.
	ErrInvalidToken = errors.New("invalid or expired ID token")
	// ErrTokenRevoked is returned for an ID token presented after sign-out.
	ErrTokenRevoked = errors.New("ID token has been revoked")
	// ErrStateMismatch is returned when the OAuth state cookie does not match.
	ErrStateMismatch = errors.New("OAuth state mismatch")
)

// Provider error codes the sign-in screens translate.
const (
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidPassword    = "INVALID_PASSWORD"
	CodeEmailNotFound      = "EMAIL_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_LOGIN_CREDENTIALS"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeUserDisabled       = "USER_DISABLED"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS_TRY_LATER"
	CodeCancelled          = "POPUP_CLOSED_BY_USER"
	CodeNetwork            = "NETWORK_REQUEST_FAILED"
)

var messages = map[string]string{
	CodeEmailExists:        "This email is already in use.",
	CodeInvalidPassword:    "Invalid email or password.",
	CodeEmailNotFound:      "Invalid email or password.",
	CodeInvalidCredentials: "Invalid email or password.",
	CodeWeakPassword:       "Password should be at least 6 characters.",
	CodeInvalidEmail:       "Please enter a valid email address.",
	CodeUserDisabled:       "This account has been disabled.",
	CodeTooManyAttempts:    "Too many attempts. Please try again later.",
	CodeCancelled:          "Sign-in was cancelled.",
	CodeNetwork:            "Network error. Please check your connection and try again.",
}

var statuses = map[string]*common.APIError{
	CodeEmailExists:        common.ErrConflict,
	CodeInvalidPassword:    common.ErrUnauthorized,
	CodeEmailNotFound:      common.ErrUnauthorized,
	CodeInvalidCredentials: common.ErrUnauthorized,
	CodeWeakPassword:       common.ErrUnprocessableEntity,
	CodeInvalidEmail:       common.ErrUnprocessableEntity,
	CodeUserDisabled:       common.ErrForbidden,
	CodeTooManyAttempts:    common.ErrTooManyRequests,
	CodeCancelled:          common.ErrBadRequest,
	CodeNetwork:            common.ErrBadGateway,
}

// Error is a provider failure carrying the provider's code.
type Error struct {
	Code string
	// Raw is the provider's own message, shown when the code is not mapped.
	Raw string
	Err error
}

func (e *Error) Error() string {
	if e.Raw != "" {
		return "identity: " + e.Code + ": " + e.Raw
	}
	return "identity: " + e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the sentence shown to the user.
func (e *Error) Message() string {
	return Message(e.Code, e.Raw)
}

// Message maps a provider code to a readable sentence. Unmapped codes yield
// raw, or the code itself when raw is empty.
func Message(code, raw string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	if raw != "" {
		return raw
	}
	return code
}

// classify converts an error from the REST API, the Admin SDK or the
// transport into an *Error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var idErr *Error
	if errors.As(err, &idErr) || errors.Is(err, context.Canceled) {
		return err
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		code, raw := splitProviderMessage(gErr.Message)
		return &Error{Code: code, Raw: raw, Err: err}
	}

	switch {
	case auth.IsEmailAlreadyExists(err):
		return &Error{Code: CodeEmailExists, Err: err}
	case auth.IsUserNotFound(err):
		return &Error{Code: CodeEmailNotFound, Err: err}
	case auth.IsUserDisabled(err):
		return &Error{Code: CodeUserDisabled, Err: err}
	case auth.IsIDTokenExpired(err), auth.IsIDTokenInvalid(err), auth.IsIDTokenRevoked(err):
		return ErrInvalidToken
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeNetwork, Err: err}
	}
	return err
}

// splitProviderMessage splits "WEAK_PASSWORD : Password should be at least 6
// characters" into its code and detail.
func splitProviderMessage(msg string) (string, string) {
	code, detail, found := strings.Cut(msg, ":")
	code = strings.TrimSpace(code)
	if !found {
		return code, ""
	}
	return code, strings.TrimSpace(detail)
}

// ToAPIError translates identity failures into HTTP errors.
func ToAPIError(err error) *common.APIError {
	if apiErr, ok := common.IsAPIError(err); ok {
		return apiErr
	}
	switch {
	case errors.Is(err, ErrUnavailable):
		return common.ErrServiceUnavailable.WithMessage("Sign-in is currently unavailable.")
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenRevoked):
		return common.ErrUnauthorized.WithMessage("Your session has expired. Please sign in again.")
	case errors.Is(err, ErrStateMismatch):
		return common.ErrBadRequest.WithMessage("Sign-in could not be verified. Please try again.")
	}
	var idErr *Error
	if errors.As(err, &idErr) {
		base, ok := statuses[idErr.Code]
		if !ok {
			base = common.NewAPIError(http.StatusBadRequest, "IDENTITY_ERROR", "")
		}
		out := base.WithMessage(idErr.Message())
		out.Details = map[string]string{"code": idErr.Code}
		return out
	}
	return common.ErrInternalServer
}
