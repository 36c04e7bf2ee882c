// File: internal/apiclient/errors.go
package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pawmart_web/internal/common"
)

// BackendError is a non-2xx answer from the REST backend.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// newBackendError extracts the backend's message from the usual envelope
// shapes: {"message": ...}, {"error": ...} or {"error": {"message": ...}}.
func newBackendError(status int, body []byte) *BackendError {
	var envelope struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &envelope); err == nil {
		msg = envelope.Message
		if msg == "" && len(envelope.Error) > 0 {
			var s string
			if json.Unmarshal(envelope.Error, &s) == nil {
				msg = s
			} else {
				var nested struct {
					Message string `json:"message"`
				}
				if json.Unmarshal(envelope.Error, &nested) == nil {
					msg = nested.Message
				}
			}
		}
	}
	return &BackendError{Status: status, Message: strings.TrimSpace(msg)}
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Status == http.StatusNotFound
}

// UserMessage returns the backend's message for err when it provided one,
// otherwise fallback.
func UserMessage(err error, fallback string) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return fallback
}

// ToAPIError converts a client error into the HTTP error returned to the
// browser, using fallback as the message when the backend gave none.
func ToAPIError(err error, fallback string) *common.APIError {
	if apiErr, ok := common.IsAPIError(err); ok {
		return apiErr
	}
	var be *BackendError
	if errors.As(err, &be) {
		switch {
		case be.Status == http.StatusNotFound:
			return common.ErrNotFound.WithMessage(UserMessage(err, fallback))
		case be.Status == http.StatusUnauthorized:
			return common.ErrUnauthorized.WithMessage(UserMessage(err, fallback))
		case be.Status == http.StatusForbidden:
			return common.ErrForbidden.WithMessage(UserMessage(err, fallback))
		case be.Status >= 400 && be.Status < 500:
			return common.ErrBadRequest.WithMessage(UserMessage(err, fallback))
		}
	}
	return common.ErrBadGateway.WithMessage(UserMessage(err, fallback))
}
