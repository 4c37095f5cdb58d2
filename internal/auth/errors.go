package auth

import "errors"

// FailureReason categorizes authentication failures for logging.
type FailureReason string

const (
	FailureMissingAuthorization FailureReason = "missing_authorization"
	FailureInvalidScheme        FailureReason = "invalid_scheme"
	FailureInvalidSignature     FailureReason = "invalid_signature"
	FailureInvalidIssuer        FailureReason = "invalid_issuer"
	FailureInvalidAudience      FailureReason = "invalid_audience"
	FailureTokenExpired         FailureReason = "token_expired"
	FailureUnknown              FailureReason = "unknown"
)

// AuthError is a categorized authentication error.
type AuthError struct {
	Reason  FailureReason
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a new AuthError.
func NewAuthError(reason FailureReason, message string, err error) *AuthError {
	return &AuthError{Reason: reason, Message: message, Err: err}
}

// IsAuthError checks if an error is an AuthError and returns it.
func IsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
