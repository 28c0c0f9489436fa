package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Gating and webhook errors surfaced at the endpoint boundary
var (
	ErrMissingParameter     = errors.New("missing required parameter")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrSubscriptionInactive = errors.New("subscription not active")
	ErrSignatureInvalid     = errors.New("webhook signature verification failed")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// UpstreamError represents an unexpected failure from the payment provider
type UpstreamError struct {
	Op  string
	Err error
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("upstream billing error during %s: %v", e.Op, e.Err)
}

func (e UpstreamError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an error from the taxonomy above to the status code the
// endpoint responds with. Unknown errors map to 500.
func HTTPStatus(err error) int {
	var ve ValidationError
	switch {
	case errors.Is(err, ErrMissingParameter), errors.Is(err, ErrSignatureInvalid), errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrPaymentNotFound), errors.Is(err, ErrSubscriptionInactive):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
