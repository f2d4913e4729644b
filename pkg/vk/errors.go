package vk

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork is returned for transport failures, timeouts and non-200
	// statuses.
	ErrNetwork = errors.New("network error")

	// ErrNotFound is returned when users.get answers with an empty list.
	ErrNotFound = errors.New("identity not found")

	// ErrMalformed is returned when a 200 response cannot be decoded.
	ErrMalformed = errors.New("malformed response")
)

// Well-known API error codes.
const (
	CodeAccessDenied   = 15
	CodePrivateProfile = 30
	CodeInvalidUserID  = 113
)

// APIError is the "error" object of a VK response.
type APIError struct {
	Method  string `json:"-"`
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: api error %d: %s", e.Method, e.Code, e.Message)
}

// IsAPIError reports whether err carries an [*APIError].
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}

// IsRestricted reports whether err is the API refusing to show an existing
// profile, as opposed to the profile not existing.
func IsRestricted(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Code == CodeAccessDenied || ae.Code == CodePrivateProfile
}
