package webviewauth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration indicates a required builder field is missing
	// or a configuration value could not be interpreted.
	ErrInvalidConfiguration = errors.New("webviewauth: invalid configuration")

	// ErrNoRefreshToken indicates Refresh was called on a bundle whose
	// exchange did not return a refresh token.
	ErrNoRefreshToken = errors.New("webviewauth: no refresh token")
)

// NetworkError reports a transport failure while calling the token endpoint.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("webviewauth: network error: %s", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError reports an invalid response from the token endpoint,
// either a non-200 status or a body that is not a JSON object.
type ProtocolError struct {
	// StatusCode is non-zero when the endpoint returned a non-200 status.
	StatusCode int
	Reason     string
}

func (e *ProtocolError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("webviewauth: token endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("webviewauth: %s", e.Reason)
}
