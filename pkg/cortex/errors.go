package cortex

import (
	"errors"
	"fmt"
)

// TransportError is a failed agent call: either a non-success status or a
// request that never produced a response
type TransportError struct {
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("HTTP error: %s - %s", e.Status, e.Body)
		}
		return fmt.Sprintf("HTTP error: %s", e.Status)
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is or wraps a *TransportError
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
