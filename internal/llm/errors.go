package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedReply marks a reply that arrived but does not have the
	// expected shape. The underlying *core.ShapeError or JSON error is wrapped
	// alongside it.
	ErrMalformedReply = errors.New("malformed model reply")

	// ErrEmptyInput is returned before any request when there is nothing to send.
	ErrEmptyInput = errors.New("empty input: provide text or an image")

	// ErrNoChoices is returned by transports when the reply holds no completion.
	ErrNoChoices = errors.New("no completion choices in reply")
)

// TransportError is a failed HTTP exchange with the provider: network error,
// authentication failure or any non-2xx status.
type TransportError struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("request failed (status %d): %v", e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// malformed wraps a validation failure so that both ErrMalformedReply and
// the cause match errors.Is / errors.As.
func malformed(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrMalformedReply, cause)
}

// IsTransport reports whether err is a *TransportError and returns its status.
func IsTransport(err error) (int, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode, true
	}
	return 0, false
}
