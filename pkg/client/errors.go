package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/AlbertoRoca-web/pup-sdk/pkg/models"
)

// Sentinel causes carried by SDKError.Err for failures that did not come from
// the network.
var (
	// ErrInvalidConfig marks a rejected Config or argument.
	ErrInvalidConfig = errors.New("pup: invalid configuration")
	// ErrInvalidResponse marks a 2xx response whose body was empty or did not
	// parse.
	ErrInvalidResponse = errors.New("pup: invalid response body")
)

// SDKError is the only error kind returned by Client methods.
//
// It wraps one of:
//   - a transport failure (DNS, connect, TLS, timeout, reset); StatusCode is 0
//   - a non-2xx HTTP response; StatusCode is the response status
//   - an empty or unparseable 2xx body; Err is ErrInvalidResponse
type SDKError struct {
	// Op names the client operation, e.g. "status" or "chat".
	Op string
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// Message is the human-readable description.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *SDKError) Error() string { return e.Message }

func (e *SDKError) Unwrap() error { return e.Err }

// IsTransport reports whether the request never produced an HTTP response.
func (e *SDKError) IsTransport() bool {
	return e.StatusCode == 0 && e.Err != nil &&
		!errors.Is(e.Err, ErrInvalidConfig) && !errors.Is(e.Err, ErrInvalidResponse)
}

// IsHTTP reports whether the bridge answered with a non-2xx status.
func (e *SDKError) IsHTTP() bool {
	return e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode > 299)
}

func invalidConfig(op, format string, args ...any) *SDKError {
	return &SDKError{
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Err:     ErrInvalidConfig,
	}
}

func transportError(op string, err error) *SDKError {
	return &SDKError{
		Op:      op,
		Message: fmt.Sprintf("%s: request failed: %v", op, err),
		Err:     err,
	}
}

func invalidResponse(op string, status int, err error) *SDKError {
	msg := fmt.Sprintf("%s: empty response body", op)
	cause := ErrInvalidResponse
	if err != nil {
		msg = fmt.Sprintf("%s: unparseable response body: %v", op, err)
		cause = fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return &SDKError{Op: op, StatusCode: status, Message: msg, Err: cause}
}

// httpError maps a non-2xx response. The description prefers the payload's
// error field, then its message field, then the raw body, then "HTTP <code>".
func httpError(op string, status int, body []byte) *SDKError {
	return &SDKError{
		Op:         op,
		StatusCode: status,
		Message:    describeFailure(status, body),
	}
}

func describeFailure(status int, body []byte) string {
	var payload models.ErrorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		if d := payload.Description(); d != "" {
			return d
		}
	}
	if raw := strings.TrimSpace(string(body)); raw != "" {
		return raw
	}
	return fmt.Sprintf("HTTP %d", status)
}

// statusText is used in debug logs only.
func statusText(code int) string {
	if t := http.StatusText(code); t != "" {
		return t
	}
	return "unknown"
}
