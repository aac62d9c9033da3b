package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrAuth indicates a missing, malformed or rejected credential.
	ErrAuth = errors.New("llm: authentication failed")

	// ErrRateLimit indicates the vendor answered 429.
	ErrRateLimit = errors.New("llm: rate limited")

	// ErrServer indicates a 5xx answer from the vendor.
	ErrServer = errors.New("llm: server error")

	// ErrTransport covers network failures, unexpected statuses and
	// response bodies that do not match the expected schema.
	ErrTransport = errors.New("llm: transport error")
)

// APIError carries the HTTP status and body of a failed exchange.
// errors.Is matches it against its Kind.
type APIError struct {
	Kind   error
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%v (HTTP %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("%v (HTTP %d): %s", e.Kind, e.Status, body)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// StatusError maps a non-2xx status to the error taxonomy.
// It returns nil for 2xx statuses.
func StatusError(status int, body []byte) error {
	if status >= 200 && status <= 299 {
		return nil
	}

	var kind error
	switch {
	case status == http.StatusUnauthorized:
		kind = ErrAuth
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimit
	case status >= 500 && status <= 599:
		kind = ErrServer
	default:
		kind = ErrTransport
	}
	return &APIError{Kind: kind, Status: status, Body: string(body)}
}

// TransportError wraps a network or decode failure.
func TransportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
}

// Kind reports the taxonomy label of err, for logging.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrRateLimit):
		return "rate_limit"
	case errors.Is(err, ErrServer):
		return "server"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}
