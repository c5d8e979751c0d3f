package desk

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/vango-go/voicedesk/pkg/core"
)

// Error is the backend error type returned for non-2xx responses.
type Error = core.Error

var (
	ErrSessionExpired   = core.ErrSessionExpired
	ErrNotAuthenticated = core.ErrNotAuthenticated
)

// ErrAgentNotFound is returned by a playground session when the backend
// closes the socket because the agent does not exist.
var ErrAgentNotFound = errors.New("agent not found")

// TransportError reports a request that never produced a backend response:
// DNS, dial, TLS, a reset connection or a truncated body.
// Use errors.As to tell it apart from *core.Error.
type TransportError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	if e.Method == "" {
		return fmt.Sprintf("backend unreachable: %v", e.Err)
	}
	return fmt.Sprintf("backend unreachable: %s %s: %v", e.Method, redactEndpoint(e.Endpoint), e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// redactEndpoint drops userinfo and the query string, which may carry
// credentials.
func redactEndpoint(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || raw == "" {
		return raw
	}
	parsed.User = nil
	parsed.RawQuery = ""
	return parsed.String()
}
