package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrSessionExpired is returned when an authenticated request was rejected
// and the one permitted token refresh also failed. Stored tokens have been
// cleared by the time callers see it.
var ErrSessionExpired = errors.New("session expired: log in again")

// ErrNotAuthenticated is returned when a request needs a bearer token and
// none is stored.
var ErrNotAuthenticated = errors.New("not logged in")

// Error represents a non-2xx response from the orchestration backend.
type Error struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Method     string    `json:"method,omitempty"`
	Endpoint   string    `json:"endpoint,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Endpoint != "" {
		msg = fmt.Sprintf("%s %s failed", e.Method, e.Endpoint)
	}
	switch {
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("%s (status %d): %s", msg, e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %s", e.Type, msg)
	}
}

// ErrorType categorizes errors.
type ErrorType string

const (
	ErrInvalidRequest ErrorType = "invalid_request_error"
	ErrAuthentication ErrorType = "authentication_error"
	ErrPermission     ErrorType = "permission_error"
	ErrNotFound       ErrorType = "not_found_error"
	ErrRateLimit      ErrorType = "rate_limit_error"
	ErrAPI            ErrorType = "api_error"
)

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string) *Error {
	return &Error{
		Type:    ErrInvalidRequest,
		Message: message,
	}
}

// TypeFromStatus maps an HTTP status onto the error taxonomy.
func TypeFromStatus(status int) ErrorType {
	switch {
	case status == http.StatusUnauthorized:
		return ErrAuthentication
	case status == http.StatusForbidden:
		return ErrPermission
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimit
	case status >= 400 && status < 500:
		return ErrInvalidRequest
	default:
		return ErrAPI
	}
}

// FromStatus builds an *Error for a failed request. FastAPI error bodies
// carry a "detail" field that is either a string or a list of validation
// records; both are folded into Detail.
func FromStatus(method, endpoint string, status int, body []byte) *Error {
	return &Error{
		Type:       TypeFromStatus(status),
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: status,
		Detail:     extractDetail(body),
	}
}

func extractDetail(body []byte) string {
	body = []byte(strings.TrimSpace(string(body)))
	if len(body) == 0 {
		return ""
	}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
		Loc []any  `json:"loc"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg == "" {
				continue
			}
			parts = append(parts, item.Msg)
		}
		return strings.Join(parts, "; ")
	}
	return string(envelope.Detail)
}

// IsStatus reports whether err is an *Error with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr == nil {
		return false
	}
	return apiErr.StatusCode == status
}

// IsAuth reports whether err is a 401 from the backend.
func IsAuth(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsRetryable returns true if the error is retryable.
func (e *Error) IsRetryable() bool {
	if e == nil {
		return false
	}
	switch e.Type {
	case ErrRateLimit, ErrAPI:
		return true
	default:
		return false
	}
}
