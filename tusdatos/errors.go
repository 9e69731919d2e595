package tusdatos

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	// KindUnknown is the zero Kind and is never returned by the client
	KindUnknown Kind = iota
	// KindConfiguration indicates an invalid client configuration
	KindConfiguration
	// KindConnection indicates the exchange could not complete
	KindConnection
	// KindHTTPStatus indicates a non-2xx response
	KindHTTPStatus
	// KindMissingField indicates a required request field was empty
	KindMissingField
	// KindWebhookNotAllowed indicates a webhook was set on a testing client
	KindWebhookNotAllowed
	// KindInvalidResponse indicates a 2xx body that could not be decoded or validated
	KindInvalidResponse
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnection:
		return "connection"
	case KindHTTPStatus:
		return "http_status"
	case KindMissingField:
		return "missing_field"
	case KindWebhookNotAllowed:
		return "webhook_not_allowed"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is checks
var (
	// ErrConfiguration matches KindConfiguration errors
	ErrConfiguration = errors.New("invalid tusdatos configuration")
	// ErrConnection matches KindConnection errors
	ErrConnection = errors.New("connection error with the API")
	// ErrHTTPStatus matches KindHTTPStatus errors
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrMissingField matches KindMissingField errors
	ErrMissingField = errors.New("missing required field")
	// ErrWebhookNotAllowed matches KindWebhookNotAllowed errors
	ErrWebhookNotAllowed = errors.New("webhooks are not allowed in the testing environment")
	// ErrInvalidResponse matches KindInvalidResponse errors
	ErrInvalidResponse = errors.New("invalid API response")
)

// maxErrorBody caps the response body kept on HTTP status errors.
const maxErrorBody = 4 << 10

// Error is the only error type returned by the client.
type Error struct {
	Kind Kind

	// StatusCode is set for KindHTTPStatus.
	StatusCode int

	// Body is a truncated copy of the response body for KindHTTPStatus.
	Body []byte

	// Field names the empty request field for KindMissingField.
	Field string

	// Message is a human-readable detail.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case KindConnection:
		if e.Err != nil {
			return fmt.Sprintf("Connection error with the API: %v", e.Err)
		}
		return fmt.Sprintf("Connection error with the API: %s", e.Message)
	case KindHTTPStatus:
		return fmt.Sprintf("HTTP Error: %d", e.StatusCode)
	case KindMissingField:
		return fmt.Sprintf("missing required field %q", e.Field)
	case KindWebhookNotAllowed:
		return ErrWebhookNotAllowed.Error()
	case KindInvalidResponse:
		if e.Err != nil {
			return fmt.Sprintf("invalid API response: %s: %v", e.Message, e.Err)
		}
		return fmt.Sprintf("invalid API response: %s", e.Message)
	case KindConfiguration:
		return fmt.Sprintf("configuration error: %s", e.Message)
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Message
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindConfiguration:
		return target == ErrConfiguration
	case KindConnection:
		return target == ErrConnection
	case KindHTTPStatus:
		return target == ErrHTTPStatus
	case KindMissingField:
		return target == ErrMissingField
	case KindWebhookNotAllowed:
		return target == ErrWebhookNotAllowed
	case KindInvalidResponse:
		return target == ErrInvalidResponse
	}
	return false
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := AsError(err); ok && e.Kind == KindHTTPStatus {
		return e.StatusCode
	}
	return 0
}

func configError(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

func connectionError(err error) *Error {
	return &Error{Kind: KindConnection, Err: err}
}

func statusError(code int, body []byte) *Error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &Error{Kind: KindHTTPStatus, StatusCode: code, Body: body}
}

func missingField(field string) *Error {
	return &Error{Kind: KindMissingField, Field: field}
}

func invalidResponse(msg string, err error) *Error {
	return &Error{Kind: KindInvalidResponse, Message: msg, Err: err}
}
