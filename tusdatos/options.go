package tusdatos

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single call when neither the client nor the call sets one.
const DefaultTimeout = 10 * time.Second

// Placeholder credentials accepted by the testing environment.
const (
	TestingUsername = "pruebas"
	TestingPassword = "password"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	username   string
	password   string
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
	requestID  func() string
	userAgent  string
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout:   DefaultTimeout,
		logger:    zerolog.Nop(),
		requestID: uuid.NewString,
	}
}

// WithCredentials sets the Basic Auth username and password.
func WithCredentials(username, password string) Option {
	return func(o *clientOptions) {
		o.username = username
		o.password = password
	}
}

// WithHTTPClient sets the HTTP client used as transport. Its Timeout, if any,
// applies in addition to the per-call timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithTimeout sets the default per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithLogger sets the logger. Requests are logged at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithRequestIDFunc sets the generator for the X-Request-ID header.
// A nil func disables the header.
func WithRequestIDFunc(fn func() string) Option {
	return func(o *clientOptions) {
		o.requestID = fn
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// CallOption adjusts a single request.
type CallOption func(*Request)

// WithCallTimeout overrides the timeout for one call.
func WithCallTimeout(timeout time.Duration) CallOption {
	return func(r *Request) {
		r.Timeout = timeout
	}
}
