package tusdatos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Format selects how a response body is decoded.
type Format int

const (
	// FormatJSON decodes the body as JSON
	FormatJSON Format = iota
	// FormatHTML returns the body as text
	FormatHTML
	// FormatPDF returns the body as raw bytes
	FormatPDF
)

// String returns the string representation of a Format
func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatPDF:
		return "pdf"
	default:
		return "json"
	}
}

func (f Format) accept() string {
	switch f {
	case FormatHTML:
		return "text/html"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// Request describes a single call. It is built fresh for every call.
type Request struct {
	Method string
	// Path is appended verbatim to the base URL.
	Path  string
	Body  any
	Query url.Values
	// Timeout overrides the client default when positive.
	Timeout time.Duration
	Format  Format
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Format     Format
}

// JSON decodes the body into a generic JSON value.
func (r *Response) JSON() (any, error) {
	var v any
	if err := r.decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Response) isNull() bool {
	return bytes.Equal(bytes.TrimSpace(r.Body), []byte("null"))
}

func (r *Response) decode(out any) error {
	trimmed := bytes.TrimSpace(r.Body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return invalidResponse("empty response body", nil)
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return invalidResponse("failed to decode response body", err)
	}
	return nil
}

// dispatcher is the only place a request leaves the process. It holds no
// per-request state and is safe for concurrent use.
type dispatcher struct {
	baseURL    string
	username   string
	password   string
	headers    http.Header
	httpClient *http.Client
	timeout    time.Duration
	requestID  func() string
	logger     zerolog.Logger
}

func newDispatcher(baseURL string, o clientOptions) *dispatcher {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")
	if o.userAgent != "" {
		headers.Set("User-Agent", o.userAgent)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		}
	}

	return &dispatcher{
		baseURL:    baseURL,
		username:   o.username,
		password:   o.password,
		headers:    headers,
		httpClient: httpClient,
		timeout:    o.timeout,
		requestID:  o.requestID,
		logger:     o.logger,
	}
}

// dispatch performs r and returns the fully read response. Transport failures,
// including timeout and cancellation, become KindConnection errors; non-2xx
// responses become KindHTTPStatus errors.
func (d *dispatcher) dispatch(ctx context.Context, r *Request) (*Response, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = d.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := d.baseURL + r.Path
	if len(r.Query) > 0 {
		endpoint += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, connectionError(fmt.Errorf("failed to encode request body: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, endpoint, body)
	if err != nil {
		return nil, connectionError(fmt.Errorf("failed to create request: %w", err))
	}

	for k, vv := range d.headers {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", r.Format.accept())
	req.SetBasicAuth(d.username, d.password)

	var requestID string
	if d.requestID != nil {
		requestID = d.requestID()
		if requestID != "" {
			req.Header.Set("X-Request-ID", requestID)
		}
	}

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Debug().
			Err(err).
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.Path).
			Dur("elapsed", time.Since(start)).
			Msg("TusDatos request failed")
		return nil, connectionError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, connectionError(fmt.Errorf("failed to read response body: %w", err))
	}

	d.logger.Debug().
		Str("request_id", requestID).
		Str("method", r.Method).
		Str("path", r.Path).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("TusDatos request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, data)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Format:     r.Format,
	}, nil
}
