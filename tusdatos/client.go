package tusdatos

import (
	"context"
	"net/http"
	"net/url"
)

// Client is a TusDatos API client. Its state is read-only after NewClient, so
// a single Client may be shared by any number of goroutines.
type Client struct {
	environment Environment
	baseURL     string
	d           *dispatcher
}

var _ API = (*Client)(nil)

// NewClient creates a new client for env. It fails with a KindConfiguration
// error before any network activity when env is unknown, or when env is
// Production and the username or password is empty. A Testing client without
// credentials uses the sandbox placeholders.
func NewClient(env Environment, opts ...Option) (*Client, error) {
	baseURL, err := ResolveBaseURL(env)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if env == Production && (o.username == "" || o.password == "") {
		return nil, configError("username and password are required in the %s environment", Production)
	}
	if o.username == "" && o.password == "" {
		o.logger.Warn().
			Str("environment", env.String()).
			Msg("No credentials supplied, using TusDatos sandbox placeholders")
		o.username = TestingUsername
		o.password = TestingPassword
	}

	return &Client{
		environment: env,
		baseURL:     baseURL,
		d:           newDispatcher(baseURL, o),
	}, nil
}

// Environment returns the environment the client targets
func (c *Client) Environment() Environment {
	return c.environment
}

// BaseURL returns the resolved base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Async returns an AsyncClient sharing this client's configuration.
func (c *Client) Async() *AsyncClient {
	return &AsyncClient{c: c}
}

// Dispatch performs an arbitrary request and returns the decoded JSON body
// unchanged, including a JSON null as nil. For HTML and PDF formats the raw
// body is returned as []byte.
func (c *Client) Dispatch(ctx context.Context, r *Request) (any, error) {
	resp, err := c.d.dispatch(ctx, r)
	if err != nil {
		return nil, err
	}
	if r.Format != FormatJSON {
		return resp.Body, nil
	}
	if resp.isNull() {
		return nil, nil
	}
	return resp.JSON()
}

func newRequest(method, path string, body any, query url.Values, format Format, opts []CallOption) *Request {
	r := &Request{
		Method: method,
		Path:   path,
		Body:   body,
		Query:  query,
		Format: format,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// call dispatches r and decodes the JSON body into a new T. On any error the
// zero T is returned, never a partly decoded value.
func call[T any](ctx context.Context, c *Client, r *Request) (T, error) {
	var zero T
	resp, err := c.d.dispatch(ctx, r)
	if err != nil {
		return zero, err
	}
	var out T
	if err := resp.decode(&out); err != nil {
		return zero, err
	}
	return out, nil
}

func resourcePath(prefix, id string) (string, error) {
	if id == "" {
		return "", missingField("id")
	}
	return prefix + url.PathEscape(id), nil
}

// StartQuery launches a background check for a person.
func (c *Client) StartQuery(ctx context.Context, req StartQueryRequest, opts ...CallOption) (*LaunchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Webhook != "" && c.environment == Testing {
		return nil, &Error{Kind: KindWebhookNotAllowed}
	}

	r := newRequest(http.MethodPost, "/api/launch", req, nil, FormatJSON, opts)
	return call[*LaunchResponse](ctx, c, r)
}

// Results gets the status and result of a previous query.
func (c *Client) Results(ctx context.Context, id string, opts ...CallOption) (*JobResult, error) {
	path, err := resourcePath("/api/results/", id)
	if err != nil {
		return nil, err
	}

	r := newRequest(http.MethodGet, path, nil, nil, FormatJSON, opts)
	return call[*JobResult](ctx, c, r)
}

// Retry re-runs the sources that failed in a previous query.
func (c *Client) Retry(ctx context.Context, req RetryRequest, opts ...CallOption) (Object, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("typedoc", req.DocType)
	r := newRequest(http.MethodGet, "/api/retry/"+url.PathEscape(req.ID), nil, query, FormatJSON, opts)
	return call[Object](ctx, c, r)
}

// VehicleQuery launches a check of a vehicle and its owner.
func (c *Client) VehicleQuery(ctx context.Context, req VehicleQueryRequest, opts ...CallOption) (*LaunchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r := newRequest(http.MethodPost, "/api/launch/car", req, nil, FormatJSON, opts)
	return call[*LaunchResponse](ctx, c, r)
}

// Report generates the HTML report of a finished query.
func (c *Client) Report(ctx context.Context, id string, opts ...CallOption) (string, error) {
	path, err := resourcePath("/api/report/", id)
	if err != nil {
		return "", err
	}

	resp, err := c.d.dispatch(ctx, newRequest(http.MethodGet, path, nil, nil, FormatHTML, opts))
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// ReportPDF generates the PDF report of a finished query and returns the
// body exactly as sent by the API.
func (c *Client) ReportPDF(ctx context.Context, id string, opts ...CallOption) ([]byte, error) {
	path, err := resourcePath("/api/report_pdf/", id)
	if err != nil {
		return nil, err
	}

	resp, err := c.d.dispatch(ctx, newRequest(http.MethodGet, path, nil, nil, FormatPDF, opts))
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ReportJSON generates the structured report of a finished query.
func (c *Client) ReportJSON(ctx context.Context, id string, opts ...CallOption) (Report, error) {
	path, err := resourcePath("/api/report_json/", id)
	if err != nil {
		return nil, err
	}

	r := newRequest(http.MethodGet, path, nil, nil, FormatJSON, opts)
	return call[Report](ctx, c, r)
}

// PlanStatus returns the status of the account's plan.
func (c *Client) PlanStatus(ctx context.Context, opts ...CallOption) (Object, error) {
	r := newRequest(http.MethodGet, "/api/plans", nil, nil, FormatJSON, opts)
	return call[Object](ctx, c, r)
}

// QueryHistory returns the queries performed by the account.
func (c *Client) QueryHistory(ctx context.Context, opts ...CallOption) (History, error) {
	r := newRequest(http.MethodGet, "/api/querys", nil, nil, FormatJSON, opts)
	return call[History](ctx, c, r)
}

// LaunchVerify verifies a person's identity.
func (c *Client) LaunchVerify(ctx context.Context, req VerifyRequest, opts ...CallOption) (*VerifyResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r := newRequest(http.MethodPost, "/api/launch/verify", req, nil, FormatJSON, opts)
	return call[*VerifyResponse](ctx, c, r)
}

// LaunchVerifyNIT verifies a company by its NIT.
func (c *Client) LaunchVerifyNIT(ctx context.Context, req VerifyNITRequest, opts ...CallOption) (*VerifyNITResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r := newRequest(http.MethodPost, "/api/launch/verify/nit", req, nil, FormatJSON, opts)
	return call[*VerifyNITResponse](ctx, c, r)
}
