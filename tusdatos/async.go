package tusdatos

import (
	"context"
)

// Future is the pending result of one asynchronous call. It is backed by a
// single goroutine running the call's in-flight request.
type Future[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	value  T
	err    error
}

func startFuture[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(f.done)
		defer cancel()
		f.value, f.err = fn(ctx)
	}()

	return f
}

// Done is closed once the call has completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Cancel aborts the in-flight request. The future then resolves to a
// KindConnection error unless the call had already completed.
func (f *Future[T]) Cancel() {
	f.cancel()
}

// Await blocks until the call completes or ctx is done. When ctx is done
// first the in-flight request is cancelled and Await waits for it to unwind,
// so no response is left half read.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		f.cancel()
		<-f.done
	}
	return f.value, f.err
}

// AsyncClient exposes the Client method table with non-blocking calls. Every
// method returns immediately with a Future; cancelling the context passed to
// the method cancels the request.
type AsyncClient struct {
	c *Client
}

// NewAsyncClient creates a new asynchronous client. See NewClient.
func NewAsyncClient(env Environment, opts ...Option) (*AsyncClient, error) {
	c, err := NewClient(env, opts...)
	if err != nil {
		return nil, err
	}
	return c.Async(), nil
}

// Client returns the underlying blocking client.
func (a *AsyncClient) Client() *Client {
	return a.c
}

// Dispatch performs an arbitrary request. See Client.Dispatch.
func (a *AsyncClient) Dispatch(ctx context.Context, r *Request) *Future[any] {
	return startFuture(ctx, func(ctx context.Context) (any, error) {
		return a.c.Dispatch(ctx, r)
	})
}

// StartQuery launches a background check for a person.
func (a *AsyncClient) StartQuery(ctx context.Context, req StartQueryRequest, opts ...CallOption) *Future[*LaunchResponse] {
	return startFuture(ctx, func(ctx context.Context) (*LaunchResponse, error) {
		return a.c.StartQuery(ctx, req, opts...)
	})
}

// Results gets the status and result of a previous query.
func (a *AsyncClient) Results(ctx context.Context, id string, opts ...CallOption) *Future[*JobResult] {
	return startFuture(ctx, func(ctx context.Context) (*JobResult, error) {
		return a.c.Results(ctx, id, opts...)
	})
}

// Retry re-runs the sources that failed in a previous query.
func (a *AsyncClient) Retry(ctx context.Context, req RetryRequest, opts ...CallOption) *Future[Object] {
	return startFuture(ctx, func(ctx context.Context) (Object, error) {
		return a.c.Retry(ctx, req, opts...)
	})
}

// VehicleQuery launches a check of a vehicle and its owner.
func (a *AsyncClient) VehicleQuery(ctx context.Context, req VehicleQueryRequest, opts ...CallOption) *Future[*LaunchResponse] {
	return startFuture(ctx, func(ctx context.Context) (*LaunchResponse, error) {
		return a.c.VehicleQuery(ctx, req, opts...)
	})
}

// Report generates the HTML report of a finished query.
func (a *AsyncClient) Report(ctx context.Context, id string, opts ...CallOption) *Future[string] {
	return startFuture(ctx, func(ctx context.Context) (string, error) {
		return a.c.Report(ctx, id, opts...)
	})
}

// ReportPDF generates the PDF report of a finished query.
func (a *AsyncClient) ReportPDF(ctx context.Context, id string, opts ...CallOption) *Future[[]byte] {
	return startFuture(ctx, func(ctx context.Context) ([]byte, error) {
		return a.c.ReportPDF(ctx, id, opts...)
	})
}

// ReportJSON generates the structured report of a finished query.
func (a *AsyncClient) ReportJSON(ctx context.Context, id string, opts ...CallOption) *Future[Report] {
	return startFuture(ctx, func(ctx context.Context) (Report, error) {
		return a.c.ReportJSON(ctx, id, opts...)
	})
}

// PlanStatus returns the status of the account's plan.
func (a *AsyncClient) PlanStatus(ctx context.Context, opts ...CallOption) *Future[Object] {
	return startFuture(ctx, func(ctx context.Context) (Object, error) {
		return a.c.PlanStatus(ctx, opts...)
	})
}

// QueryHistory returns the queries performed by the account.
func (a *AsyncClient) QueryHistory(ctx context.Context, opts ...CallOption) *Future[History] {
	return startFuture(ctx, func(ctx context.Context) (History, error) {
		return a.c.QueryHistory(ctx, opts...)
	})
}

// LaunchVerify verifies a person's identity.
func (a *AsyncClient) LaunchVerify(ctx context.Context, req VerifyRequest, opts ...CallOption) *Future[*VerifyResponse] {
	return startFuture(ctx, func(ctx context.Context) (*VerifyResponse, error) {
		return a.c.LaunchVerify(ctx, req, opts...)
	})
}

// LaunchVerifyNIT verifies a company by its NIT.
func (a *AsyncClient) LaunchVerifyNIT(ctx context.Context, req VerifyNITRequest, opts ...CallOption) *Future[*VerifyNITResponse] {
	return startFuture(ctx, func(ctx context.Context) (*VerifyNITResponse, error) {
		return a.c.LaunchVerifyNIT(ctx, req, opts...)
	})
}
