package tracker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/tusdatos/tusdatos"
)

// fakeAPI answers Results from a per-id script of statuses
type fakeAPI struct {
	mu       sync.Mutex
	statuses map[string][]string
	errs     map[string]error
	calls    map[string]int

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		statuses: make(map[string][]string),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (f *fakeAPI) Results(ctx context.Context, id string, _ ...tusdatos.CallOption) (*tusdatos.JobResult, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.errs[id]; ok {
		return nil, err
	}

	script := f.statuses[id]
	call := f.calls[id]
	f.calls[id]++

	status := tusdatos.JobStatusFinished
	if len(script) > 0 {
		status = script[min(call, len(script)-1)]
	}
	return &tusdatos.JobResult{ID: id, Status: status}, nil
}

func (f *fakeAPI) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func TestNewDefaults(t *testing.T) {
	tr := New(newFakeAPI(), zerolog.Nop())
	assert.Equal(t, DefaultPollInterval, tr.pollInterval)
	assert.Equal(t, DefaultConcurrency, tr.concurrency)

	tr = New(newFakeAPI(), zerolog.Nop(), WithPollInterval(0), WithConcurrency(-1))
	assert.Equal(t, DefaultPollInterval, tr.pollInterval)
	assert.Equal(t, DefaultConcurrency, tr.concurrency)

	tr = New(newFakeAPI(), zerolog.Nop(), WithConcurrency(100))
	assert.Equal(t, MaxConcurrency, tr.concurrency)
}

func TestWaitPollsUntilFinished(t *testing.T) {
	api := newFakeAPI()
	api.statuses["job"] = []string{"procesando", "procesando", "finalizado"}

	tr := New(api, zerolog.Nop(), WithPollInterval(time.Millisecond))
	result, err := tr.Wait(context.Background(), "job")
	require.NoError(t, err)
	assert.True(t, result.IsFinished())
	assert.Equal(t, 3, api.callCount("job"))
}

func TestWaitReturnsClientErrorsUnchanged(t *testing.T) {
	api := newFakeAPI()
	want := &tusdatos.Error{Kind: tusdatos.KindHTTPStatus, StatusCode: 404}
	api.errs["job"] = want

	tr := New(api, zerolog.Nop(), WithPollInterval(time.Millisecond))
	_, err := tr.Wait(context.Background(), "job")
	require.Error(t, err)
	assert.Same(t, want, err)
	assert.Equal(t, 404, tusdatos.StatusCode(err))
}

func TestWaitStopsWhenContextDone(t *testing.T) {
	api := newFakeAPI()
	api.statuses["job"] = []string{"procesando"}

	tr := New(api, zerolog.Nop(), WithPollInterval(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := tr.Wait(ctx, "job")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, api.callCount("job"))
}

func TestFetchAll(t *testing.T) {
	api := newFakeAPI()
	api.statuses["a"] = []string{"finalizado"}
	api.statuses["b"] = []string{"procesando"}
	api.errs["c"] = &tusdatos.Error{Kind: tusdatos.KindHTTPStatus, StatusCode: 500}
	api.errs["d"] = &tusdatos.Error{Kind: tusdatos.KindConnection, Err: errors.New("refused")}

	tr := New(api, zerolog.Nop())
	result := tr.FetchAll(context.Background(), []string{"d", "a", "c", "b"})

	assert.Equal(t, 4, result.Requested)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "procesando", result.Results["b"].Status)
	assert.Equal(t, []string{"a"}, result.Finished())

	require.Len(t, result.Failed, 2)
	assert.Equal(t, "c", result.Failed[0].ID)
	assert.Equal(t, "d", result.Failed[1].ID)
	assert.ErrorIs(t, result.Failed[0], tusdatos.ErrHTTPStatus)
	assert.ErrorIs(t, result.Failed[1], tusdatos.ErrConnection)
	assert.Contains(t, result.Failed[0].Error(), "failed to get result for job c")
}

func TestFetchAllEmpty(t *testing.T) {
	result := New(newFakeAPI(), zerolog.Nop()).FetchAll(context.Background(), nil)
	assert.Equal(t, 0, result.Requested)
	assert.Empty(t, result.Results)
	assert.Empty(t, result.Failed)
}

func TestFetchAllRespectsConcurrencyLimit(t *testing.T) {
	api := newFakeAPI()
	api.delay = 10 * time.Millisecond

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}

	tr := New(api, zerolog.Nop(), WithConcurrency(3))
	result := tr.FetchAll(context.Background(), ids)

	assert.Len(t, result.Results, len(ids))
	assert.LessOrEqual(t, api.maxInFlight.Load(), int32(3))
}

func TestWaitAll(t *testing.T) {
	api := newFakeAPI()
	api.statuses["a"] = []string{"procesando", "finalizado"}
	api.statuses["b"] = []string{"procesando", "procesando", "finalizado"}
	api.errs["c"] = &tusdatos.Error{Kind: tusdatos.KindHTTPStatus, StatusCode: 404}

	tr := New(api, zerolog.Nop(), WithPollInterval(time.Millisecond))
	result := tr.WaitAll(context.Background(), []string{"a", "b", "c"})

	assert.Equal(t, []string{"a", "b"}, result.Finished())
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "c", result.Failed[0].ID)
}
