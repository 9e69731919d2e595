package tusdatos

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/results/abc", r.URL.Path)
		writeJSON(t, w, map[string]any{"id": "abc", "estado": "finalizado"})
	})

	future := client.Async().Results(context.Background(), "abc")
	result, err := future.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", result.ID)
	assert.True(t, result.IsFinished())

	select {
	case <-future.Done():
	default:
		t.Fatal("Done should be closed after Await returns")
	}
}

func TestAsyncConcurrentCalls(t *testing.T) {
	var mu sync.Mutex
	paths := make(map[string]bool)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths[r.URL.Path] = true
		mu.Unlock()
		writeJSON(t, w, map[string]any{"id": r.URL.Path, "estado": "procesando"})
	})
	async := client.Async()
	ctx := context.Background()

	futures := []*Future[*JobResult]{
		async.Results(ctx, "a"),
		async.Results(ctx, "b"),
		async.Results(ctx, "c"),
	}
	for _, f := range futures {
		result, err := f.Await(ctx)
		require.NoError(t, err)
		assert.False(t, result.IsFinished())
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, paths, 3)
}

func TestAsyncAwaitCancellationAbortsRequest(t *testing.T) {
	aborted := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			close(aborted)
		case <-time.After(5 * time.Second):
		}
	})

	future := client.Async().Results(context.Background(), "slow")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := future.Await(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)

	select {
	case <-aborted:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was not cancelled")
	}
}

func TestAsyncCallContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	future := client.Async().PlanStatus(ctx)
	cancel()

	_, err := future.Await(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAsyncFutureCancel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	future := client.Async().QueryHistory(context.Background())
	future.Cancel()

	_, err := future.Await(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestAsyncPropagatesPreconditionErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.Async().Retry(context.Background(), RetryRequest{ID: "abc"}).Await(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestNewAsyncClient(t *testing.T) {
	_, err := NewAsyncClient(Environment("dev"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)

	async, err := NewAsyncClient(Testing)
	require.NoError(t, err)
	assert.Equal(t, TestingURL, async.Client().BaseURL())
}
