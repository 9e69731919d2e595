// Package tracker composes TusDatos calls the way a caller typically needs
// them: polling a launched job until it finishes and fetching many job
// results at once.
package tracker

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/tusdatos/tusdatos"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultConcurrency  = 4
	MaxConcurrency      = 20
)

// ResultsAPI is the part of the client the tracker needs
type ResultsAPI interface {
	Results(ctx context.Context, id string, opts ...tusdatos.CallOption) (*tusdatos.JobResult, error)
}

// Tracker polls job results. It is safe for concurrent use.
type Tracker struct {
	api          ResultsAPI
	logger       zerolog.Logger
	pollInterval time.Duration
	concurrency  int
}

// Option configures a Tracker
type Option func(*Tracker)

// WithPollInterval sets the delay between two Results calls for the same job
func WithPollInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.pollInterval = d
		}
	}
}

// WithConcurrency sets how many jobs are fetched at the same time, capped at
// MaxConcurrency
func WithConcurrency(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.concurrency = min(n, MaxConcurrency)
		}
	}
}

// New creates a new tracker
func New(api ResultsAPI, logger zerolog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		api:          api,
		logger:       logger.With().Str("component", "tracker").Logger(),
		pollInterval: DefaultPollInterval,
		concurrency:  DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Wait polls the job until it is finished. Errors from the client are
// returned unchanged; a done ctx stops polling with ctx's error.
func (t *Tracker) Wait(ctx context.Context, id string) (*tusdatos.JobResult, error) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		result, err := t.api.Results(ctx, id)
		if err != nil {
			return nil, err
		}

		if result.IsFinished() {
			t.logger.Debug().
				Str("job_id", id).
				Int("attempts", attempt).
				Msg("Job finished")
			return result, nil
		}

		t.logger.Debug().
			Str("job_id", id).
			Str("status", result.Status).
			Int("attempt", attempt).
			Dur("next_poll", t.pollInterval).
			Msg("Job still running")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for job %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

// FetchAll gets the current result of every job concurrently. Individual
// failures do not stop the batch.
func (t *Tracker) FetchAll(ctx context.Context, ids []string) BatchResult {
	return t.run(ctx, ids, func(ctx context.Context, id string) (*tusdatos.JobResult, error) {
		return t.api.Results(ctx, id)
	})
}

// WaitAll waits for every job concurrently. Individual failures do not stop
// the batch.
func (t *Tracker) WaitAll(ctx context.Context, ids []string) BatchResult {
	return t.run(ctx, ids, t.Wait)
}

func (t *Tracker) run(ctx context.Context, ids []string, fetch func(context.Context, string) (*tusdatos.JobResult, error)) BatchResult {
	result := BatchResult{
		Requested: len(ids),
		Results:   make(map[string]*tusdatos.JobResult, len(ids)),
	}

	if len(ids) == 0 {
		return result
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)

	type success struct {
		id     string
		result *tusdatos.JobResult
	}
	successChan := make(chan success, len(ids))
	errorChan := make(chan FetchError, len(ids))

	for _, id := range ids {
		g.Go(func() error {
			r, err := fetch(ctx, id)
			if err != nil {
				t.logger.Warn().
					Err(err).
					Str("job_id", id).
					Msg("Failed to get job result")
				errorChan <- FetchError{ID: id, Err: err}
				return nil
			}
			successChan <- success{id: id, result: r}
			return nil
		})
	}

	_ = g.Wait()
	close(successChan)
	close(errorChan)

	for s := range successChan {
		result.Results[s.id] = s.result
	}
	for err := range errorChan {
		result.Failed = append(result.Failed, err)
	}
	slices.SortFunc(result.Failed, func(a, b FetchError) int {
		return strings.Compare(a.ID, b.ID)
	})

	return result
}

// BatchResult contains the results of a batch operation
type BatchResult struct {
	Requested int
	Results   map[string]*tusdatos.JobResult
	Failed    []FetchError
}

// Finished returns the ids whose job is finished, in sorted order
func (r BatchResult) Finished() []string {
	ids := make([]string, 0, len(r.Results))
	for id, res := range r.Results {
		if res.IsFinished() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// FetchError contains information about a failed fetch
type FetchError struct {
	ID  string
	Err error
}

// Error implements the error interface
func (e FetchError) Error() string {
	return fmt.Sprintf("failed to get result for job %s: %v", e.ID, e.Err)
}

// Unwrap returns the underlying error
func (e FetchError) Unwrap() error {
	return e.Err
}
