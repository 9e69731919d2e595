package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/tusdatos/config"
	"github.com/s0up4200/tusdatos/filter"
	"github.com/s0up4200/tusdatos/tracker"
	"github.com/s0up4200/tusdatos/tusdatos"
)

// setupTestApp points the package-level client at handler
func setupTestApp(t *testing.T, handler http.HandlerFunc) *bytes.Buffer {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	transport := http.DefaultTransport.(*http.Transport).Clone()
	httpClient := &http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())
			r.URL.Scheme = target.Scheme
			r.URL.Host = target.Host
			return transport.RoundTrip(r)
		}),
	}

	logger = zerolog.Nop()
	client, err = tusdatos.NewClient(tusdatos.Testing, tusdatos.WithHTTPClient(httpClient))
	require.NoError(t, err)
	jobs = tracker.New(client, logger, tracker.WithPollInterval(time.Millisecond))
	filters = filter.NewManager()

	t.Cleanup(func() {
		filterExpr, preset = "", ""
		batchWait, maxWait = false, 0
	})

	return &bytes.Buffer{}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func testCommand(out *bytes.Buffer) *cobra.Command {
	c := &cobra.Command{}
	c.SetOut(out)
	c.SetContext(context.Background())
	return c
}

func TestHistoryWithFilter(t *testing.T) {
	out := setupTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/querys", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"a","estado":"finalizado"},{"id":"b","estado":"procesando"}]`))
	})

	filterExpr = `estado == "finalizado"`
	require.NoError(t, runHistory(testCommand(out), nil))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0]["id"])
}

func TestHistoryWithPreset(t *testing.T) {
	out := setupTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"a","hallazgo":true},{"id":"b","hallazgo":false}]}`))
	})
	require.NoError(t, filters.RegisterFilters(config.FilterConfig{"findings": "hallazgo == true"}))

	preset = "findings"
	require.NoError(t, runHistory(testCommand(out), nil))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0]["id"])
}

func TestHistoryUnknownPreset(t *testing.T) {
	out := setupTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	preset = "absent"
	err := runHistory(testCommand(out), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preset 'absent' not found")
}

func TestHistoryInvalidFilter(t *testing.T) {
	out := setupTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	filterExpr = `estado ==`
	err := runHistory(testCommand(out), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter expression")
}

func TestResultsPrintsFullResponse(t *testing.T) {
	out := setupTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/results/abc", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success","details":"Consulta exitosa"}`))
	})

	require.NoError(t, resultsCmd.RunE(testCommand(out), []string{"abc"}))
	assert.JSONEq(t, `{"status":"success","details":"Consulta exitosa"}`, out.String())
}

func TestBatch(t *testing.T) {
	out := setupTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/results/a":
			_, _ = w.Write([]byte(`{"id":"a","estado":"finalizado"}`))
		case "/api/results/b":
			_, _ = w.Write([]byte(`{"id":"b","estado":"procesando"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	require.NoError(t, runBatch(testCommand(out), []string{"a", "b", "c"}))

	var got batchOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 3, got.Requested)
	assert.Equal(t, []string{"a"}, got.Finished)
	assert.Len(t, got.Results, 2)
	assert.Equal(t, map[string]string{"c": "HTTP Error: 404"}, got.Failed)
}

func TestBatchAllFailed(t *testing.T) {
	out := setupTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := runBatch(testCommand(out), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 jobs failed")
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			setupLogger(config.LoggingConfig{Level: tt.level, Format: "json"})
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]any{"url": "https://a/b?c=1&d=2"}))
	assert.Equal(t, "{\n  \"url\": \"https://a/b?c=1&d=2\"\n}\n", buf.String())
}
