package tusdatos

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "connection",
			err:      connectionError(errors.New("dial tcp: connection refused")),
			expected: "Connection error with the API: dial tcp: connection refused",
		},
		{
			name:     "http status",
			err:      statusError(500, []byte("boom")),
			expected: "HTTP Error: 500",
		},
		{
			name:     "missing field",
			err:      missingField("typedoc"),
			expected: `missing required field "typedoc"`,
		},
		{
			name:     "configuration",
			err:      configError("invalid environment %q", "dev"),
			expected: `configuration error: invalid environment "dev"`,
		},
		{
			name:     "invalid response",
			err:      invalidResponse("empty response body", nil),
			expected: "invalid API response: empty response body",
		},
		{
			name:     "webhook",
			err:      &Error{Kind: KindWebhookNotAllowed},
			expected: "webhooks are not allowed in the testing environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorIs(t *testing.T) {
	sentinels := map[Kind]error{
		KindConfiguration:     ErrConfiguration,
		KindConnection:        ErrConnection,
		KindHTTPStatus:        ErrHTTPStatus,
		KindMissingField:      ErrMissingField,
		KindWebhookNotAllowed: ErrWebhookNotAllowed,
		KindInvalidResponse:   ErrInvalidResponse,
	}

	for kind, sentinel := range sentinels {
		t.Run(kind.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &Error{Kind: kind})
			assert.ErrorIs(t, err, sentinel)
			for other, otherSentinel := range sentinels {
				if other != kind {
					assert.NotErrorIs(t, err, otherSentinel)
				}
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := connectionError(fmt.Errorf("get: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 404, StatusCode(fmt.Errorf("x: %w", statusError(404, nil))))
	assert.Equal(t, 0, StatusCode(connectionError(errors.New("refused"))))
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
}

func TestStatusErrorTruncatesBody(t *testing.T) {
	body := make([]byte, maxErrorBody*2)
	err := statusError(502, body)
	assert.Len(t, err.Body, maxErrorBody)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "connection", KindConnection.String())
	assert.Equal(t, "http_status", KindHTTPStatus.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
