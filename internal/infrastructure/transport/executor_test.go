package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testExecutor(t *testing.T, opts ...Option) *Executor {
	t.Helper()
	base := []Option{WithBackoff(time.Millisecond, 5*time.Millisecond)}
	return NewExecutor(http.DefaultClient, zaptest.NewLogger(t), append(base, opts...)...)
}

func TestDoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := testExecutor(t).Do(context.Background(), "GET", srv.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestDoSendsHeadersAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Auth-Token"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "preset", r.URL.Query().Get("fixed"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ex := testExecutor(t, WithHeader("X-Auth-Token", "secret"))
	query := url.Values{"page": {"2"}}
	_, err := ex.Do(context.Background(), "GET", srv.URL+"?fixed=preset", query, nil)
	require.NoError(t, err)
}

func TestDoEncodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var got map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "value", got["key"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := testExecutor(t).Do(context.Background(), "POST", srv.URL, nil, map[string]string{"key": "value"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
}

func TestDoRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 6 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := testExecutor(t).Do(context.Background(), "GET", srv.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int32(7), calls.Load())
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testExecutor(t).Do(context.Background(), "GET", srv.URL, nil, nil)
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusTooManyRequests, reqErr.Status)
	assert.Contains(t, reqErr.Detail, "gave up")
	// Initial attempt plus six retries.
	assert.Equal(t, int32(7), calls.Load())
}

func TestDoRespectsRetryAfterHint(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0.01")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	start := time.Now()
	_, err := testExecutor(t).Do(context.Background(), "GET", srv.URL, nil, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoFailsImmediatelyOnNonRateLimitError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":{"title":["has already been taken"]}}`))
	}))
	defer srv.Close()

	_, err := testExecutor(t).Do(context.Background(), "GET", srv.URL, nil, nil)
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnprocessableEntity, reqErr.Status)
	assert.Contains(t, reqErr.Detail, "has already been taken")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := testExecutor(t).Do(context.Background(), "GET", srv.URL, nil, nil)
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 0, reqErr.Status)
}

func TestDoContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := NewExecutor(http.DefaultClient, zaptest.NewLogger(t), WithBackoff(time.Second, time.Second))
	_, err := ex.Do(ctx, "GET", srv.URL, nil, nil)
	require.Error(t, err)
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		want   time.Duration
		wantOK bool
	}{
		{"whole seconds", "2", 2 * time.Second, true},
		{"fractional seconds", "0.5", 500 * time.Millisecond, true},
		{"absent", "", 0, false},
		{"garbage", "soon", 0, false},
		{"negative", "-1", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.value != "" {
				h.Set("Retry-After", tt.value)
			}
			got, ok := retryAfter(h)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
