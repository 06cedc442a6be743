// Package transport provides the resilient request executor and pagination
// walkers shared by both platform clients. The executor owns the retry
// policy for rate-limited responses; clients never implement their own.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	// maxResponseSize limits response bodies to prevent memory exhaustion.
	maxResponseSize = 10 * 1024 * 1024

	// defaultMaxRetries bounds consecutive rate-limit retries for one
	// logical request.
	defaultMaxRetries = 6

	// defaultInitialInterval is the first backoff wait.
	defaultInitialInterval = 500 * time.Millisecond

	// defaultMaxInterval caps any single backoff wait, including waits
	// derived from a server-supplied Retry-After hint.
	defaultMaxInterval = 15 * time.Second
)

// Doer issues one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is the normalized success result of one executed request.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// RequestError is the uniform failure of one executed request. Status is 0
// when the transport itself failed before a status line was read.
type RequestError struct {
	Method string
	URL    string
	Status int
	Detail string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("transport: %s %s: %s", e.Method, e.URL, e.Detail)
	}
	return fmt.Sprintf("transport: %s %s: status %d: %s", e.Method, e.URL, e.Status, e.Detail)
}

// Executor issues single logical operations against a remote API with
// bounded exponential-backoff retry on rate-limit responses.
type Executor struct {
	doer            Doer
	log             *zap.Logger
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	header          http.Header
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxRetries bounds the number of rate-limit retries.
func WithMaxRetries(n int) Option {
	return func(e *Executor) { e.maxRetries = n }
}

// WithBackoff overrides the backoff schedule bounds. Tests use short
// intervals; production keeps the defaults.
func WithBackoff(initial, maxInterval time.Duration) Option {
	return func(e *Executor) {
		e.initialInterval = initial
		e.maxInterval = maxInterval
	}
}

// WithHeader adds a header sent on every request, such as an auth token.
func WithHeader(key, value string) Option {
	return func(e *Executor) { e.header.Set(key, value) }
}

// NewExecutor creates an executor over the given Doer.
func NewExecutor(doer Doer, log *zap.Logger, opts ...Option) *Executor {
	e := &Executor{
		doer:            doer,
		log:             log,
		maxRetries:      defaultMaxRetries,
		initialInterval: defaultInitialInterval,
		maxInterval:     defaultMaxInterval,
		header:          make(http.Header),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do executes one logical operation. body, when non-nil, is JSON-encoded.
// Non-2xx responses other than 429 fail immediately with a *RequestError;
// 429 responses are retried with exponential backoff (a Retry-After header
// overrides the scheduled wait, capped at the executor's max interval) until
// the bounded attempt count is exhausted.
func (e *Executor) Do(ctx context.Context, method, rawURL string, query url.Values, body any) (*Response, error) {
	fullURL := rawURL
	if len(query) > 0 {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, &RequestError{Method: method, URL: rawURL, Detail: err.Error()}
		}
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		fullURL = u.String()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &RequestError{Method: method, URL: fullURL, Detail: fmt.Sprintf("encode body: %v", err)}
		}
	}

	sched := backoff.NewExponentialBackOff()
	sched.InitialInterval = e.initialInterval
	sched.MaxInterval = e.maxInterval
	sched.MaxElapsedTime = 0
	sched.Reset()

	for attempt := 0; ; attempt++ {
		resp, err := e.attempt(ctx, method, fullURL, payload)
		if err != nil {
			return nil, err
		}
		if resp.Status != http.StatusTooManyRequests {
			if resp.Status >= 200 && resp.Status < 300 {
				return resp, nil
			}
			return nil, &RequestError{Method: method, URL: fullURL, Status: resp.Status, Detail: string(resp.Body)}
		}

		if attempt >= e.maxRetries {
			return nil, &RequestError{
				Method: method,
				URL:    fullURL,
				Status: resp.Status,
				Detail: fmt.Sprintf("rate limited; gave up after %d retries", e.maxRetries),
			}
		}

		wait := sched.NextBackOff()
		if hint, ok := retryAfter(resp.Header); ok {
			wait = hint
		}
		if wait > e.maxInterval {
			wait = e.maxInterval
		}
		e.log.Debug("rate limited, backing off",
			zap.String("method", method),
			zap.String("url", fullURL),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1))

		select {
		case <-ctx.Done():
			return nil, &RequestError{Method: method, URL: fullURL, Detail: ctx.Err().Error()}
		case <-time.After(wait):
		}
	}
}

// attempt issues the request once and reads the body. Transport failures
// become a *RequestError with Status 0; any status line read is returned to
// the caller for classification.
func (e *Executor) attempt(ctx context.Context, method, fullURL string, payload []byte) (*Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, &RequestError{Method: method, URL: fullURL, Detail: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range e.header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := e.doer.Do(req)
	if err != nil {
		return nil, &RequestError{Method: method, URL: fullURL, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &RequestError{Method: method, URL: fullURL, Status: resp.StatusCode, Detail: fmt.Sprintf("read body: %v", err)}
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// retryAfter parses a Retry-After header given in whole seconds.
func retryAfter(h http.Header) (time.Duration, bool) {
	v := h.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}
