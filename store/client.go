package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dugoutlabs/go-dugout/logger"
	"github.com/dugoutlabs/go-dugout/querycache"
	"github.com/google/uuid"
)

const defaultRetries = 3

// Error is a transport-level store failure: the request never produced a
// result envelope.
type Error struct {
	URL       string
	Status    int
	Body      string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client issues read-only queries against the stats store's REST endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logger.Logger
	retries int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

// WithRetries sets how many times a transient failure is retried.
func WithRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// NewClient returns a store client. apiKey may be empty for anonymous reads.
func NewClient(baseURL, apiKey string, log logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.WithPrefix("store"),
		retries: defaultRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
			return true
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return true
		}
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

// do executes the query and returns the raw response body and status.
// Transport failures are retried with a short linear backoff.
func (c *Client) do(ctx context.Context, q Query) (int, []byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return 0, nil, &Error{URL: c.baseURL, Err: errors.Wrap(err, "parsing base url")}
	}
	u.Path = path.Join(u.Path, q.Table())
	u.RawQuery = q.encode().Encode()

	requestID := uuid.NewString()
	log := c.log.With(map[string]interface{}{"request_id": requestID, "table": q.Table()})

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, nil, &Error{URL: u.String(), RequestID: requestID, Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return 0, nil, &Error{URL: u.String(), RequestID: requestID, Err: errors.Wrap(err, "creating request")}
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-Id", requestID)
		if c.apiKey != "" {
			req.Header.Set("apikey", c.apiKey)
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		if q.single {
			req.Header.Set("Accept", "application/vnd.pgrst.object+json")
		}

		log.Trace("GET %s (attempt %d)", u.String(), attempt+1)
		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if shouldRetry(nil, err) && attempt < c.retries {
				log.Debug("transient request failure, retrying: %v", err)
				continue
			}
			return 0, nil, &Error{URL: u.String(), RequestID: requestID, Err: errors.Wrap(err, "executing request")}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return 0, nil, &Error{URL: u.String(), Status: resp.StatusCode, RequestID: requestID, Err: errors.Wrap(err, "reading response body")}
		}

		if shouldRetry(resp, nil) && attempt < c.retries {
			lastErr = errors.Newf("status %d", resp.StatusCode)
			log.Debug("retryable status %d, retrying", resp.StatusCode)
			continue
		}

		return resp.StatusCode, body, nil
	}

	return 0, nil, &Error{URL: u.String(), RequestID: requestID, Err: errors.Wrap(lastErr, "retries exhausted")}
}

// storeError is the JSON error shape the store returns on non-2xx responses.
type storeError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// Fetch adapts a query into a cache-ready fetch function. Successful
// responses decode into an Ok envelope; in-band store errors (bad filter,
// missing relation, expired key) become error envelopes so the cache returns
// them without memoizing; transport failures reject outright.
func Fetch[T any](c *Client, q Query) querycache.FetchFunc[T] {
	return func(ctx context.Context) (querycache.Envelope[T], error) {
		status, body, err := c.do(ctx, q)
		if err != nil {
			return querycache.Envelope[T]{}, err
		}

		if status < 200 || status >= 300 {
			var se storeError
			if jsonErr := json.Unmarshal(body, &se); jsonErr != nil || se.Message == "" {
				se.Message = fmt.Sprintf("store returned status %d", status)
			}
			return querycache.Fail[T](&querycache.QueryError{
				Message: se.Message,
				Code:    se.Code,
				Details: se.Details,
				Hint:    se.Hint,
			}), nil
		}

		var data T
		if err := json.Unmarshal(body, &data); err != nil {
			return querycache.Failf[T]("decoding response: " + err.Error()), nil
		}
		return querycache.Ok(data), nil
	}
}
