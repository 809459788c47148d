package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storeroom_backend/platform/config"
	"storeroom_backend/platform/logger"
	"storeroom_backend/platform/recordstore/formula"

	"golang.org/x/time/rate"
)

const pageSize = 100

// Client is an Airtable-compatible REST client.
type Client struct {
	baseURL    string
	baseID     string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryPolicy
	log        *logger.Logger
	sleep      func(context.Context, time.Duration) error
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithRateLimit replaces the request rate limiter.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// NewClient creates a client from configuration.
func NewClient(cfg config.RecordStoreConfig, log *logger.Logger, opts ...Option) *Client {
	policy := DefaultRetryPolicy()
	policy.MaxRetries = cfg.GetRecordStoreMaxRetries()

	perSecond := cfg.GetRecordStoreRateLimit()
	if perSecond <= 0 {
		perSecond = 5
	}
	timeout := cfg.GetRecordStoreTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.GetRecordStoreURL(), "/"),
		baseID:     cfg.GetRecordStoreBaseID(),
		apiKey:     cfg.GetRecordStoreAPIKey(),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond))),
		retry:      policy,
		log:        log,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

type writeRequest struct {
	Fields   map[string]any `json:"fields"`
	Typecast bool           `json:"typecast"`
}

type apiErrorBody struct {
	Error json.RawMessage `json:"error"`
}

// Get fetches one record by ID.
func (c *Client) Get(ctx context.Context, table, id string) (Record, error) {
	var rec Record
	err := c.do(ctx, "get "+table, http.MethodGet, c.recordPath(table, id), nil, nil, &rec)
	return rec, err
}

// List fetches all pages matching filter.
func (c *Client) List(ctx context.Context, table string, filter formula.Expr) ([]Record, error) {
	var records []Record
	offset := ""
	for {
		query := url.Values{}
		query.Set("pageSize", strconv.Itoa(pageSize))
		if filter != nil {
			query.Set("filterByFormula", filter.String())
		}
		if offset != "" {
			query.Set("offset", offset)
		}

		var page listResponse
		if err := c.do(ctx, "list "+table, http.MethodGet, c.tablePath(table), query, nil, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Records...)
		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// Create inserts a record.
func (c *Client) Create(ctx context.Context, table string, fields map[string]any) (Record, error) {
	var rec Record
	body := writeRequest{Fields: fields, Typecast: true}
	err := c.do(ctx, "create "+table, http.MethodPost, c.tablePath(table), nil, body, &rec)
	return rec, err
}

// Update patches the given fields of a record.
func (c *Client) Update(ctx context.Context, table, id string, fields map[string]any) (Record, error) {
	var rec Record
	body := writeRequest{Fields: fields, Typecast: true}
	err := c.do(ctx, "update "+table, http.MethodPatch, c.recordPath(table, id), nil, body, &rec)
	return rec, err
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, table, id string) error {
	return c.do(ctx, "delete "+table, http.MethodDelete, c.recordPath(table, id), nil, nil, nil)
}

func (c *Client) tablePath(table string) string {
	return fmt.Sprintf("%s/v0/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table))
}

func (c *Client) recordPath(table, id string) string {
	return c.tablePath(table) + "/" + url.PathEscape(id)
}

// do performs one logical call, retrying transient failures with backoff.
// Permanent failures return immediately; an exhausted budget returns ErrUnavailable.
// A create is only retried when the store cannot have written the record.
func (c *Client) do(ctx context.Context, op, method, endpoint string, query url.Values, body any, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		payload = encoded
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
		}

		retryAfter, err := c.attempt(ctx, method, endpoint, payload, out)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		if !safeToRetry(method, err) {
			return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
		}
		lastErr = err
		if attempt >= c.retry.MaxRetries {
			break
		}

		wait := c.retry.Backoff(attempt)
		if retryAfter > wait {
			wait = min(retryAfter, c.retry.MaxBackoff)
		}
		if c.log != nil {
			c.log.StoreRetry(op, attempt+1, wait, err)
		}
		if err := c.sleep(ctx, wait); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
		}
	}
	return fmt.Errorf("%w: %s after %d attempts: %w", ErrUnavailable, op, c.retry.MaxRetries+1, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, endpoint string, payload []byte, out any) (time.Duration, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return 0, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(raw) == 0 {
			return 0, nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return 0, fmt.Errorf("decode response: %w", err)
		}
		return 0, nil
	}

	httpErr := parseHTTPError(resp.StatusCode, raw)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, fmt.Errorf("%w: %w", ErrNotFound, httpErr)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return 0, fmt.Errorf("%w: %w", ErrRejected, httpErr)
	}
	return parseRetryAfter(resp.Header.Get("Retry-After")), httpErr
}

func parseHTTPError(status int, raw []byte) *HTTPError {
	httpErr := &HTTPError{StatusCode: status, Message: http.StatusText(status)}
	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Error) == 0 {
		return httpErr
	}
	// The API sends either a bare string or {type, message}.
	var asString string
	if err := json.Unmarshal(body.Error, &asString); err == nil {
		httpErr.Type = asString
		return httpErr
	}
	var detailed struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body.Error, &detailed); err == nil {
		httpErr.Type = detailed.Type
		if detailed.Message != "" {
			httpErr.Message = detailed.Message
		}
	}
	return httpErr
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func isTransient(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrRejected) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, context.DeadlineExceeded)
}

// safeToRetry reports whether repeating the request cannot duplicate a write.
// A POST may have created the record before the failure, so it is retried
// only on 429 or when the connection was never established.
func safeToRetry(method string, err error) bool {
	if method != http.MethodPost {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
