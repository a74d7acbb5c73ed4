// Package api is an HTTP client for the ledger REST contract.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ledger/internal/core"
)

// ServerError is an application-level failure reported by the backend in an
// otherwise successful response body ({"error": "..."}).
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// IsServerError reports whether err carries a backend-reported message and
// returns it.
func IsServerError(err error) (*ServerError, bool) {
	var se *ServerError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Client talks to a ledger backend rooted at BaseURL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient returns a client for the backend at baseURL (for example
// "http://localhost:8000"). By default requests have no timeout.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the shape of every object response.
type envelope struct {
	Error       string            `json:"error"`
	Status      string            `json:"status"`
	Transaction *core.Transaction `json:"transaction"`
}

// ListTransactions fetches the transactions matching f in server order.
func (c *Client) ListTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	raw, err := c.do(ctx, http.MethodGet, c.endpoint("/api/transactions", FilterQuery(f)), nil)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if err := serverError(raw); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	var txs []core.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, fmt.Errorf("list transactions: decode response: %w", err)
	}
	return txs, nil
}

// CreateTransaction posts a new transaction and returns the stored copy when
// the backend echoes it.
func (c *Client) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	tx, err := c.write(ctx, http.MethodPost, c.endpoint("/api/transactions", nil), in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

// UpdateTransaction replaces the fields of transaction id.
func (c *Client) UpdateTransaction(ctx context.Context, id int64, in core.TransactionInput) (core.Transaction, error) {
	tx, err := c.write(ctx, http.MethodPut, c.endpoint(transactionPath(id), nil), in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	return tx, nil
}

// DeleteTransaction removes transaction id.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	if _, err := c.write(ctx, http.MethodDelete, c.endpoint(transactionPath(id), nil), nil); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

// Summary fetches the aggregate totals for p.
func (c *Client) Summary(ctx context.Context, p core.Period) (core.Summary, error) {
	raw, err := c.do(ctx, http.MethodGet, c.endpoint("/api/summary", PeriodQuery(p)), nil)
	if err != nil {
		return core.Summary{}, fmt.Errorf("fetch summary: %w", err)
	}
	if err := serverError(raw); err != nil {
		return core.Summary{}, fmt.Errorf("fetch summary: %w", err)
	}
	var s core.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return core.Summary{}, fmt.Errorf("fetch summary: decode response: %w", err)
	}
	return s, nil
}

// FilterQuery encodes only the non-empty filter fields.
func FilterQuery(f core.Filter) url.Values {
	q := url.Values{}
	if v := strings.TrimSpace(f.StartDate); v != "" {
		q.Set("start_date", v)
	}
	if v := strings.TrimSpace(f.EndDate); v != "" {
		q.Set("end_date", v)
	}
	if v := strings.TrimSpace(f.Category); v != "" {
		q.Set("category", v)
	}
	return q
}

// PeriodQuery encodes only the non-empty period fields.
func PeriodQuery(p core.Period) url.Values {
	q := url.Values{}
	if v := strings.TrimSpace(p.Year); v != "" {
		q.Set("year", v)
	}
	if v := strings.TrimSpace(p.Month); v != "" {
		q.Set("month", v)
	}
	return q
}

func transactionPath(id int64) string {
	return "/api/transactions/" + strconv.FormatInt(id, 10)
}

// endpoint joins path and query, leaving out the "?" when q is empty.
func (c *Client) endpoint(path string, q url.Values) string {
	u := c.baseURL + path
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

func (c *Client) write(ctx context.Context, method, u string, body any) (core.Transaction, error) {
	raw, err := c.do(ctx, method, u, body)
	if err != nil {
		return core.Transaction{}, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return core.Transaction{}, fmt.Errorf("decode response: %w", err)
	}
	if env.Error != "" {
		return core.Transaction{}, &ServerError{Message: env.Error}
	}
	if env.Transaction == nil {
		return core.Transaction{}, nil
	}
	return *env.Transaction, nil
}

// do sends one request and returns the raw body. Non-2xx responses are
// still returned when they carry a JSON body so that {"error": ...} is
// surfaced as a ServerError by the caller.
func (c *Client) do(ctx context.Context, method, u string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if err := serverError(raw); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, req.URL.Path, resp.StatusCode)
	}
	return raw, nil
}

// serverError extracts {"error": "..."} from an object body, if present.
func serverError(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil
	}
	if env.Error != "" {
		return &ServerError{Message: env.Error}
	}
	return nil
}
