package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/rshade/cypherdash/internal/analytics"
)

// Endpoint paths and operation names.
const (
	OpVolume         = "load-volume"
	OpWalletAnalysis = "wallet-analysis"
	OpHealth         = "health"

	pathVolume         = "/load-volume"
	pathWalletAnalysis = "/wallet-analysis"
	pathHealth         = "/"
)

// HeaderRequestID carries the per-request ULID.
const HeaderRequestID = "X-Request-ID"

// Default per-endpoint timeouts. Wallet analysis walks the full transaction
// history of an address and is far slower than the volume query.
const (
	DefaultWalletTimeout = 100 * time.Second
	DefaultVolumeTimeout = 10 * time.Second
	DefaultHealthTimeout = 5 * time.Second
)

// maxErrorBody caps how much of a non-2xx body is kept in FetchError.Detail.
const maxErrorBody = 512

// ErrInvalidBaseURL is returned by New for a URL without scheme or host.
var ErrInvalidBaseURL = errors.New("backend URL must be an absolute http(s) URL")

// Client talks to the analytics backend.
type Client struct {
	base          *url.URL
	httpClient    *http.Client
	walletTimeout time.Duration
	volumeTimeout time.Duration
	healthTimeout time.Duration
	metrics       *Metrics
	logger        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithWalletTimeout sets the wallet-analysis timeout. Zero disables it.
func WithWalletTimeout(d time.Duration) Option {
	return func(c *Client) { c.walletTimeout = d }
}

// WithVolumeTimeout sets the load-volume timeout. Zero disables it.
func WithVolumeTimeout(d time.Duration) Option {
	return func(c *Client) { c.volumeTimeout = d }
}

// WithMetrics records request metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""

	c := &Client{
		base:          u,
		httpClient:    &http.Client{},
		walletTimeout: DefaultWalletTimeout,
		volumeTimeout: DefaultVolumeTimeout,
		healthTimeout: DefaultHealthTimeout,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Volume fetches daily, weekly and monthly USD load volume for the date range.
func (c *Client) Volume(ctx context.Context, q analytics.VolumeQuery) (analytics.VolumeReport, error) {
	if err := q.Validate(); err != nil {
		return analytics.VolumeReport{}, err
	}

	params := url.Values{}
	params.Set("from_date", q.FromDate())
	params.Set("to_date", q.ToDate())

	var report analytics.VolumeReport
	if err := c.getJSON(ctx, OpVolume, pathVolume, params, c.volumeTimeout, &report); err != nil {
		return analytics.VolumeReport{}, err
	}
	return report, nil
}

// WalletAnalysis fetches the counterparties of address.
func (c *Client) WalletAnalysis(ctx context.Context, address string) ([]analytics.Counterparty, error) {
	address, err := analytics.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("address", address)

	var rows []analytics.Counterparty
	if err = c.getJSON(ctx, OpWalletAnalysis, pathWalletAnalysis, params, c.walletTimeout, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []analytics.Counterparty{}
	}
	return rows, nil
}

// Health returns the backend's status string, e.g. "backend up".
func (c *Client) Health(ctx context.Context) (string, error) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, OpHealth, pathHealth, nil, c.healthTimeout, &body); err != nil {
		return "", err
	}
	return body.Status, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.base
	u.Path += path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

func (c *Client) getJSON(
	ctx context.Context,
	op, path string,
	params url.Values,
	timeout time.Duration,
	out interface{},
) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, params), nil)
	if err != nil {
		return &FetchError{Op: op, Kind: KindNetwork, Err: err}
	}
	requestID := ulid.Make().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)

	log := c.logger.With().
		Str("component", "backend").
		Str("operation", op).
		Str("request_id", requestID).
		Logger()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		fetchErr := &FetchError{Op: op, Kind: classifyTransportError(ctx, err), Err: err}
		c.finish(log, op, fetchErr.Kind.String(), 0, start)
		return fetchErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.finish(log, op, KindStatus.String(), resp.StatusCode, start)
		return &FetchError{Op: op, Kind: KindStatus, StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		kind := KindDecode
		if ctx.Err() != nil {
			kind = classifyTransportError(ctx, err)
		}
		c.finish(log, op, kind.String(), resp.StatusCode, start)
		return &FetchError{Op: op, Kind: kind, Err: err}
	}

	c.finish(log, op, outcomeOK, resp.StatusCode, start)
	return nil
}

func (c *Client) finish(log zerolog.Logger, op, outcome string, status int, start time.Time) {
	elapsed := time.Since(start)
	c.metrics.observe(op, outcome, elapsed)
	log.Debug().
		Str("outcome", outcome).
		Int("status", status).
		Dur("duration", elapsed).
		Msg("backend request finished")
}

// classifyTransportError separates deadline and cancellation from other transport failures.
func classifyTransportError(ctx context.Context, err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return KindCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}

// errorDetail extracts a readable message from an error body. FastAPI wraps
// errors as {"detail": ...}; anything else is returned trimmed.
func errorDetail(body []byte) string {
	var fastAPI struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &fastAPI); err == nil && len(fastAPI.Detail) > 0 {
		var msg string
		if json.Unmarshal(fastAPI.Detail, &msg) == nil {
			return msg
		}
		return string(fastAPI.Detail)
	}
	return strings.TrimSpace(string(body))
}
