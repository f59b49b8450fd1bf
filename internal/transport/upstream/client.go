// Package upstream fetches the user directory from the remote HTTP API.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/zain621/rehmatshipping/internal/domain"
	"github.com/zain621/rehmatshipping/internal/domain/user"
	"github.com/zain621/rehmatshipping/internal/metrics"
)

// DefaultTimeout bounds a single fetch when the config leaves it unset.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps the payload read from the directory.
const maxBodyBytes = 8 << 20

// Config holds the user directory client settings.
type Config struct {
	URL        string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; Timeout is ignored when set
	Logger     *zap.Logger
}

// Client fetches user records from the directory. It never retries.
type Client struct {
	url      string
	http     *http.Client
	validate *validator.Validate
	logger   *zap.Logger
}

// NewClient creates a directory client.
func NewClient(cfg *Config) *Client {
	url := cfg.URL
	if url == "" {
		url = domain.DefaultUpstreamURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{url: url, http: hc, validate: newValidator(), logger: logger}
}

// Fetch returns every user in server order.
// Transport failures and non-2xx responses return a *domain.TransportError;
// payloads missing required fields return domain.ErrParse.
func (c *Client) Fetch(ctx context.Context) ([]user.User, error) {
	start := time.Now()

	body, errType, err := c.get(ctx)
	if err != nil {
		c.record(start, errType)
		return nil, err
	}
	defer func() { _ = body.Close() }()

	var dtos []userDTO
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&dtos); err != nil {
		c.record(start, "decode")
		return nil, fmt.Errorf("%w: decode users: %w", domain.ErrParse, err)
	}

	users, err := toDomain(c.validate, dtos)
	if err != nil {
		c.record(start, "invalid_payload")
		c.logger.Warn("User directory returned invalid payload", zap.Error(err))
		return nil, err
	}

	c.record(start, "")
	metrics.UpstreamRecords.Set(float64(len(users)))
	c.logger.Debug("Fetched user directory",
		zap.Int("records", len(users)),
		zap.Duration("latency", time.Since(start)),
	)
	return users, nil
}

// HealthCheck verifies the directory answers with a success status.
// Health checks are not counted in the fetch metrics.
func (c *Client) HealthCheck(ctx context.Context) error {
	body, _, err := c.get(ctx)
	if err != nil {
		return fmt.Errorf("user directory: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxBodyBytes))
	_ = body.Close()
	return nil
}

// get issues the directory request. On failure it also returns the
// error_type label for the fetch metrics.
func (c *Client) get(ctx context.Context) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, "transport", domain.NewTransportError(0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("User directory unreachable", zap.String("url", c.url), zap.Error(err))
		return nil, "transport", domain.NewTransportError(0, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		c.logger.Warn("User directory returned error status",
			zap.String("url", c.url),
			zap.Int("status", resp.StatusCode),
		)
		return nil, "status", domain.NewTransportError(resp.StatusCode, statusError(resp.StatusCode, c.url))
	}
	return resp.Body, "", nil
}

// record observes one fetch. An empty errType counts as success.
func (c *Client) record(start time.Time, errType string) {
	metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())
	if errType == "" {
		metrics.UpstreamRequestsTotal.WithLabelValues("success").Inc()
		return
	}
	metrics.UpstreamRequestsTotal.WithLabelValues("error").Inc()
	metrics.UpstreamErrorsTotal.WithLabelValues(errType).Inc()
}

// statusError describes a non-2xx response, e.g.
// "500 Server Error: Internal Server Error for url: https://...".
func statusError(code int, url string) error {
	kind := "Server"
	if code < 500 {
		kind = "Client"
	}
	return fmt.Errorf("%d %s Error: %s for url: %s", code, kind, http.StatusText(code), url)
}
