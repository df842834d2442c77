package newsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/tariff-events-etl/internal/domain"
	"github.com/couchcryptid/tariff-events-etl/internal/observability"
)

// DefaultBaseURL is the public events API root.
const DefaultBaseURL = "https://events.newscatcherapi.xyz/api"

// maxErrorBody caps how much of a failed response is echoed into errors.
const maxErrorBody = 512

// Client calls the events search API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an events API client. An empty baseURL selects DefaultBaseURL.
func NewClient(token, baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// FetchBatch builds the request for q and searches events.
func (c *Client) FetchBatch(ctx context.Context, q domain.Query) (domain.RawBatch, error) {
	return c.SearchEvents(ctx, BuildRequest(q))
}

// SearchEvents posts a search request and decodes the response envelope.
func (c *Client) SearchEvents(ctx context.Context, body Request) (domain.RawBatch, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return domain.RawBatch{}, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events_search", bytes.NewReader(payload))
	if err != nil {
		return domain.RawBatch{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-token", c.token)

	data, err := c.do(req, "events search")
	if err != nil {
		return domain.RawBatch{}, err
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		c.metrics.APIRequests.WithLabelValues("error").Inc()
		return domain.RawBatch{}, fmt.Errorf("events search: %s", apiErr.Error)
	}

	batch, err := domain.DecodeBatch(data)
	if err != nil {
		c.metrics.APIRequests.WithLabelValues("error").Inc()
		return domain.RawBatch{}, err
	}
	c.metrics.APIRequests.WithLabelValues("success").Inc()
	c.logger.Debug("events search complete", "events", len(batch.Events), "count", batch.Total())
	return batch, nil
}

// Health returns the API health payload.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-token", c.token)

	data, err := c.do(req, "health check")
	if err != nil {
		return nil, err
	}
	var status map[string]any
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return status, nil
}

// CheckReadiness reports whether the events API answers its health check.
func (c *Client) CheckReadiness(ctx context.Context) error {
	if _, err := c.Health(ctx); err != nil {
		return fmt.Errorf("events api: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.APIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.APIRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.APIRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("events API error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.APIRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}
	return data, nil
}
