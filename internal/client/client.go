// internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/models"
	"github.com/Corphon/NovelForge/internal/utils"
)

// RequestIDHeader carries the per-request id the server echoes back in the envelope.
const RequestIDHeader = "X-Request-ID"

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *utils.Logger
	Metrics    *utils.MetricsCollector
}

// Client talks to the /api/novels REST surface. Every response is an envelope;
// transport failures and non-2xx statuses become network errors, success:false
// bodies become remote errors. Nothing is retried.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *utils.Logger
	metrics *utils.RequestMetrics
}

// New creates a client for the API rooted at baseURL (e.g. http://localhost:8080).
func New(baseURL string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
		metrics: utils.NewRequestMetrics("client", opts.Metrics, logger),
	}
}

// BaseURL returns the API root this client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Metrics returns the collector the client records into.
func (c *Client) Metrics() *utils.MetricsCollector {
	return c.metrics.Collector()
}

func novelPath(novelID string, parts ...string) string {
	var b strings.Builder
	b.WriteString("/api/novels/")
	b.WriteString(url.PathEscape(novelID))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

// do sends one request and decodes the envelope's data into out (when non-nil).
// endpoint is the route template used for metrics.
func (c *Client) do(ctx context.Context, method, path, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewValidationError("encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.NewValidationError("build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordRequest(endpoint, method, 0, time.Since(start))
		c.metrics.RecordError("NETWORK_ERROR", method+" "+endpoint)
		return apperrors.NewNetworkError(fmt.Sprintf("%s %s failed", method, path), 0, err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	c.metrics.RecordRequest(endpoint, method, resp.StatusCode, time.Since(start))
	if readErr != nil {
		c.metrics.RecordError("NETWORK_ERROR", method+" "+endpoint)
		return apperrors.NewNetworkError("read response body", resp.StatusCode, readErr)
	}

	var env models.Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("server returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		if decodeErr == nil && env.Error != "" {
			msg = env.Error
		}
		appErr := apperrors.NewNetworkError(msg, resp.StatusCode, nil)
		if decodeErr == nil && env.Code != "" {
			appErr.Code = env.Code
		}
		c.fail(appErr, method, endpoint, requestID)
		return appErr
	}
	if decodeErr != nil {
		appErr := apperrors.NewProcessingError("malformed response envelope", decodeErr)
		c.fail(appErr, method, endpoint, requestID)
		return appErr
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = "request was not successful"
		}
		appErr := apperrors.NewRemoteError(msg, env.Code, resp.StatusCode)
		c.fail(appErr, method, endpoint, requestID)
		return appErr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		appErr := apperrors.NewProcessingError("decode response data", err)
		c.fail(appErr, method, endpoint, requestID)
		return appErr
	}
	return nil
}

func (c *Client) fail(err *apperrors.AppError, method, endpoint, requestID string) {
	c.metrics.RecordError(err.Code, method+" "+endpoint)
	c.logger.Debug("api request failed", map[string]interface{}{
		"method":     method,
		"endpoint":   endpoint,
		"request_id": requestID,
		"status":     err.StatusCode,
		"error":      err.Message,
	})
}
