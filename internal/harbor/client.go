// Package harbor implements the client for the Voice Harbor HTTP API.
//
// All job and token operations go through a Client. Files themselves are
// moved over server-issued signed URLs, so the API only ever sees file
// names, never file contents. The server stores files under
// {token}/{job_id}/{filename}.
package harbor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const defaultTimeout = 15 * time.Second

// Client talks to the Voice Harbor API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logFn      func(format string, args ...any)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the authorization token sent on API requests.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps API request throughput. Signed-URL requests for large
// upload batches are the usual reason to tune this.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger sets a sink for progress chatter, used mainly by the polling
// loop. Without one the client stays silent.
func WithLogger(logFn func(format string, args ...any)) ClientOption {
	return func(c *Client) { c.logFn = logFn }
}

// NewClient creates a Voice Harbor API client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) logf(format string, args ...any) {
	if c.logFn != nil {
		c.logFn(format, args...)
	}
}

// doJSON performs an API request with an optional JSON body and decodes the
// JSON response into out (when out is non-nil). The authorization header is
// only sent when a token is configured.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	return c.request(ctx, method, path, body, out, c.token)
}

// doAdmin is doJSON with the Bearer scheme used by admin endpoints.
func (c *Client) doAdmin(ctx context.Context, method, path string, body, out any, adminToken string) error {
	return c.request(ctx, method, path, body, out, "Bearer "+adminToken)
}

func (c *Client) request(ctx context.Context, method, path string, body, out any, authorization string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if authorization != "" && authorization != "Bearer " {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return nil
}

// newAPIError builds an APIError from a non-2xx response, salvaging the
// server's error message when the body carries one.
func newAPIError(resp *http.Response, endpoint string) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Endpoint:   endpoint,
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil {
		if payload.Error != "" {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}

// CreateJob creates a new job on the server and returns its id.
func (c *Client) CreateJob(ctx context.Context) (string, error) {
	var data struct {
		JobID string `json:"job_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/jobs", nil, &data); err != nil {
		return "", err
	}
	if data.JobID == "" {
		return "", fmt.Errorf("server returned an empty job_id")
	}
	return data.JobID, nil
}

// ListJobs returns the jobs associated with the authenticated token.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	var data struct {
		Jobs []Job `json:"jobs"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/jobs", nil, &data); err != nil {
		return nil, err
	}
	return data.Jobs, nil
}

// JobContent returns the content items recorded for a job.
func (c *Client) JobContent(ctx context.Context, jobID string) ([]AudioRecord, error) {
	var data struct {
		JobContent []AudioRecord `json:"jobContent"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/jobs/"+jobID+"/content", nil, &data); err != nil {
		return nil, err
	}
	return data.JobContent, nil
}
