package sage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Static errors for Sage client operations.
var (
	// ErrBaseURLRequired is returned when the API base URL is not provided.
	ErrBaseURLRequired = errors.New("sage: base URL is required")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("sage: request failed")
	// ErrRemote is returned when the API responds with success=false.
	ErrRemote = errors.New("sage: remote error")
	// ErrNoJobReturned is returned when a process response contains no job ID.
	ErrNoJobReturned = errors.New("sage: process succeeded but no job returned")
)

// Client defines the interface for the Sage video analysis API.
type Client interface {
	// VideoInfo fetches dimensions, fps and duration for a stored video.
	VideoInfo(ctx context.Context, id, storageKey string) (VideoInfo, error)

	// ProcessVideo submits a video for analysis and returns the remote job.
	// The configured webhook endpoint is attached so Sage can push completion.
	ProcessVideo(ctx context.Context, id, storageKey, title string) (JobRef, error)

	// JobStatus fetches the current state of a remote job.
	JobStatus(ctx context.Context, externalID string) (JobStatus, error)

	// Result fetches the final analysis output for a video.
	Result(ctx context.Context, videoID string) (VideoResult, error)
}

// defaultTimeout bounds a single Sage call. Processing submissions can be
// slow on the remote side, hence the generous ceiling.
const defaultTimeout = 10 * time.Minute

// HTTPClient is the HTTP implementation of the Sage Client interface.
type HTTPClient struct {
	baseURL    string
	webhookURL string
	httpClient *http.Client
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithWebhookURL sets the callback URL passed on process submissions.
func WithWebhookURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.webhookURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// NewClient creates a new Sage HTTP client. The base URL must be provided.
func NewClient(baseURL string, opts ...ClientOption) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	c := &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// VideoInfo fetches dimensions, fps and duration for a stored video.
func (c *HTTPClient) VideoInfo(ctx context.Context, id, storageKey string) (VideoInfo, error) {
	req := processRequest{ID: id, Src: s3Source(storageKey)}

	var resp videoInfoResponse
	if err := c.post(ctx, "/api/video_info", req, &resp); err != nil {
		return VideoInfo{}, err
	}
	if !resp.Success {
		return VideoInfo{}, fmt.Errorf("%w: %s", ErrRemote, resp.Error)
	}

	return resp.VideoInfo, nil
}

// ProcessVideo submits a video for analysis and returns the remote job.
func (c *HTTPClient) ProcessVideo(ctx context.Context, id, storageKey, title string) (JobRef, error) {
	req := processRequest{
		ID:              id,
		Src:             s3Source(storageKey),
		Title:           title,
		WebhookEndpoint: c.webhookURL,
	}

	var resp processResponse
	if err := c.post(ctx, "/api/process", req, &resp); err != nil {
		return JobRef{}, err
	}
	if !resp.Success {
		return JobRef{}, fmt.Errorf("%w: %s", ErrRemote, resp.Error)
	}
	if resp.Job.ID == "" {
		return JobRef{}, ErrNoJobReturned
	}

	return resp.Job, nil
}

// JobStatus fetches the current state of a remote job.
func (c *HTTPClient) JobStatus(ctx context.Context, externalID string) (JobStatus, error) {
	var resp statusResponse
	if err := c.get(ctx, "/api/status/"+externalID, &resp); err != nil {
		return JobStatus{}, err
	}
	if !resp.Success {
		return JobStatus{}, fmt.Errorf("%w: %s", ErrRemote, resp.Error)
	}

	return resp.JobStatus, nil
}

// Result fetches the final analysis output for a video.
func (c *HTTPClient) Result(ctx context.Context, videoID string) (VideoResult, error) {
	var resp resultResponse
	if err := c.get(ctx, "/api/results/"+videoID, &resp); err != nil {
		return VideoResult{}, err
	}
	if !resp.Success {
		return VideoResult{}, fmt.Errorf("%w: %s", ErrRemote, resp.Error)
	}

	return resp.VideoResult, nil
}

// post performs a JSON POST request against the API.
func (c *HTTPClient) post(ctx context.Context, path string, body, result any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("sage: marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, encoded, result)
}

// get performs a JSON GET request against the API.
func (c *HTTPClient) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// do performs a single HTTP request. Failed remote calls simply fail the
// enclosing operation; there is no retry.
func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, result any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("sage: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sage: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sage: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("sage: unmarshal response: %w", err)
		}
	}

	return nil
}
