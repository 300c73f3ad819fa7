// Package planner is the HTTP client for the external path-planning and
// image-recognition service. Results are opaque to the orchestrator: they
// are logged and forwarded, never interpreted here.
package planner

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

	"RoboPilot/internal/model"
)

// Client talks to the planner service over plain HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Reachable reports whether the service answers its status endpoint.
func (c *Client) Reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer closeBody(resp.Body)
	return resp.StatusCode == http.StatusOK
}

// PathRequest is the JSON body posted to /path.
type PathRequest struct {
	Obstacles []model.Obstacle `json:"obstacles"`
	Retrying  bool             `json:"retrying"`
}

// PathResponse is the planner's answer: the directives to execute and the
// pose expected after each movement, index-paired in order.
type PathResponse struct {
	Data struct {
		Commands []string         `json:"commands"`
		Path     []model.Location `json:"path"`
	} `json:"data"`
	Error string `json:"error"`
}

// RequestPath posts the obstacle layout and returns the planned commands.
// Any non-200 status is a failure; there is no retry at this layer.
func (c *Client) RequestPath(ctx context.Context, obstacles []model.Obstacle) (*PathResponse, error) {
	body, err := json.Marshal(PathRequest{Obstacles: obstacles})
	if err != nil {
		return nil, fmt.Errorf("encode path request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/path", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("planner /path: %w", err)
	}
	defer closeBody(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("planner /path: status %d", resp.StatusCode)
	}
	var pr PathResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode /path response: %w", err)
	}
	return &pr, nil
}

// Snap asks the recognition side to capture and classify one obstacle face.
func (c *Client) Snap(ctx context.Context, obstacleID int, signal string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"request_id":  uuid.NewString(),
		"obstacle_id": obstacleID,
		"signal":      signal,
	})
	if err != nil {
		return "", fmt.Errorf("encode snap request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/snap", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.opaque(req)
}

// Stitch asks the recognition side to stitch the images captured so far.
func (c *Client) Stitch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stitch", nil)
	if err != nil {
		return "", err
	}
	return c.opaque(req)
}

// opaque performs req and returns the raw response body as a string.
func (c *Client) opaque(req *http.Request) (string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("planner %s: %w", req.URL.Path, err)
	}
	defer closeBody(resp.Body)
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("planner %s: read body: %w", req.URL.Path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("planner %s: status %d", req.URL.Path, resp.StatusCode)
	}
	return strings.TrimSpace(string(b)), nil
}

func closeBody(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
