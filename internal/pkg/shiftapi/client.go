package shiftapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/offline"
	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
)

const syncPath = "/api/v1/shifts/sync"

// Client talks to the shift sync endpoint on behalf of one signed-in trainer
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL authenticated with token
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// StatusError is a non-2xx answer other than 401
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("shift API error [%d]: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

func (e *StatusError) Unwrap() error {
	return offline.ErrServerRejected
}

// TransportError means the request never got an HTTP answer
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("shift API unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SubmitBatch posts actions in order and returns the positional results.
//
// A 401 yields offline.ErrAuthRequired, any other non-2xx a *StatusError and
// a failure to reach the server a *TransportError.
func (c *Client) SubmitBatch(ctx context.Context, actions []shift.ActionRequest) ([]shift.ActionResult, error) {
	body, err := json.Marshal(shift.SyncRequest{Actions: actions})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sync request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+syncPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		return nil, offline.ErrAuthRequired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out shift.SyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode sync response: %w", err)}
	}
	return out.Results, nil
}
