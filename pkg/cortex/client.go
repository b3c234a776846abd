// Package cortex is the transport to the managed agent API
package cortex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/killallgit/cortex-chat/pkg/logger"
)

// maxErrorBody caps how much of a failed response is kept for reporting
const maxErrorBody = 4096

// Authorizer decorates outgoing requests with credentials
type Authorizer interface {
	Authorize(ctx context.Context, req *http.Request) error
	HTTPClient() *http.Client
}

// Client posts agent:run requests and hands back the event stream
type Client struct {
	endpoint string
	session  Authorizer
}

// NewClient creates a client for the full agent:run endpoint URL
func NewClient(endpoint string, session Authorizer) *Client {
	return &Client{
		endpoint: endpoint,
		session:  session,
	}
}

// Run issues the request and returns the streaming response body, which the
// caller must close. Any failure is a *TransportError.
func (c *Client) Run(ctx context.Context, req RunRequest) (io.ReadCloser, error) {
	requestID := uuid.NewString()
	log := logger.WithComponent("cortex").With("request_id", requestID)

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("invalid endpoint: %w", err)}
	}
	query := endpoint.Query()
	query.Set("requestId", requestID)
	endpoint.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	if err := c.session.Authorize(ctx, httpReq); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to authorize request: %w", err)}
	}

	start := time.Now()
	log.Debug("Calling agent", "model", req.Model)

	resp, err := c.session.HTTPClient().Do(httpReq)
	if err != nil {
		log.Error("Agent request failed", "error", err)
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()

		log.Error("Agent returned error status", "status", resp.StatusCode, "duration", time.Since(start))
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(bytes.TrimSpace(body)),
		}
	}

	log.Debug("Agent stream opened", "duration", time.Since(start))
	return resp.Body, nil
}
