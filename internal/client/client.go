// Package client talks to the remote note generation endpoint. The endpoint
// accepts {"prompt": "..."} and answers with a raw chunked UTF-8 text stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"pkt.systems/pslog"
)

// maxErrorBody caps how much of a failed response body is kept for the error.
const maxErrorBody = 4 << 10

// Client issues generation requests against a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        pslog.Logger
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// New returns a Client for endpoint. connectTimeout bounds dialing, the TLS
// handshake and the wait for response headers; the body stream itself is
// unbounded and ends only on EOF, error or context cancellation.
func New(endpoint string, connectTimeout time.Duration, log pslog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: newHTTPClient(connectTimeout),
		log:        log,
	}
}

func newHTTPClient(connectTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: connectTimeout,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Open posts prompt to the endpoint and returns the response body for
// streaming. The caller must close it. Cancelling ctx aborts both the request
// and any read blocked on the returned body.
func (c *Client) Open(ctx context.Context, prompt string) (io.ReadCloser, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain, */*")

	c.log.Debug("generation request", "endpoint", c.endpoint, "prompt_bytes", len(prompt))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach generation endpoint %s: %w", c.endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   strings.TrimSpace(string(data)),
		}
	}
	c.log.Debug("generation stream open", "status", resp.StatusCode, "content_type", resp.Header.Get("Content-Type"))
	return resp.Body, nil
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
	}
	if e.Body == "" {
		return "generation endpoint returned " + status
	}
	return "generation endpoint returned " + status + ": " + e.Body
}
