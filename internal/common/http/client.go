// internal/common/http/client.go
package http

import (
	"net/http"
	"time"
)

// Client is the outbound HTTP client handed to the chat API. It stamps a
// User-Agent on every request.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}

func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}
