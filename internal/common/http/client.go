// Package http provides the outbound HTTP client shared by integrations.
package http

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// StatusError is returned by ReadBody for responses outside the accepted
// status codes.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// ReadBody drains and closes the response. It fails with a *StatusError when
// the status is not one of accepted.
func ReadBody(resp *http.Response, accepted ...int) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	for _, code := range accepted {
		if resp.StatusCode == code {
			return body, nil
		}
	}
	return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}
