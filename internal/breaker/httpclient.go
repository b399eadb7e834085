// v0
// internal/breaker/httpclient.go
package breaker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// HTTPClient wraps a standard http.Client with breaker supervision. Responses
// with 5xx status are treated as dependency failures; 4xx responses pass
// through untouched since they indicate caller problems, not outages.
type HTTPClient struct {
	client *http.Client
	brk    *Breaker
}

// NewHTTPClient builds a supervised client. A nil http.Client gets a
// 30-second timeout matching the collaborators' generous fixed ceiling.
func NewHTTPClient(name string, cfg Config, log *slog.Logger, onState func(string, State), client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		client: client,
		brk:    New(name, cfg, log, onState),
	}
}

// Do executes the request under the breaker.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	err := c.brk.Execute(req.Context(), func(_ context.Context) error {
		r, err := c.client.Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode >= 500 {
			r.Body.Close()
			return fmt.Errorf("upstream http %d", r.StatusCode)
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// State exposes the underlying breaker state.
func (c *HTTPClient) State() State { return c.brk.State() }
