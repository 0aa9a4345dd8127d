package engine

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"rulecraft/engine/pkg/rule/eval"
)

// DefaultHTTPClient is the stdlib-backed implementation of eval.HttpClient
// used for rest_call expressions. No third-party HTTP client surfaces
// anywhere in the examined corpus beyond what the gateway's own provider
// clients used, and those concerns are out of this repository's scope, so
// this stays on net/http.
type DefaultHTTPClient struct {
	client *http.Client
}

var _ eval.HttpClient = (*DefaultHTTPClient)(nil)

// NewDefaultHTTPClient constructs a DefaultHTTPClient. The per-call timeout
// passed to Do takes precedence over any client-level timeout.
func NewDefaultHTTPClient() *DefaultHTTPClient {
	return &DefaultHTTPClient{client: &http.Client{}}
}

// Do implements eval.HttpClient.
func (c *DefaultHTTPClient) Do(method, url string, headers map[string]string, body string, timeout time.Duration) (int, string, error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBufferString(body))
	if err != nil {
		return 0, "", err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(respBody), nil
}
