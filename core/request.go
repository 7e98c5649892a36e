package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/leocov-dev/mrserver/config"
)

const userAgentBase = "leocov-dev/mrserver"

// UserAgent identifies this tool to Modrinth and the loader mavens, which ask clients to
// send a descriptive agent string.
func UserAgent() string {
	if config.Version == "" {
		return userAgentBase
	}
	return userAgentBase + "/" + config.Version
}

// NewHTTPClient returns a client with the given overall request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func GetWithUA(ctx context.Context, client *http.Client, url string, contentType string) (resp *http.Response, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent())
	req.Header.Set("Accept", contentType)
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// CheckStatus closes the body and returns a StatusError when resp is not a 2xx response.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	_ = resp.Body.Close()
	return &StatusError{URL: resp.Request.URL.String(), StatusCode: resp.StatusCode}
}
