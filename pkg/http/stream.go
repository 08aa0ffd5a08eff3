package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultTimeout = 30 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; lukey-bot/1.0)"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http error: %s", e.Method, e.Status)
}

// StreamRequest opens a GET request and returns the body for the caller to
// drain and close, with the advertised length (-1 when absent) and content type.
func StreamRequest(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, int64, string, error) {
	resp, err := do(ctx, client, http.MethodGet, url, headers)
	if err != nil {
		return nil, 0, "", err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, "", &StatusError{Method: http.MethodGet, Status: resp.Status, Code: resp.StatusCode}
	}

	return resp.Body, resp.ContentLength, resp.Header.Get("Content-Type"), nil
}

// HeadRequest returns the advertised Content-Length of url, or -1 when the
// server does not send one.
func HeadRequest(ctx context.Context, client *http.Client, url string, headers map[string]string) (int64, error) {
	resp, err := do(ctx, client, http.MethodHead, url, headers)
	if err != nil {
		return -1, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return -1, &StatusError{Method: http.MethodHead, Status: resp.Status, Code: resp.StatusCode}
	}
	return resp.ContentLength, nil
}

func do(ctx context.Context, client *http.Client, method, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
