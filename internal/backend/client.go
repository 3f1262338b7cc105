package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client posts probe reports to the monitoring backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	name       string
	token      string
}

// NewClient constructs a backend client that authenticates using Basic Auth.
func NewClient(baseURL, name, token string, timeout time.Duration) (*Client, error) {
	normalizedURL, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	if name == "" {
		return nil, errors.New("probe name is required")
	}

	if token == "" {
		return nil, errors.New("probe token is required")
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: normalizedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		name:  name,
		token: token,
	}, nil
}

// WithHTTPClient overrides the default http.Client. Primarily useful for testing.
func (c *Client) WithHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		c.httpClient = httpClient
	}
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("backend base URL is required")
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid backend base URL: %w", err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid backend base URL: %s", raw)
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return strings.TrimSuffix(parsed.String(), "/"), nil
}

// SendReport posts a JSON report for the given host.
func (c *Client) SendReport(ctx context.Context, host string, body io.Reader) error {
	if host == "" {
		return errors.New("host is required")
	}

	path := fmt.Sprintf("/api/hosts/%s/printq/reports", url.PathEscape(host))
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return fmt.Errorf("create send report request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(c.name, c.token)
	return req, nil
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			host := req.URL.Hostname()
			return fmt.Errorf("execute request: network error contacting %s: %w", host, err)
		}
		if urlErr, ok := err.(*url.Error); ok {
			return fmt.Errorf("execute request: %s", urlErr.Err)
		}
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		if len(b) == 0 {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
