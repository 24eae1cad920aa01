package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/roach88/keygrid/internal/codec"
	"github.com/roach88/keygrid/internal/compiler"
	"github.com/roach88/keygrid/internal/layout"
)

// Response size limits.
const (
	maxFirmwareBytes = 32 << 20
	maxDocumentBytes = 4 << 20
	maxErrorBody     = 512
)

// ErrNoBackend is returned when no base URL is configured.
var ErrNoBackend = errors.New("backend URL not configured")

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Client talks to the backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *slog.Logger
}

// New returns a client for baseURL with the given request timeout.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Logger: logger,
	}
}

// Firmware sends a compiled keymap to the build service and returns the
// firmware image.
func (c *Client) Firmware(ctx context.Context, payload compiler.BuildPayload) ([]byte, error) {
	endpoint, err := c.endpoint("firmware/"+escapeSegments(payload.Keyboard), nil)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPut, endpoint, payload, maxFirmwareBytes)
}

// Save stores a layout for a user.
func (c *Client) Save(ctx context.Context, req codec.SaveRequest) error {
	endpoint, err := c.endpoint("savedata", nil)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPut, endpoint, req, maxDocumentBytes)
	return err
}

// Load fetches the layout saved for userID. A response without a layout
// yields the default layout.
func (c *Client) Load(ctx context.Context, userID string) (*layout.Layout, string, error) {
	endpoint, err := c.endpoint("savedata", url.Values{"email": {userID}})
	if err != nil {
		return nil, "", err
	}

	body, err := c.do(ctx, http.MethodGet, endpoint, nil, maxDocumentBytes)
	if err != nil {
		return nil, "", err
	}

	resp, err := codec.DecodeLoadResponse(body)
	if err != nil {
		return nil, "", fmt.Errorf("GET %s: %w", endpoint, err)
	}
	if resp.KeyboardLayout == nil {
		c.Logger.Warn("load response has no layout, using default", "user", userID)
		return layout.Default(), resp.KeyboardName, nil
	}
	return resp.KeyboardLayout, resp.KeyboardName, nil
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	if c.BaseURL == "" {
		return "", ErrNoBackend
	}
	u := strings.TrimRight(c.BaseURL, "/") + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, in any, limit int64) ([]byte, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.Logger.Debug("making HTTP request", "method", method, "url", endpoint)
	start := time.Now()

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	c.Logger.Debug("received HTTP response", "status", resp.Status, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s %s: response exceeds %d bytes", method, endpoint, limit)
	}
	return data, nil
}

// escapeSegments path-escapes each part of a vendor/board keyboard name.
func escapeSegments(keyboard string) string {
	parts := strings.Split(keyboard, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
