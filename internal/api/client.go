// Package api is the client for the extraction service's REST interface.
package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/zentrum/internal/model"
	"github.com/google/uuid"
)

// BasePath is the extraction collection under the server URL.
const BasePath = "/api/v1/extractions"

// Headers used to forward user credentials and correlate requests.
const (
	HeaderAPIKey    = "X-Anthropic-Api-Key"
	HeaderBaseURL   = "X-Anthropic-Base-Url"
	HeaderRequestID = "X-Request-ID"
)

// SettingsProvider supplies the credentials injected into each request.
type SettingsProvider interface {
	Current() model.AppSettings
}

// Client talks to the extraction service. Credentials are read from the
// settings provider on every call, so a settings change applies to the next request.
type Client struct {
	httpClient *http.Client
	settings   SettingsProvider
	logger     *slog.Logger
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the overall timeout of each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRootCAs trusts pool for HTTPS connections, e.g. a self-signed stub.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(c *Client) {
		if t, ok := c.httpClient.Transport.(*http.Transport); ok && pool != nil {
			t.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the service at serverURL.
func NewClient(serverURL string, settings SettingsProvider, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", serverURL)
	}
	if settings == nil {
		return nil, fmt.Errorf("settings provider is required")
	}

	c := &Client{
		baseURL:  u.String() + BasePath,
		settings: settings,
		logger:   slog.Default(),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Upload sends a PDF for extraction. The call returns once the service has
// finished extracting, which can take a while.
func (c *Client) Upload(ctx context.Context, file File) (model.ExtractionSummary, error) {
	body, contentType := file.multipartBody()
	defer func() { _ = body.Close() }()

	var created model.ExtractionSummary
	if err := c.do(ctx, "upload", http.MethodPost, "", body, contentType, &created); err != nil {
		return model.ExtractionSummary{}, err
	}
	return created, nil
}

// List returns all extraction summaries in server order.
func (c *Client) List(ctx context.Context) ([]model.ExtractionSummary, error) {
	var items []model.ExtractionSummary
	if err := c.do(ctx, "list", http.MethodGet, "", nil, "", &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.ExtractionSummary{}
	}
	return items, nil
}

// Get returns the full extraction. A missing id yields an error matching common.ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (*model.Extraction, error) {
	path, err := idPath(id)
	if err != nil {
		return nil, err
	}

	var extraction model.Extraction
	if err := c.do(ctx, "get", http.MethodGet, path, nil, "", &extraction); err != nil {
		return nil, err
	}
	return &extraction, nil
}

// Verify runs a verification pass and returns the refreshed extraction.
func (c *Client) Verify(ctx context.Context, id string) (*model.Extraction, error) {
	path, err := idPath(id)
	if err != nil {
		return nil, err
	}

	var extraction model.Extraction
	if err := c.do(ctx, "verify", http.MethodPost, path+"/verify", nil, "", &extraction); err != nil {
		return nil, err
	}
	return &extraction, nil
}

// Delete removes the extraction. Deleting an id twice reports not found.
func (c *Client) Delete(ctx context.Context, id string) error {
	path, err := idPath(id)
	if err != nil {
		return err
	}
	return c.do(ctx, "delete", http.MethodDelete, path, nil, "", nil)
}

// Berufe returns the Berufe of an extraction in document order.
func (c *Client) Berufe(ctx context.Context, id string) ([]model.Beruf, error) {
	path, err := idPath(id)
	if err != nil {
		return nil, err
	}

	var berufe []model.Beruf
	if err := c.do(ctx, "berufe", http.MethodGet, path+"/berufe", nil, "", &berufe); err != nil {
		return nil, err
	}
	return berufe, nil
}

// Beruf returns the Beruf at index. An out-of-range index is reported as not found.
func (c *Client) Beruf(ctx context.Context, id string, index int) (*model.Beruf, error) {
	path, err := idPath(id)
	if err != nil {
		return nil, err
	}

	var beruf model.Beruf
	if err := c.do(ctx, "beruf", http.MethodGet, path+"/berufe/"+strconv.Itoa(index), nil, "", &beruf); err != nil {
		return nil, err
	}
	return &beruf, nil
}

func idPath(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("extraction id is required")
	}
	return "/" + url.PathEscape(id), nil
}

// do performs one request. A nil out or a 204 response means no value is decoded.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.injectCredentials(req)

	start := time.Now()
	c.logger.Debug("api request",
		"op", op,
		"method", method,
		"path", req.URL.Path,
		"request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api transport failure", "op", op, "request_id", requestID, "error", err)
		return newTransportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return newTransportError(op, fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug("api response",
		"op", op,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"request_id", requestID,
		"elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(op, resp.StatusCode, resp.Status, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if len(raw) == 0 {
		return newDecodeError(op, errors.New("empty response body"))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return newDecodeError(op, err)
	}
	return nil
}

// injectCredentials adds the override headers for non-empty settings.
func (c *Client) injectCredentials(req *http.Request) {
	s := c.settings.Current()
	if s.AnthropicAPIKey != "" {
		req.Header.Set(HeaderAPIKey, s.AnthropicAPIKey)
	}
	if s.AnthropicBaseURL != "" {
		req.Header.Set(HeaderBaseURL, s.AnthropicBaseURL)
	}
}
