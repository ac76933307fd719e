// Package backend provides the HTTP client for the upstream document server.
// The backend is treated as an opaque HTTP service: it authenticates requests
// at the transport level and returns JSON documents and standard status codes.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/doc-gate/docgate/internal/domain/credential"
)

// maxVerifyBodySize caps how much of the profile document response is read
// during login verification (1 MB).
const maxVerifyBodySize = 1 << 20

// Config configures the backend client.
type Config struct {
	// Host is the backend hostname or IP.
	Host string
	// Port is the backend application port.
	Port int
	// Namespace is the profile-document namespace: the per-user profile
	// document lives at /<namespace>/users/<username>.json.
	Namespace string
	// Timeout bounds each request to the backend.
	Timeout time.Duration
}

// Client issues HTTP requests to the backend document server. It is used both
// for login verification and for generic proxying, and is safe for concurrent
// use.
type Client struct {
	base       string
	host       string
	namespace  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend client for the configured host and port.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	host := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &Client{
		base:      "http://" + host,
		host:      host,
		namespace: cfg.Namespace,
		httpClient: &http.Client{
			Timeout: timeout,
			// Do not follow redirects -- pass them through to the caller.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// BaseURL returns the backend base URL, e.g. "http://localhost:8040".
func (c *Client) BaseURL() string {
	return c.base
}

// Host returns the backend host:port, used to override the Host header on
// forwarded requests.
func (c *Client) Host() string {
	return c.host
}

// VerifyResult is the outcome of a login verification request.
type VerifyResult struct {
	// StatusCode is the backend's response status.
	StatusCode int
	// Body is the response body, capped at maxVerifyBodySize.
	Body []byte
}

// VerifyLogin fetches the user's profile document with the supplied
// credential attached as Basic auth. The backend authenticates the transport
// layer itself: a 200 or 404 means the credential is valid, anything else
// means it is not. Transport failures are returned as errors.
func (c *Client) VerifyLogin(ctx context.Context, cred credential.Credential) (*VerifyResult, error) {
	docURI := fmt.Sprintf("/%s/users/%s.json", c.namespace, cred.Username)
	verifyURL := c.base + "/v1/documents?uri=" + url.QueryEscape(docURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, verifyURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build verification request: %w", err)
	}
	req.SetBasicAuth(cred.Username, cred.Secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verification request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxVerifyBodySize))
	if err != nil {
		return nil, fmt.Errorf("read verification response: %w", err)
	}

	return &VerifyResult{StatusCode: resp.StatusCode, Body: body}, nil
}

// Do executes a prepared outbound request against the backend. The proxy
// engine builds the request itself; the client only supplies the transport
// (timeout, redirect passthrough).
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}
