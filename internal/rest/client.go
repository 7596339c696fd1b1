// Package rest implements the HTTP transport for CiviCRM's REST endpoints,
// covering both the APIv3 and APIv4 calling conventions.
package rest

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/civigo-io/civigo/internal/constants"
	"github.com/civigo-io/civigo/pkg/civi"
)

// Client wraps a retrying HTTP client with the plumbing shared by the v3
// and v4 transports: base URL handling, basic auth, user agent, and the
// translation of HTTP-level failures into *civi.TransportError.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	logger     civi.Logger
	debug      bool
	userAgent  string
	basicUser  string
	basicPass  string
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger used for request/response logging.
func WithLogger(logger civi.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables verbose request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithBasicAuth enables HTTP basic auth for endpoints behind htaccess
// protection.
func WithBasicAuth(user, pass string) Option {
	return func(c *Client) {
		c.basicUser = user
		c.basicPass = pass
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithRetryConfig tunes retries for transient failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		if retryMax >= 0 {
			c.httpClient.RetryMax = retryMax
		}

		if waitMin > 0 {
			c.httpClient.RetryWaitMin = waitMin
		}

		if waitMax > 0 {
			c.httpClient.RetryWaitMax = waitMax
		}
	}
}

// WithSkipTLSVerify disables TLS certificate verification. Intended for
// local development only.
func WithSkipTLSVerify(skip bool) Option {
	return func(c *Client) {
		if !skip {
			return
		}

		transport, ok := c.httpClient.HTTPClient.Transport.(*http.Transport)
		if !ok {
			transport = http.DefaultTransport.(*http.Transport).Clone()
		}

		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in
		c.httpClient.HTTPClient.Transport = transport
	}
}

// NewClient creates a REST client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = constants.DefaultRetryMax
	httpClient.RetryWaitMin = constants.DefaultRetryWaitMin
	httpClient.RetryWaitMax = constants.DefaultRetryWaitMax
	httpClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	httpClient.Logger = nil

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     civi.NoopLogger{},
		userAgent:  "civigo/1.0",
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// PostForm posts a form-encoded request to path below the base URL and
// returns the raw reply body. Connection failures and non-200 statuses are
// reported as *civi.TransportError.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, header http.Header) ([]byte, error) {
	requestURL := c.baseURL + "/" + strings.TrimPrefix(path, "/")

	c.logger.Info("performing post request", map[string]interface{}{
		"url": requestURL,
	})

	if c.debug {
		c.logger.Debug("request form", map[string]interface{}{
			"form": form.Encode(),
		})
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, requestURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &civi.TransportError{Op: "post", Err: err}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	for key, values := range header {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	if c.basicUser != "" {
		req.SetBasicAuth(c.basicUser, c.basicPass)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &civi.TransportError{Op: "post", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &civi.TransportError{Op: "post", StatusCode: resp.StatusCode, Err: err}
	}

	if c.debug {
		c.logger.Debug("response body", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
	}

	if resp.StatusCode != constants.HTTPStatusOK {
		return nil, &civi.TransportError{
			Op:         "post",
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        civi.ErrRequestNotSucceeded,
		}
	}

	return body, nil
}
