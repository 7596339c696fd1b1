// Package civiclient provides the main entry point for creating CiviCRM API
// clients. It selects the API version and transport from a civi.Config and
// returns a ready-to-use *civi.API.
package civiclient

import (
	"fmt"
	"strings"

	"github.com/civigo-io/civigo/internal/console"
	"github.com/civigo-io/civigo/internal/rest"
	"github.com/civigo-io/civigo/pkg/civi"
)

// New creates a CiviCRM API client from the given configuration. Extra
// options (custom entities, a logger override) are handed through to
// civi.NewAPI.
func New(config *civi.Config, opts ...civi.Option) (*civi.API, error) {
	if config == nil {
		return nil, civi.ErrConfigRequired
	}

	version, err := resolveVersion(config.Version)
	if err != nil {
		return nil, err
	}

	transport, err := buildTransport(config, version)
	if err != nil {
		return nil, err
	}

	apiOpts := append([]civi.Option{civi.WithLogger(config.Logger)}, opts...)

	api, err := civi.NewAPI(version, transport, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return api, nil
}

// NewRestV4 creates an APIv4 client over HTTP.
func NewRestV4(baseURL, apiKey string) (*civi.API, error) {
	return New(&civi.Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Version: "4",
	})
}

// NewRestV3 creates an APIv3 client over HTTP.
func NewRestV3(baseURL, apiKey, siteKey string) (*civi.API, error) {
	return New(&civi.Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
		SiteKey: siteKey,
		Version: "3",
	})
}

// NewConsoleV4 creates an APIv4 client backed by the local cv command.
func NewConsoleV4(cv, cwd string) (*civi.API, error) {
	return New(&civi.Config{
		Transport: civi.TransportConsole,
		CV:        cv,
		CWD:       cwd,
		Version:   "4",
	})
}

// NewConsoleV3 creates an APIv3 client backed by the local cv command.
func NewConsoleV3(cv, cwd string) (*civi.API, error) {
	return New(&civi.Config{
		Transport: civi.TransportConsole,
		CV:        cv,
		CWD:       cwd,
		Version:   "3",
	})
}

// resolveVersion maps the config's version tag to a descriptor. An empty
// tag selects APIv4.
func resolveVersion(tag string) (*civi.Version, error) {
	switch strings.TrimPrefix(tag, "v") {
	case "", "4":
		return civi.V4, nil
	case "3":
		return civi.V3, nil
	default:
		return nil, fmt.Errorf("%w: %q", civi.ErrUnknownVersion, tag)
	}
}

// buildTransport constructs the transport the config asks for.
func buildTransport(config *civi.Config, version *civi.Version) (civi.Transport, error) {
	switch config.Transport {
	case civi.TransportRest, "":
		return buildRestTransport(config, version)
	case civi.TransportConsole:
		return buildConsoleTransport(config, version), nil
	default:
		return nil, fmt.Errorf("%w: %q", civi.ErrUnknownTransport, config.Transport)
	}
}

// buildRestTransport validates REST credentials and assembles the HTTP
// transport for the selected version.
func buildRestTransport(config *civi.Config, version *civi.Version) (civi.Transport, error) {
	if config.BaseURL == "" {
		return nil, civi.ErrBaseURLRequired
	}

	if config.APIKey == "" {
		return nil, civi.ErrAPIKeyRequired
	}

	if version == civi.V3 && config.SiteKey == "" {
		return nil, civi.ErrSiteKeyRequired
	}

	opts := []rest.Option{
		rest.WithTimeout(config.HTTPTimeout),
		rest.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax),
	}

	if config.Logger != nil {
		opts = append(opts, rest.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, rest.WithDebug(true))
	}

	if config.UserAgent != "" {
		opts = append(opts, rest.WithUserAgent(config.UserAgent))
	}

	if config.BasicAuthUser != "" {
		opts = append(opts, rest.WithBasicAuth(config.BasicAuthUser, config.BasicAuthPass))
	}

	if config.SkipTLSVerify {
		opts = append(opts, rest.WithSkipTLSVerify(true))
	}

	client := rest.NewClient(normalizeBaseURL(config.BaseURL), opts...)

	if version == civi.V3 {
		return rest.NewV3(client, config.APIKey, config.SiteKey), nil
	}

	return rest.NewV4(client, config.APIKey), nil
}

// buildConsoleTransport assembles the cv transport for the selected
// version.
func buildConsoleTransport(config *civi.Config, version *civi.Version) civi.Transport {
	opts := []console.Option{
		console.WithCWD(config.CWD),
		console.WithContextCommand(config.ContextCommand),
	}

	if config.Logger != nil {
		opts = append(opts, console.WithLogger(config.Logger))
	}

	if version == civi.V3 {
		return console.NewV3(config.CV, opts...)
	}

	return console.NewV4(config.CV, opts...)
}

// normalizeBaseURL trims a trailing slash and defaults the scheme to https.
func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}
