package civi

import (
	"context"
	"time"
)

// Transport executes one API call and returns the raw reply text. The REST
// and console implementations live in internal packages and are wired by
// the civiclient package; anything satisfying this interface can back an
// API instance.
//
// A Transport must fail with a *TransportError when the remote endpoint or
// local command is unreachable, returns a non-success status, or exits
// non-zero without a recognizable embedded API error.
type Transport interface {
	Perform(ctx context.Context, entity, action string, params Params) ([]byte, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, entity, action string, params Params) ([]byte, error)

// Perform implements Transport.
func (f TransportFunc) Perform(ctx context.Context, entity, action string, params Params) ([]byte, error) {
	return f(ctx, entity, action, params)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NoopLogger discards all log output. It is the default logger.
type NoopLogger struct{}

// Debug implements Logger.
func (NoopLogger) Debug(string, map[string]interface{}) {}

// Info implements Logger.
func (NoopLogger) Info(string, map[string]interface{}) {}

// Warn implements Logger.
func (NoopLogger) Warn(string, map[string]interface{}) {}

// Error implements Logger.
func (NoopLogger) Error(string, map[string]interface{}) {}

// TransportKind selects which transport civiclient builds.
type TransportKind string

const (
	// TransportRest reaches CiviCRM over HTTP.
	TransportRest TransportKind = "rest"

	// TransportConsole reaches CiviCRM through the local cv command.
	TransportConsole TransportKind = "console"
)

// Config represents client configuration for building a *civi.API via the
// civiclient package.
//
// # Version and transport selection
//
// Version selects the API calling convention ("3" or "4", default "4").
// Transport selects how CiviCRM is reached (TransportRest by default).
// The console transport ignores the HTTP-only fields and vice versa.
//
// # Credentials
//
// APIKey is required for both REST conventions; SiteKey additionally for
// REST APIv3. The console transport needs neither, since cv reads the site
// configuration from the CiviCRM installation it points at.
type Config struct {
	// BaseURL is CiviCRM's base URL (e.g. "https://example.org").
	// civiclient.New normalizes it by trimming a trailing slash and adding
	// "https://" when no scheme is present. Required for REST.
	BaseURL string

	// APIKey is CiviCRM's per-user API key. Required for REST.
	APIKey string

	// SiteKey is CiviCRM's site key. Required for REST APIv3 only.
	SiteKey string

	// Version is the API version tag, "3" or "4". Defaults to "4".
	Version string

	// Transport selects the transport kind. Defaults to TransportRest.
	Transport TransportKind

	// CV is the cv command used by the console transport. Defaults to "cv".
	// It may carry arguments ("vendor/bin/cv").
	CV string

	// CWD is the CiviCRM installation path handed to cv as --cwd. Optional.
	CWD string

	// ContextCommand optionally wraps the console invocation, receiving the
	// assembled command as its final argument. Typical values are
	// "docker compose exec -T app bash -c" or an ssh command.
	ContextCommand string

	// BasicAuthUser and BasicAuthPass enable HTTP basic auth in front of
	// the CiviCRM endpoint (htaccess protection). Optional.
	BasicAuthUser string
	BasicAuthPass string

	// HTTPTimeout is the per-request timeout for the REST transport. Most
	// callers should rely on context deadlines instead; zero means the
	// default from internal/constants.
	HTTPTimeout time.Duration

	// RetryMax is the maximum number of retries for transient HTTP
	// failures. Zero means the transport's default.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration

	// SkipTLSVerify disables TLS certificate verification. Intended for
	// local development only.
	SkipTLSVerify bool

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Debug enables verbose request/response logging when a Logger is set.
	Debug bool

	// Logger receives structured log output. Defaults to NoopLogger.
	Logger Logger
}
