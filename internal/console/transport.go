package console

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/civigo-io/civigo/internal/constants"
	"github.com/civigo-io/civigo/pkg/civi"
)

// apiV4UsageFragment appears in cv's stderr when an APIv4 call is rejected
// before producing a JSON reply. The exact fragment is a cv implementation
// detail; it can be overridden per transport via WithUsageFragments.
const apiV4UsageFragment = "api4 [--in in] [--out out]"

// transport holds the pieces shared by the v3 and v4 console transports:
// the tokenized cv command, the optional --cwd flag, the optional context
// command wrapper, and the failure-sniffing heuristics.
type transport struct {
	cv             []string
	cwd            string
	contextCommand string
	runner         Runner
	logger         civi.Logger
	usageFragments []string
}

// Option configures a console transport.
type Option func(*transport)

// WithRunner substitutes the command runner. The default shells out.
func WithRunner(runner Runner) Option {
	return func(t *transport) {
		if runner != nil {
			t.runner = runner
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger civi.Logger) Option {
	return func(t *transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithCWD points cv at a CiviCRM installation path via --cwd.
func WithCWD(cwd string) Option {
	return func(t *transport) {
		t.cwd = cwd
	}
}

// WithContextCommand wraps the assembled command in another command that
// receives it as a single quoted argument. Typical wrappers are
// "docker compose exec -T app bash -c" or an ssh invocation.
func WithContextCommand(command string) Option {
	return func(t *transport) {
		t.contextCommand = command
	}
}

// WithUsageFragments overrides the stderr substrings that identify an
// embedded API error on command failure.
func WithUsageFragments(fragments ...string) Option {
	return func(t *transport) {
		t.usageFragments = fragments
	}
}

// newTransport tokenizes the cv command and applies options.
func newTransport(cv string, opts ...Option) *transport {
	if cv == "" {
		cv = constants.DefaultCVCommand
	}

	t := &transport{
		cv:             strings.Fields(cv),
		runner:         &ExecRunner{},
		logger:         civi.NoopLogger{},
		usageFragments: []string{apiV4UsageFragment},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// cvTokens assembles the leading cv tokens shared by both conventions.
func (t *transport) cvTokens() []string {
	tokens := make([]string, 0, len(t.cv)+1)
	tokens = append(tokens, t.cv...)

	if t.cwd != "" {
		tokens = append(tokens, "--cwd="+shellQuote(t.cwd))
	}

	return tokens
}

// run executes the command, wrapping it in the context command when one is
// configured, and interprets failures.
func (t *transport) run(ctx context.Context, command string) ([]byte, error) {
	if t.contextCommand != "" {
		command = t.contextCommand + " " + shellQuote(command)
	}

	t.logger.Info("running command", map[string]interface{}{
		"command": command,
	})

	stdout, stderr, err := t.runner.Run(ctx, command)
	if err != nil {
		return t.interpretFailure(stdout, stderr, err)
	}

	if stderr != "" {
		t.logger.Warn("command wrote to stderr", map[string]interface{}{
			"stderr": stderr,
		})
	}

	return []byte(stdout), nil
}

// interpretFailure inspects a failed command for an embedded API-level
// error before falling back to a transport error. cv reports invalid calls
// through two side channels: a usage message on stderr (APIv4) and a JSON
// error envelope on stdout despite the non-zero exit (APIv3).
func (t *transport) interpretFailure(stdout, stderr string, err error) ([]byte, error) {
	for _, fragment := range t.usageFragments {
		if fragment != "" && strings.Contains(strings.ToLower(stderr), strings.ToLower(fragment)) {
			return nil, &civi.APIError{Message: strings.TrimSpace(stderr)}
		}
	}

	var envelope map[string]any
	if json.Unmarshal([]byte(stdout), &envelope) == nil {
		if _, ok := envelope["is_error"]; ok {
			// Let the classifier turn the envelope into an APIError.
			return []byte(stdout), nil
		}
	}

	return nil, &civi.TransportError{
		Op:   "run",
		Body: stderr,
		Err:  err,
	}
}

// V4 is the cv transport for CiviCRM APIv4. Calls become
// "cv [--cwd=<dir>] api4 Entity.action '<json-params>'", with the
// parameter argument omitted when there are none.
type V4 struct {
	*transport
}

// NewV4 creates the APIv4 console transport.
func NewV4(cv string, opts ...Option) *V4 {
	return &V4{transport: newTransport(cv, opts...)}
}

// Perform implements civi.Transport.
func (t *V4) Perform(ctx context.Context, entity, action string, params civi.Params) ([]byte, error) {
	tokens := t.cvTokens()
	tokens = append(tokens, "api4", shellQuote(entity+"."+action))

	if len(params) > 0 {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, &civi.TransportError{Op: "encode", Err: err}
		}

		tokens = append(tokens, shellQuote(string(encoded)))
	}

	return t.run(ctx, strings.Join(tokens, " "))
}

// V3 is the cv transport for CiviCRM APIv3. Calls become
// "echo '<json-params>' | cv [--cwd=<dir>] api3 Entity.action --in=json",
// with sequential defaulted to 1.
type V3 struct {
	*transport
}

// NewV3 creates the APIv3 console transport.
func NewV3(cv string, opts ...Option) *V3 {
	return &V3{transport: newTransport(cv, opts...)}
}

// Perform implements civi.Transport.
func (t *V3) Perform(ctx context.Context, entity, action string, params civi.Params) ([]byte, error) {
	encoded, err := json.Marshal(withSequentialDefault(params))
	if err != nil {
		return nil, &civi.TransportError{Op: "encode", Err: err}
	}

	tokens := t.cvTokens()
	tokens = append(tokens, "api3", shellQuote(entity+"."+action), "--in=json")

	command := "echo " + shellQuote(string(encoded)) + " | " + strings.Join(tokens, " ")

	return t.run(ctx, command)
}

// withSequentialDefault applies the APIv3 transport default sequential=1
// unless the caller chose otherwise. The caller's map is left untouched.
func withSequentialDefault(params civi.Params) civi.Params {
	if _, ok := params["sequential"]; ok {
		return params
	}

	out := make(civi.Params, len(params)+1)
	for key, value := range params {
		out[key] = value
	}

	out["sequential"] = 1

	return out
}
