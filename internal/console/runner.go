// Package console implements the cv command-line transport for CiviCRM,
// covering both the APIv3 and APIv4 calling conventions.
package console

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/civigo-io/civigo/internal/constants"
)

// Runner executes an assembled shell command and returns its output
// streams. The default implementation shells out; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, command string) (stdout, stderr string, err error)
}

// ExecRunner runs commands through a shell. A shell is required because the
// APIv3 convention pipes the parameters into cv via echo.
type ExecRunner struct {
	// Shell is the shell binary, "sh" when empty.
	Shell string
}

// Run implements Runner. On a non-zero exit the captured stdout and stderr
// are still returned alongside the *exec.ExitError, so the transports can
// look for embedded API errors before giving up.
func (r *ExecRunner) Run(ctx context.Context, command string) (string, string, error) {
	shell := r.Shell
	if shell == "" {
		shell = constants.DefaultShell
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.String(), stderr.String(), err
}
