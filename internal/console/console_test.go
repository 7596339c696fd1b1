package console_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civigo-io/civigo/internal/console"
	"github.com/civigo-io/civigo/pkg/civi"
)

// fakeRunner records the assembled command and replies with canned output.
type fakeRunner struct {
	command string
	stdout  string
	stderr  string
	err     error
}

func (r *fakeRunner) Run(_ context.Context, command string) (string, string, error) {
	r.command = command

	return r.stdout, r.stderr, r.err
}

var errExit = errors.New("exit status 1")

func TestV4_Perform(t *testing.T) {
	t.Parallel()

	t.Run("builds the v4 command", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{stdout: `[]`}
		transport := console.NewV4("cv", console.WithRunner(runner), console.WithCWD("/var/www/civicrm"))

		raw, err := transport.Perform(context.Background(), "Contact", "get", civi.Params{
			"where": [][]any{{"contact_type", "=", "Individual"}},
		})
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(raw))
		assert.Equal(t,
			`cv --cwd=/var/www/civicrm api4 Contact.get '{"where":[["contact_type","=","Individual"]]}'`,
			runner.command)
	})

	t.Run("omits the params argument when there are none", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{stdout: `[]`}
		transport := console.NewV4("cv", console.WithRunner(runner))

		_, err := transport.Perform(context.Background(), "Contact", "get", nil)
		require.NoError(t, err)
		assert.Equal(t, "cv api4 Contact.get", runner.command)
	})

	t.Run("tokenizes a cv command with arguments", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{stdout: `[]`}
		transport := console.NewV4("vendor/bin/cv -v", console.WithRunner(runner))

		_, err := transport.Perform(context.Background(), "Contact", "get", nil)
		require.NoError(t, err)
		assert.Equal(t, "vendor/bin/cv -v api4 Contact.get", runner.command)
	})

	t.Run("wraps the command in the context command", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{stdout: `[]`}
		transport := console.NewV4("cv",
			console.WithRunner(runner),
			console.WithContextCommand("docker compose exec -T app bash -c"),
		)

		_, err := transport.Perform(context.Background(), "Contact", "get", nil)
		require.NoError(t, err)
		assert.Equal(t, `docker compose exec -T app bash -c 'cv api4 Contact.get'`, runner.command)
	})

	t.Run("usage message on stderr is an api error", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{
			stderr: "Usage: cv api4 [--in IN] [--out OUT] ...\nERROR: Api Contact::foobar version 4 does not exist.",
			err:    errExit,
		}
		transport := console.NewV4("cv", console.WithRunner(runner))

		_, err := transport.Perform(context.Background(), "Contact", "foobar", nil)
		require.Error(t, err)
		assert.True(t, civi.IsAPIError(err))
		assert.Contains(t, err.Error(), "version 4 does not exist")
	})

	t.Run("unrecognized failure is a transport error", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{stderr: "sh: cv: command not found", err: errExit}
		transport := console.NewV4("cv", console.WithRunner(runner))

		_, err := transport.Perform(context.Background(), "Contact", "get", nil)
		require.Error(t, err)
		assert.True(t, civi.IsTransportError(err))
		assert.Contains(t, err.Error(), "command not found")
	})
}

func TestV3_Perform(t *testing.T) {
	t.Parallel()

	t.Run("builds the piped v3 command with sequential defaulted", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{stdout: `{"is_error": 0, "values": []}`}
		transport := console.NewV3("cv", console.WithRunner(runner), console.WithCWD("/var/www/civicrm"))

		_, err := transport.Perform(context.Background(), "Contact", "get", civi.Params{
			"contact_type": "Individual",
		})
		require.NoError(t, err)
		assert.Equal(t,
			`echo '{"contact_type":"Individual","sequential":1}' | cv --cwd=/var/www/civicrm api3 Contact.get --in=json`,
			runner.command)
	})

	t.Run("error envelope on stdout survives a non-zero exit", func(t *testing.T) {
		t.Parallel()

		envelope := `{"is_error": 1, "error_message": "ERROR: Unknown api action"}`
		runner := &fakeRunner{stdout: envelope, err: errExit}
		transport := console.NewV3("cv", console.WithRunner(runner))

		raw, err := transport.Perform(context.Background(), "Contact", "foobar", nil)
		require.NoError(t, err)
		assert.Equal(t, envelope, string(raw))

		// The classifier downstream turns the envelope into an APIError.
		_, err = civi.ClassifyResponse(raw)
		assert.True(t, civi.IsAPIError(err))
	})

	t.Run("non-json stdout on failure is a transport error", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{stdout: "", stderr: "PHP Fatal error", err: errExit}
		transport := console.NewV3("cv", console.WithRunner(runner))

		_, err := transport.Perform(context.Background(), "Contact", "get", nil)
		require.Error(t, err)
		assert.True(t, civi.IsTransportError(err))
	})
}

func TestWithUsageFragments(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{stderr: "cv api4: unknown action", err: errExit}
	transport := console.NewV4("cv",
		console.WithRunner(runner),
		console.WithUsageFragments("unknown action"),
	)

	_, err := transport.Perform(context.Background(), "Contact", "frobnicate", nil)
	require.Error(t, err)
	assert.True(t, civi.IsAPIError(err))
}
