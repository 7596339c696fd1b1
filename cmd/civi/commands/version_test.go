package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	viper.Set("output", "json")

	defer viper.Set("output", "table")

	var buf bytes.Buffer

	old := stdout
	stdout = &buf

	defer func() { stdout = old }()

	cmd := NewVersionCommand("1.2.3", "abc1234", "2026-08-30")
	require.NoError(t, cmd.RunE(cmd, nil))

	assert.JSONEq(t, `[{"version": "1.2.3", "commit": "abc1234", "built": "2026-08-30"}]`, buf.String())
}
