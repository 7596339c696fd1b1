package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFlagIsBound(t *testing.T) {
	require.NoError(t, rootCmd.PersistentFlags().Set("config", "/tmp/civi-test.yml"))
	assert.Equal(t, "/tmp/civi-test.yml", viper.GetString("config"))
}
