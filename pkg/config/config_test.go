package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	testCases := []struct {
		name     string
		logLevel string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"error", "error"},
		{"unknown", "info"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setLogLevel(tc.logLevel)
			assert.Equal(t, tc.logLevel, zerolog.GlobalLevel().String())
		})
	}
}

func TestAddRootPersistentFlags(t *testing.T) {
	viper.Reset()
	cmd := &cobra.Command{Use: "test"}
	require.NoError(t, AddRootPersistentFlags(cmd))

	assert.Equal(t, 3, viper.GetInt(OptRetries))
	assert.Equal(t, "30s", viper.GetDuration(OptTimeout).String())
	assert.Equal(t, "5GiB", viper.GetString(OptMaxSize))
	assert.False(t, viper.GetBool(OptResume))
	assert.Equal(t, "1s", viper.GetDuration(OptBaseDelay).String())
	assert.Equal(t, "1m0s", viper.GetDuration(OptMaxBackoff).String())
}

func TestResumeFlagAlias(t *testing.T) {
	viper.Reset()
	cmd := &cobra.Command{Use: "test"}
	require.NoError(t, AddRootPersistentFlags(cmd))

	require.NoError(t, cmd.PersistentFlags().Set(OptResumeAlias, "true"))
	assert.True(t, viper.GetBool(OptResume), "--resume must behave as --continue")
}

func TestVerbosePromotesLogLevel(t *testing.T) {
	viper.Reset()
	cmd := &cobra.Command{Use: "test"}
	require.NoError(t, AddRootPersistentFlags(cmd))

	viper.Set(OptVerbose, true)
	require.NoError(t, PersistentStartupProcessFlags())
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
