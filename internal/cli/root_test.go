package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{"force", "yes", "skip-verify"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), "flag --%s", name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("json"))
}

func TestRootCommandSilencesCobraNoise(t *testing.T) {
	// Errors are rendered by the structured type and usage is in the help
	// text; cobra must not duplicate either.
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)
}

func TestSubcommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["check"])
	require.True(t, names["version"])
}
