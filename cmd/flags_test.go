package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every command that loads a project must accept the configuration and
// compiler flags, or conditional manifest sections silently evaluate
// against the defaults.
func TestProjectCommandsCarryConfigFlags(t *testing.T) {
	for _, cmd := range []*cobra.Command{rootCmd, resolveCmd, exportCmd, importCmd} {
		t.Run(cmd.Name(), func(t *testing.T) {
			for _, flag := range []string{"config", "compiler"} {
				assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
			}
		})
	}
}

func TestConfigFlagParses(t *testing.T) {
	f := exportCmd.Flags().Lookup("config")
	require.NotNil(t, f)
	require.NoError(t, f.Value.Set("Release"))
	assert.Equal(t, "Release", flagConfig)

	// restore the default so other tests see a pristine flag set
	require.NoError(t, f.Value.Set("Debug"))
}
