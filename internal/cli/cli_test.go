package cli

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCLIRootCommand(t *testing.T) {
	root := BuildCLI()
	assert.Equal(t, "s2fcore", root.Use)

	flag := root.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "configs/default.yaml", flag.DefValue)

	names := make(map[string]bool)
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["process"], "should have 'process' command")
	assert.True(t, names["demux"], "should have 'demux' command")
	assert.True(t, names["version"], "should have 'version' command")
}

func TestBuildProcessCommand(t *testing.T) {
	cmd := buildProcessCommand()
	assert.Equal(t, "process", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestBuildDemuxCommand(t *testing.T) {
	cmd := buildDemuxCommand()
	assert.Equal(t, "demux", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestBuildVersionCommand(t *testing.T) {
	cmd := buildVersionCommand()
	assert.Equal(t, "version", cmd.Use)
	require.NotNil(t, cmd.RunE)
	assert.NoError(t, cmd.RunE(cmd, nil))
}

func TestSetupLoggerRespectsVerboseFlag(t *testing.T) {
	ctx := context.Background()

	quiet := setupLogger(false)
	require.NotNil(t, quiet)
	assert.False(t, quiet.Enabled(ctx, slog.LevelDebug))
	assert.True(t, quiet.Enabled(ctx, slog.LevelInfo))

	verbose := setupLogger(true)
	require.NotNil(t, verbose)
	assert.True(t, verbose.Enabled(ctx, slog.LevelDebug))
}

func TestRunProcessRejectsMissingConfigFile(t *testing.T) {
	err := runProcess("/nonexistent/path/to/config.yaml")
	assert.Error(t, err)
}

func TestRunDemuxRejectsMissingConfigFile(t *testing.T) {
	err := runDemux("/nonexistent/path/to/config.yaml")
	assert.Error(t, err)
}
