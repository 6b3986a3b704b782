package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"--workflow", "pipeline.hcl"}, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	require.NotNil(t, cfg)
	assert.Equal(t, "pipeline.hcl", cfg.WorkflowPath)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 0, cfg.HTTPPort)
	assert.Equal(t, time.Duration(0), cfg.RunTimeout)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_AllFlags(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{
		"--workflow", "ci.yml",
		"--format", "yaml",
		"--workdir", "/srv/repo",
		"--workers", "8",
		"--http-port", "8475",
		"--timeout", "10m",
		"--log-format", "json",
		"--log-level", "debug",
	}, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "ci.yml", cfg.WorkflowPath)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "/srv/repo", cfg.WorkDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 8475, cfg.HTTPPort)
	assert.Equal(t, 10*time.Minute, cfg.RunTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_PositionalPath(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"pipeline.hcl"}, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "pipeline.hcl", cfg.WorkflowPath)
}

func TestParse_ShorthandFlag(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, _, err := Parse([]string{"-w", "pipeline.hcl"}, out)

	require.NoError(t, err)
	assert.Equal(t, "pipeline.hcl", cfg.WorkflowPath)
}

func TestParse_NoPathPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse(nil, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_HelpFlag(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"-h"}, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
}

func TestParse_InvalidValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"invalid format", []string{"--format", "toml", "pipeline.hcl"}},
		{"invalid log format", []string{"--log-format", "xml", "pipeline.hcl"}},
		{"invalid log level", []string{"--log-level", "verbose", "pipeline.hcl"}},
		{"negative timeout", []string{"--timeout", "-5s", "pipeline.hcl"}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := &bytes.Buffer{}
			cfg, _, err := Parse(tc.args, out)

			require.Error(t, err)
			assert.Nil(t, cfg)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}
