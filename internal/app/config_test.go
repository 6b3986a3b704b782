package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_RequiresWorkflowPath(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WorkflowPath")
}

func TestNewConfig_ValidatesFormat(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{WorkflowPath: "p.hcl", Format: "toml"})
	require.Error(t, err)

	cfg, err := NewConfig(Config{WorkflowPath: "p.hcl", Format: "yaml"})
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Format)
}

func TestNewConfig_DefaultsFormatToAuto(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{WorkflowPath: "p.hcl"})
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.Format)
}
