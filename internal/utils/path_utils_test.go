package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DAYFLOW_CONFIG_HOME", dir)

	got, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestGetConfigDir_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DAYFLOW_CONFIG_HOME", "")
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dayflow"), got)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DAYFLOW_CONFIG_HOME", dir)

	got, err := ConfigFile("credentials")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "credentials"), got)
}
