package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, writeSampleConfig(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := setupFS.ReadFile("config.sample.toml")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	assert.Error(t, writeSampleConfig(path), "existing config must not be overwritten")
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		log, err := newLogger(level)
		require.NoError(t, err, level)
		assert.NotNil(t, log)
	}

	_, err := newLogger("loud")
	assert.Error(t, err)
}
