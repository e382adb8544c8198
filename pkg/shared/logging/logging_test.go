package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsUnknownLevelToInfo(t *testing.T) {
	logger, err := New(Config{Level: "not-a-level", Format: "json"})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewConsoleFormat(t *testing.T) {
	logger, err := New(Config{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestRotatingFileRotatesPastMaxSize(t *testing.T) {
	dir := t.TempDir()
	rf, err := newRotatingFile(dir, "test.log", 16)
	require.NoError(t, err)

	_, err = rf.Write([]byte("0123456789"))
	require.NoError(t, err)
	_, err = rf.Write([]byte("0123456789"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 2, "expected at least one rotated file plus the active file")

	_, err = os.Stat(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
}
