package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_InvalidLevel(t *testing.T) {
	assert.Error(t, Init("loud", ""))
}

func TestKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init("debug", ""))
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Info("Request processed", "method", "POST", "path", "/broadcast", "dangling")
	out := buf.String()
	assert.Contains(t, out, `msg="Request processed"`)
	assert.Contains(t, out, "method=POST")
	assert.Contains(t, out, "path=/broadcast")
	assert.Contains(t, out, `dangling="(missing)"`)
}

func TestInit_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broadcaster.log")
	require.NoError(t, Init("info", path))

	Error("Failed to broadcast transaction", "error", "boom")
	Cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Failed to broadcast transaction")
	assert.Contains(t, string(data), "error=boom")
}
