package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLevel("warn"))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
	assert.Equal(t, "WARN", WARN.String())
}

func TestNewWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, WARN)

	l.Info("hidden")
	l.Warn("shown", F("attempt", 2))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "attempt")
}

func TestWithFields_CarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, DEBUG).WithFields(F("component", "guard"))

	l.Error("boom", F("error", errors.New("disk full")))

	out := buf.String()
	assert.Contains(t, out, "guard")
	assert.Contains(t, out, "disk full")
}

func TestNop_IsSafe(t *testing.T) {
	var l *Logger
	l.Info("nil receiver")
	Nop().Error("discarded")
	assert.NoError(t, Nop().Close())
}

func TestNew_WritesAndRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scic.log")

	// Seed an oversized file so the first open rotates it
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0644))

	l, err := New(Config{Level: INFO, FilePath: path, MaxSize: 32, MaxAge: 7, MaxBackups: 2})
	require.NoError(t, err)

	l.Info("fresh entry")
	require.NoError(t, l.Close())

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err, "expected rotated backup")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fresh entry")
}
