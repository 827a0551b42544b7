package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: LevelInfo, Encoding: "json", Output: &buf})
	t.Cleanup(func() { Configure(Options{Level: LevelInfo}) })

	Debug("hidden")
	Error("load failed", errors.New("boom"), "id", "work")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "load failed", entry["msg"])
	assert.Equal(t, "boom", entry["err"])
	assert.Equal(t, "work", entry["id"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: LevelWarn, Output: &buf})
	t.Cleanup(func() { Configure(Options{Level: LevelInfo}) })

	Info("quiet")
	assert.Zero(t, buf.Len())

	SetLevel(LevelDebug)
	Debug("loud", "n", 1)
	assert.Contains(t, buf.String(), "loud")
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, l)

	l, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, l)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
