package sink

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souzomain/logflow/internal/model"
)

func TestFileSinkWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	s := NewFile()
	require.NoError(t, s.Configure(map[string]any{"path": path, "format": "json"}))

	event := model.New("file", "app.log", "hello")
	event.Fields["level"] = "INFO"
	require.NoError(t, s.Write([]*model.LogEvent{event}))
	require.NoError(t, s.Release())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &decoded))
	assert.Equal(t, "INFO", decoded["level"])
	assert.False(t, scanner.Scan())
}

func TestFileSinkTextTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	s := NewFile()
	require.NoError(t, s.Configure(map[string]any{
		"path":   path,
		"format": "text",
	}))

	event := model.New("api", "api", "ok")
	event.Fields["message"] = "ok"
	require.NoError(t, s.Write([]*model.LogEvent{event}))
	require.NoError(t, s.Release())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ok")
}

func TestFileSinkEmptyBatchIsNoOp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	s := NewFile()
	require.NoError(t, s.Configure(map[string]any{"path": path}))
	require.NoError(t, s.Write(nil))
	require.NoError(t, s.Release())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileSinkAppendsAcrossConfigure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	first := NewFile()
	require.NoError(t, first.Configure(map[string]any{"path": path, "format": "json"}))
	require.NoError(t, first.Write([]*model.LogEvent{model.New("file", "a", "1")}))
	require.NoError(t, first.Release())

	second := NewFile()
	require.NoError(t, second.Configure(map[string]any{"path": path, "format": "json"}))
	require.NoError(t, second.Write([]*model.LogEvent{model.New("file", "a", "2")}))
	require.NoError(t, second.Release())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if scanner.Text() != "" {
			lines++
		}
	}
	assert.Equal(t, 2, lines)
}
