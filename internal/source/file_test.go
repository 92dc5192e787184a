package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSourceReadsAppendedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o644))

	f := NewFile()
	require.NoError(t, f.Configure(map[string]any{
		"path":            path,
		"read_from_start": true,
		"poll_interval":   0.05,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 8)
	events, err := f.Read(ctx, errCh)
	require.NoError(t, err)

	first := <-events

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = file.WriteString("second\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	second := <-events

	assert.Equal(t, "first", first.RawData)
	assert.Equal(t, "second", second.RawData)
	assert.Equal(t, path, first.Metadata["file_path"])
}

func TestFileSourceSkipsEmptyLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte("one\n\n\ntwo\n"), 0o644))

	f := NewFile()
	require.NoError(t, f.Configure(map[string]any{
		"path":            path,
		"read_from_start": true,
		"poll_interval":   0.05,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := f.Read(ctx, nil)
	require.NoError(t, err)

	select {
	case e := <-events:
		assert.Equal(t, "one", e.RawData)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first event")
	}
	select {
	case e := <-events:
		assert.Equal(t, "two", e.RawData)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second event")
	}
}
