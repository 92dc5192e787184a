package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/souzomain/logflow/internal/processor"
	_ "github.com/souzomain/logflow/internal/sink"
	_ "github.com/souzomain/logflow/internal/source"
)

const testDescriptor = `
name: %s
sources:
  - name: in
    type: file
    config:
      path: %s
      tail: false
      read_from_start: true
sinks:
  - name: out
    type: file
    config:
      path: %s
      format: json
`

func writeDescriptor(t *testing.T, name, inPath, outPath string) string {
	t.Helper()
	dir := t.TempDir()
	descPath := filepath.Join(dir, "pipeline.yaml")
	content := []byte(fmt.Sprintf(testDescriptor, name, inPath, outPath))
	require.NoError(t, os.WriteFile(descPath, content, 0o644))
	return descPath
}

func TestEngineLoadStartStop(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.log")
	outPath := filepath.Join(dir, "out.log")
	require.NoError(t, os.WriteFile(inPath, []byte("{\"level\":\"INFO\"}\n"), 0o644))

	descPath := writeDescriptor(t, "pipeline-a", inPath, outPath)

	e := New()
	name, err := e.Load(descPath)
	require.NoError(t, err)
	assert.Equal(t, "pipeline-a", name)
	assert.Contains(t, e.List(), "pipeline-a")

	require.NoError(t, e.Start("pipeline-a"))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, e.Stop("pipeline-a"))

	status, err := e.Status("pipeline-a")
	require.NoError(t, err)
	assert.False(t, status.Running)
}

func TestEngineStartUnknownPipelineErrors(t *testing.T) {
	e := New()
	err := e.Start("does-not-exist")
	assert.Error(t, err)
}

func TestEngineStatusUnknownPipelineErrors(t *testing.T) {
	e := New()
	_, err := e.Status("does-not-exist")
	assert.Error(t, err)
}
