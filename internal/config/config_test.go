package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souzomain/logflow/internal/errs"
)

func TestParseValidDescriptor(t *testing.T) {
	doc := []byte(`
name: app-logs
sources:
  - name: tail-app
    type: file
    config:
      path: /var/log/app.log
sinks:
  - name: out
    type: file
    config:
      path: /var/log/out.jsonl
batch_size: 50
batch_timeout: 2.5
`)
	desc, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "app-logs", desc.Name)
	assert.Len(t, desc.Sources, 1)
	assert.Equal(t, "file", desc.Sources[0].Type)
	assert.Equal(t, 50, desc.BatchSize)
	assert.InDelta(t, 2.5, desc.BatchTimeout, 1e-9)
}

func TestParseDefaultsBatchSizeAndTimeout(t *testing.T) {
	doc := []byte(`
name: app-logs
sources:
  - name: tail-app
    type: file
    config: {}
sinks:
  - name: out
    type: file
    config: {}
`)
	desc, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, desc.BatchSize)
	assert.InDelta(t, DefaultBatchTimeout.Seconds(), desc.BatchTimeout, 1e-9)
}

func TestParseMissingName(t *testing.T) {
	doc := []byte(`
sources:
  - name: a
    type: file
    config: {}
sinks:
  - name: b
    type: file
    config: {}
`)
	_, err := Parse(doc)
	require.Error(t, err)
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "name", cfgErr.Item)
}

func TestParseEmptySourcesRejected(t *testing.T) {
	doc := []byte(`
name: app-logs
sources: []
sinks:
  - name: b
    type: file
    config: {}
`)
	_, err := Parse(doc)
	require.Error(t, err)
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "sources", cfgErr.Item)
}

func TestParseItemMissingTypeIdentifiesIndex(t *testing.T) {
	doc := []byte(`
name: app-logs
sources:
  - name: a
    config: {}
sinks:
  - name: b
    type: file
    config: {}
`)
	_, err := Parse(doc)
	require.Error(t, err)
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "sources[0]", cfgErr.Item)
}

func TestParseConfigNotMapping(t *testing.T) {
	doc := []byte(`
name: app-logs
sources:
  - name: a
    type: file
    config: "not-a-map"
sinks:
  - name: b
    type: file
    config: {}
`)
	_, err := Parse(doc)
	require.Error(t, err)
}
