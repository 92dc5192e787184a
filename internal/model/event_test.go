package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPopulatesIdentity(t *testing.T) {
	e := New("file", "/var/log/app.log", "hello world")
	require.NotEmpty(t, e.ID)
	assert.Equal(t, "file", e.SourceType)
	assert.Equal(t, "/var/log/app.log", e.SourceName)
	assert.Equal(t, "hello world", e.RawData)
	assert.False(t, e.Timestamp.IsZero())
}

func TestTagsDeduplicateAndPreserveOrder(t *testing.T) {
	e := New("file", "a", "x")
	e.AddTag("alpha")
	e.AddTag("beta")
	e.AddTag("alpha")
	assert.Equal(t, []string{"alpha", "beta"}, e.Tags())
	assert.True(t, e.HasTag("beta"))
	assert.False(t, e.HasTag("gamma"))
}

func TestRoundTripLaw(t *testing.T) {
	e := New("kafka", "topic-a", `{"level":"INFO"}`)
	e.Fields["level"] = "INFO"
	e.Fields["nested"] = map[string]any{"a": float64(1)}
	e.Metadata["offset"] = float64(42)
	e.AddTag("prod")
	e.AddTag("ingest")

	roundTripped := FromMap(e.ToMap())

	assert.Equal(t, e.ID, roundTripped.ID)
	assert.True(t, e.Timestamp.Equal(roundTripped.Timestamp))
	assert.Equal(t, e.SourceType, roundTripped.SourceType)
	assert.Equal(t, e.SourceName, roundTripped.SourceName)
	assert.Equal(t, e.RawData, roundTripped.RawData)
	assert.Equal(t, e.Fields, roundTripped.Fields)
	assert.Equal(t, e.Metadata, roundTripped.Metadata)
	assert.Equal(t, e.Tags(), roundTripped.Tags())
}

func TestCloneDoesNotAliasFields(t *testing.T) {
	e := New("file", "a", "x")
	e.Fields["k"] = "v"
	clone := e.Clone()
	clone.Fields["k"] = "changed"
	assert.Equal(t, "v", e.Fields["k"])
}
