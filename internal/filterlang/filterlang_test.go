package filterlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistsAndMissing(t *testing.T) {
	c, err := Parse("exists:level")
	require.NoError(t, err)
	assert.True(t, c.Evaluate(map[string]any{"level": "INFO"}))
	assert.False(t, c.Evaluate(map[string]any{}))

	c, err = Parse("missing:level")
	require.NoError(t, err)
	assert.True(t, c.Evaluate(map[string]any{}))
	assert.False(t, c.Evaluate(map[string]any{"level": "INFO"}))
}

func TestEqualityDropsDebug(t *testing.T) {
	c, err := Parse("level != 'DEBUG'")
	require.NoError(t, err)
	assert.True(t, c.Evaluate(map[string]any{"level": "INFO"}))
	assert.False(t, c.Evaluate(map[string]any{"level": "DEBUG"}))
	// Missing field fails the primitive.
	assert.False(t, c.Evaluate(map[string]any{}))
}

func TestNumericComparison(t *testing.T) {
	c, err := Parse("status >= 500")
	require.NoError(t, err)
	assert.True(t, c.Evaluate(map[string]any{"status": 503.0}))
	assert.False(t, c.Evaluate(map[string]any{"status": 200.0}))
	assert.False(t, c.Evaluate(map[string]any{"status": "not-a-number"}))
}

func TestRegexMatch(t *testing.T) {
	c, err := Parse(`message =~ ^ERROR`)
	require.NoError(t, err)
	assert.True(t, c.Evaluate(map[string]any{"message": "ERROR: boom"}))
	assert.False(t, c.Evaluate(map[string]any{"message": "OK"}))

	c, err = Parse(`message !~ ^ERROR`)
	require.NoError(t, err)
	assert.True(t, c.Evaluate(map[string]any{"message": "OK"}))
}

func TestMembership(t *testing.T) {
	c, err := Parse("level in [INFO, WARNING, ERROR]")
	require.NoError(t, err)
	assert.True(t, c.Evaluate(map[string]any{"level": "WARNING"}))
	assert.False(t, c.Evaluate(map[string]any{"level": "DEBUG"}))

	c, err = Parse("level not in [INFO, WARNING]")
	require.NoError(t, err)
	assert.True(t, c.Evaluate(map[string]any{"level": "ERROR"}))
}

func TestCombineAnyAll(t *testing.T) {
	conditions, err := ParseAll([]string{"exists:a", "exists:b"})
	require.NoError(t, err)

	all, err := Combine(ModeAll, conditions, false)
	require.NoError(t, err)
	assert.True(t, all.Evaluate(map[string]any{"a": 1, "b": 2}))
	assert.False(t, all.Evaluate(map[string]any{"a": 1}))

	any, err := Combine(ModeAny, conditions, false)
	require.NoError(t, err)
	assert.True(t, any.Evaluate(map[string]any{"a": 1}))

	negated, err := Combine(ModeAny, conditions, true)
	require.NoError(t, err)
	assert.False(t, negated.Evaluate(map[string]any{"a": 1}))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("!!! nonsense !!!")
	require.Error(t, err)
}
