package grok

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommonApacheLog(t *testing.T) {
	lib := NewLibrary()
	line := `127.0.0.1 - alice [10/Oct/2000:13:55:36 -0700] "GET /x HTTP/1.0" 200 2326`

	fields, ok, err := lib.Match("%{COMMONAPACHELOG}", line)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "127.0.0.1", fields["clientip"])
	assert.Equal(t, "alice", fields["auth"])
	assert.Equal(t, "GET", fields["verb"])
	assert.Equal(t, "/x", fields["request"])
	assert.Equal(t, "1.0", fields["httpversion"])
	assert.Equal(t, "200", fields["response"])
	assert.Equal(t, "2326", fields["bytes"])
}

func TestCustomPatternOverride(t *testing.T) {
	lib := NewLibrary()
	lib.Register("GREETING", `(?:hello|hi)`)

	fields, ok, err := lib.Match("%{GREETING:greet} %{WORD:name}", "hello world")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", fields["greet"])
	assert.Equal(t, "world", fields["name"])
}

func TestOverrideBuiltinShadowsIt(t *testing.T) {
	lib := NewLibrary()
	lib.Register("WORD", `[a-z]+`)

	_, ok, err := lib.Match("%{WORD:w}", "UPPER")
	require.NoError(t, err)
	assert.False(t, ok)

	fields, ok, err := lib.Match("%{WORD:w}", "lower")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "lower", fields["w"])
}

func TestDirectCycleIsDetected(t *testing.T) {
	lib := NewLibrary()
	lib.Register("SELFREF", `%{SELFREF}`)

	_, err := lib.Compile("%{SELFREF}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestIndirectCycleIsDetected(t *testing.T) {
	lib := NewLibrary()
	lib.Register("A", `%{B}`)
	lib.Register("B", `%{A}`)

	_, err := lib.Compile("%{A}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestUnknownPatternErrors(t *testing.T) {
	lib := NewLibrary()
	_, err := lib.Compile("%{DOES_NOT_EXIST}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown named pattern")
}

func TestNoMatchReturnsFalse(t *testing.T) {
	lib := NewLibrary()
	_, ok, err := lib.Match("%{IPV4}", "not an ip address")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecursiveExpansionIsMemoized(t *testing.T) {
	lib := NewLibrary()
	// %{IPORHOST} expands %{IP} which expands %{IPV4}/%{IPV6}; compiling
	// twice should hit the cache on the second pass without error.
	_, err := lib.Compile("%{IPORHOST:host}")
	require.NoError(t, err)
	_, err = lib.Compile("%{IPORHOST:host} %{IPORHOST:other}")
	require.NoError(t, err)
}
