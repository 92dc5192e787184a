package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souzomain/logflow/internal/model"
)

func TestStructuredParsesAndFlattens(t *testing.T) {
	p := NewStructured()
	require.NoError(t, p.Configure(map[string]any{
		"field":             "raw_data",
		"target_field":      "",
		"preserve_original": true,
	}))

	event := model.New("file", "app.log", `{"level":"INFO","service":"api","message":"ok"}`)
	out, err := p.Process(event)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "INFO", out.Fields["level"])
	assert.Equal(t, "api", out.Fields["service"])
	assert.Equal(t, "ok", out.Fields["message"])
}

func TestStructuredDropsOnInvalidJSON(t *testing.T) {
	p := NewStructured()
	require.NoError(t, p.Configure(map[string]any{}))

	event := model.New("file", "app.log", "not json")
	out, err := p.Process(event)
	require.Error(t, err)
	assert.Nil(t, out)
}

func TestStructuredIgnoreErrorsPassesThrough(t *testing.T) {
	p := NewStructured()
	require.NoError(t, p.Configure(map[string]any{"ignore_errors": true}))

	event := model.New("file", "app.log", "not json")
	out, err := p.Process(event)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Contains(t, out.Metadata, "json_error")
}

func TestFilterDropsDebugLevel(t *testing.T) {
	p := NewFilter()
	require.NoError(t, p.Configure(map[string]any{"condition": "level != 'DEBUG'"}))

	passing := model.New("file", "app.log", "")
	passing.Fields["level"] = "INFO"
	out, err := p.Process(passing)
	require.NoError(t, err)
	assert.NotNil(t, out)

	dropped := model.New("file", "app.log", "")
	dropped.Fields["level"] = "DEBUG"
	out, err = p.Process(dropped)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestRegexExtractsNamedGroups(t *testing.T) {
	p := NewRegex()
	require.NoError(t, p.Configure(map[string]any{
		"pattern": `(?P<user>\w+)@(?P<domain>\w+\.\w+)`,
		"field":   "raw_data",
	}))

	event := model.New("file", "app.log", "contact alice@example.com now")
	out, err := p.Process(event)
	require.NoError(t, err)
	assert.Equal(t, "alice", out.Fields["user"])
	assert.Equal(t, "example.com", out.Fields["domain"])
}

func TestMutatorAppliesOperationsInOrder(t *testing.T) {
	p := NewMutator()
	require.NoError(t, p.Configure(map[string]any{
		"add_fields":       map[string]any{"env": "prod"},
		"rename_fields":    map[string]any{"msg": "message"},
		"uppercase_fields": []any{"env"},
		"strip_fields":     []any{"message"},
	}))

	event := model.New("file", "app.log", "")
	event.Fields["msg"] = "  hello  "
	out, err := p.Process(event)
	require.NoError(t, err)

	assert.Equal(t, "PROD", out.Fields["env"])
	assert.Equal(t, "hello", out.Fields["message"])
	_, hasOld := out.Fields["msg"]
	assert.False(t, hasOld)
}

func TestMutatorConvertErrorAnnotatesMetadata(t *testing.T) {
	p := NewMutator()
	require.NoError(t, p.Configure(map[string]any{
		"convert_fields": map[string]any{"count": "int"},
	}))

	event := model.New("file", "app.log", "")
	event.Fields["count"] = "not-a-number"
	out, err := p.Process(event)
	require.NoError(t, err)
	assert.Contains(t, out.Metadata, "convert_error_count")
	assert.Equal(t, "not-a-number", out.Fields["count"])
}

func TestEnricherTableLookup(t *testing.T) {
	p := NewEnricher()
	require.NoError(t, p.Configure(map[string]any{
		"enrich_type":   "lookup",
		"source_field":  "status_code",
		"target_field":  "status_class",
		"lookup_table":  map[string]any{"200": "success", "500": "server_error"},
		"default_value": "unknown",
	}))

	event := model.New("file", "app.log", "")
	event.Fields["status_code"] = "200"
	out, err := p.Process(event)
	require.NoError(t, err)
	assert.Equal(t, "success", out.Fields["status_class"])
}

func TestNamedPatternExtractsApacheLog(t *testing.T) {
	p := NewNamedPattern()
	require.NoError(t, p.Configure(map[string]any{
		"pattern": "%{COMMONAPACHELOG}",
	}))

	event := model.New("file", "access.log", `127.0.0.1 - alice [10/Oct/2000:13:55:36 -0700] "GET /x HTTP/1.0" 200 2326`)
	out, err := p.Process(event)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", out.Fields["clientip"])
	assert.Equal(t, "alice", out.Fields["auth"])
	assert.Equal(t, "200", out.Fields["response"])
}
