// Package config loads and validates the pipeline descriptor
// documents consumed by the engine (spec §6).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/souzomain/logflow/internal/errs"
)

const (
	DefaultBatchSize    = 100
	DefaultBatchTimeout = 5 * time.Second
)

// ComponentSpec names one source, processor, or sink instance and its
// nested options.
type ComponentSpec struct {
	Name   string
	Type   string
	Config map[string]any
}

// PipelineDescriptor is the validated configuration for one pipeline.
type PipelineDescriptor struct {
	Name         string
	Sources      []ComponentSpec
	Processors   []ComponentSpec
	Sinks        []ComponentSpec
	BatchSize    int
	BatchTimeout float64 // seconds
}

// BatchTimeoutDuration converts the YAML-supplied seconds into a
// time.Duration.
func (d *PipelineDescriptor) BatchTimeoutDuration() time.Duration {
	return time.Duration(d.BatchTimeout * float64(time.Second))
}

// rawDescriptor mirrors PipelineDescriptor but keeps fields as `any`
// so validation can distinguish "absent" from "zero value" before
// type-asserting.
type rawDescriptor struct {
	Name         any `yaml:"name"`
	Sources      any `yaml:"sources"`
	Processors   any `yaml:"processors"`
	Sinks        any `yaml:"sinks"`
	BatchSize    any `yaml:"batch_size"`
	BatchTimeout any `yaml:"batch_timeout"`
}

// Load reads and validates a pipeline descriptor from path.
func Load(path string) (*PipelineDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewConfigError(path, fmt.Errorf("reading config: %w", err))
	}
	return Parse(data)
}

// Parse validates a pipeline descriptor from raw YAML bytes.
func Parse(data []byte) (*PipelineDescriptor, error) {
	var raw rawDescriptor
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errs.NewConfigError("document", fmt.Errorf("invalid yaml: %w", err))
	}

	name, ok := raw.Name.(string)
	if !ok || name == "" {
		return nil, errs.NewConfigError("name", fmt.Errorf("missing required field"))
	}

	sources, err := parseComponentList(raw.Sources, "sources", true)
	if err != nil {
		return nil, err
	}
	sinks, err := parseComponentList(raw.Sinks, "sinks", true)
	if err != nil {
		return nil, err
	}
	processors, err := parseComponentList(raw.Processors, "processors", false)
	if err != nil {
		return nil, err
	}

	desc := &PipelineDescriptor{
		Name:         name,
		Sources:      sources,
		Processors:   processors,
		Sinks:        sinks,
		BatchSize:    DefaultBatchSize,
		BatchTimeout: DefaultBatchTimeout.Seconds(),
	}

	if raw.BatchSize != nil {
		n, ok := toInt(raw.BatchSize)
		if !ok {
			return nil, errs.NewConfigError("batch_size", fmt.Errorf("must be an integer"))
		}
		desc.BatchSize = n
	}
	if raw.BatchTimeout != nil {
		f, ok := toFloat(raw.BatchTimeout)
		if !ok {
			return nil, errs.NewConfigError("batch_timeout", fmt.Errorf("must be a number"))
		}
		desc.BatchTimeout = f
	}

	return desc, nil
}

func parseComponentList(v any, field string, requireNonEmpty bool) ([]ComponentSpec, error) {
	if v == nil {
		if requireNonEmpty {
			return nil, errs.NewConfigError(field, fmt.Errorf("missing required field"))
		}
		return nil, nil
	}

	items, ok := v.([]any)
	if !ok {
		return nil, errs.NewConfigError(field, fmt.Errorf("must be a list"))
	}
	if requireNonEmpty && len(items) == 0 {
		return nil, errs.NewConfigError(field, fmt.Errorf("must be a non-empty list"))
	}

	specs := make([]ComponentSpec, 0, len(items))
	for i, rawItem := range items {
		item := fmt.Sprintf("%s[%d]", field, i)

		m, ok := normalizeMap(rawItem)
		if !ok {
			return nil, errs.NewConfigError(item, fmt.Errorf("must be a mapping"))
		}

		name, ok := m["name"].(string)
		if !ok || name == "" {
			return nil, errs.NewConfigError(item, fmt.Errorf("missing required field %q", "name"))
		}
		typ, ok := m["type"].(string)
		if !ok || typ == "" {
			return nil, errs.NewConfigError(item, fmt.Errorf("missing required field %q", "type"))
		}

		cfgRaw, present := m["config"]
		if !present {
			return nil, errs.NewConfigError(item, fmt.Errorf("missing required field %q", "config"))
		}
		cfg, ok := normalizeMap(cfgRaw)
		if !ok {
			return nil, errs.NewConfigError(item, fmt.Errorf("%q must be a mapping", "config"))
		}

		specs = append(specs, ComponentSpec{Name: name, Type: typ, Config: cfg})
	}
	return specs, nil
}

// normalizeMap accepts both map[string]any (from JSON-ish sources)
// and map[any]any (yaml.v3's default decode target for untyped maps)
// and returns a map[string]any.
func normalizeMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
