package processor

import (
	"encoding/json"
	"fmt"

	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/model"
)

// Structured parses JSON out of a field and stores the result.
// Grounded on original_source/logflow/processors/json.py's
// JsonProcessor.
type Structured struct {
	field             string
	targetField       string
	preserveOriginal  bool
	ignoreErrors      bool
}

func NewStructured() *Structured { return &Structured{} }

func (s *Structured) Configure(cfg map[string]any) error {
	s.field = "raw_data"
	if v, ok := cfg["field"].(string); ok && v != "" {
		s.field = v
	}
	s.targetField = "parsed"
	if v, ok := cfg["target_field"].(string); ok {
		s.targetField = v
	}
	s.preserveOriginal = true
	if v, ok := cfg["preserve_original"].(bool); ok {
		s.preserveOriginal = v
	}
	if v, ok := cfg["ignore_errors"].(bool); ok {
		s.ignoreErrors = v
	}
	return nil
}

func (s *Structured) Process(event *model.LogEvent) (*model.LogEvent, error) {
	value := s.fieldValue(event)
	if value == "" {
		return event, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		if s.ignoreErrors {
			event.Metadata["json_error"] = err.Error()
			return event, nil
		}
		return nil, &errs.ProcessError{Processor: "structured", Err: fmt.Errorf("parse %q: %w", s.field, err)}
	}

	if s.targetField != "" {
		event.Fields[s.targetField] = parsed
	} else if obj, ok := parsed.(map[string]any); ok {
		for k, v := range obj {
			event.Fields[k] = v
		}
	}

	if !s.preserveOriginal && s.field != "raw_data" {
		delete(event.Fields, s.field)
	}
	return event, nil
}

func (s *Structured) fieldValue(event *model.LogEvent) string {
	if s.field == "raw_data" {
		return event.RawData
	}
	v, ok := event.Fields[s.field]
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

func (s *Structured) Release() error { return nil }
