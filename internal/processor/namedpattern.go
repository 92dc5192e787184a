package processor

import (
	"fmt"

	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/grok"
	"github.com/souzomain/logflow/internal/model"
)

// NamedPattern extracts fields using the %{NAME}/%{NAME:field}
// template language implemented by internal/grok. spec §4.4 calls for
// "first match wins" when multiple patterns are configured
// (break_on_match semantics).
type NamedPattern struct {
	field            string
	patterns         []string
	library          *grok.Library
	targetField      string
	preserveOriginal bool
	ignoreErrors     bool
	breakOnMatch     bool
}

func NewNamedPattern() *NamedPattern {
	return &NamedPattern{library: grok.NewLibrary()}
}

func (n *NamedPattern) Configure(cfg map[string]any) error {
	n.field = "raw_data"
	if v, ok := cfg["field"].(string); ok && v != "" {
		n.field = v
	}

	if list, ok := cfg["patterns"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				n.patterns = append(n.patterns, s)
			}
		}
	}
	if single, ok := cfg["pattern"].(string); ok && single != "" {
		n.patterns = append(n.patterns, single)
	}
	if len(n.patterns) == 0 {
		return errs.NewConfigError("processor.namedpattern", fmt.Errorf("at least one pattern is required"))
	}

	if custom, ok := cfg["custom_patterns"].(map[string]any); ok {
		for name, fragment := range custom {
			if s, ok := fragment.(string); ok {
				n.library.Register(name, s)
			}
		}
	}

	n.targetField, _ = cfg["target_field"].(string)
	n.preserveOriginal = true
	if v, ok := cfg["preserve_original"].(bool); ok {
		n.preserveOriginal = v
	}
	if v, ok := cfg["ignore_errors"].(bool); ok {
		n.ignoreErrors = v
	}
	n.breakOnMatch = true
	if v, ok := cfg["break_on_match"].(bool); ok {
		n.breakOnMatch = v
	}

	// Validate every pattern compiles up front, so a typo is a
	// configure-time ConfigError rather than a silent per-event
	// no-match.
	for _, p := range n.patterns {
		if _, err := n.library.Compile(p); err != nil {
			return errs.NewConfigError("processor.namedpattern", err)
		}
	}
	return nil
}

func (n *NamedPattern) Process(event *model.LogEvent) (*model.LogEvent, error) {
	value := n.fieldValue(event)
	if value == "" {
		return event, nil
	}

	for _, pattern := range n.patterns {
		fields, ok, err := n.library.Match(pattern, value)
		if err != nil {
			if n.ignoreErrors {
				event.Metadata["grok_error"] = err.Error()
				continue
			}
			return nil, &errs.ProcessError{Processor: "namedpattern", Err: err}
		}
		if !ok {
			continue
		}

		if n.targetField != "" {
			extracted := make(map[string]any, len(fields))
			for k, v := range fields {
				extracted[k] = v
			}
			event.Fields[n.targetField] = extracted
		} else {
			for k, v := range fields {
				event.Fields[k] = v
			}
		}

		if !n.preserveOriginal && n.field != "raw_data" {
			delete(event.Fields, n.field)
		}
		if n.breakOnMatch {
			return event, nil
		}
	}
	return event, nil
}

func (n *NamedPattern) fieldValue(event *model.LogEvent) string {
	if n.field == "raw_data" {
		return event.RawData
	}
	v, ok := event.Fields[n.field]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (n *NamedPattern) Release() error { return nil }
