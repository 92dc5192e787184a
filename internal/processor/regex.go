package processor

import (
	"fmt"
	"regexp"

	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/model"
)

// Regex extracts fields from a log event using a compiled regular
// expression, either via named capture groups or a positional
// group_names list. Grounded on
// original_source/logflow/processors/regex.py's RegexProcessor.
type Regex struct {
	field            string
	pattern          *regexp.Regexp
	namedGroups      bool
	groupNames       []string
	targetField      string
	preserveOriginal bool
	ignoreErrors     bool
}

func NewRegex() *Regex { return &Regex{} }

func (r *Regex) Configure(cfg map[string]any) error {
	r.field = "raw_data"
	if v, ok := cfg["field"].(string); ok && v != "" {
		r.field = v
	}
	patternStr, _ := cfg["pattern"].(string)
	if patternStr == "" {
		return errs.NewConfigError("processor.regex", fmt.Errorf("pattern is required"))
	}
	compiled, err := regexp.Compile(patternStr)
	if err != nil {
		return errs.NewConfigError("processor.regex", fmt.Errorf("invalid pattern: %w", err))
	}
	r.pattern = compiled

	r.namedGroups = true
	if v, ok := cfg["named_groups"].(bool); ok {
		r.namedGroups = v
	}
	if list, ok := cfg["group_names"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				r.groupNames = append(r.groupNames, s)
			}
		}
	}
	r.targetField, _ = cfg["target_field"].(string)
	r.preserveOriginal = true
	if v, ok := cfg["preserve_original"].(bool); ok {
		r.preserveOriginal = v
	}
	if v, ok := cfg["ignore_errors"].(bool); ok {
		r.ignoreErrors = v
	}
	return nil
}

func (r *Regex) Process(event *model.LogEvent) (*model.LogEvent, error) {
	value := r.fieldValue(event)
	if value == "" {
		return event, nil
	}

	match := r.pattern.FindStringSubmatch(value)
	if match == nil {
		return event, nil
	}

	extracted := make(map[string]any)
	if r.namedGroups {
		for i, name := range r.pattern.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			if match[i] != "" {
				extracted[name] = match[i]
			}
		}
	} else {
		for i, value := range match[1:] {
			if value == "" {
				continue
			}
			name := fmt.Sprintf("group%d", i+1)
			if i < len(r.groupNames) {
				name = r.groupNames[i]
			}
			extracted[name] = value
		}
	}

	if r.targetField != "" {
		event.Fields[r.targetField] = extracted
	} else {
		for k, v := range extracted {
			event.Fields[k] = v
		}
	}

	if !r.preserveOriginal && r.field != "raw_data" {
		delete(event.Fields, r.field)
	}
	return event, nil
}

func (r *Regex) fieldValue(event *model.LogEvent) string {
	if r.field == "raw_data" {
		return event.RawData
	}
	v, ok := event.Fields[r.field]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (r *Regex) Release() error { return nil }
