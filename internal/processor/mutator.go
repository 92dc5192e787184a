package processor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/model"
)

type gsubRule struct {
	pattern     *regexp.Regexp
	replacement string
}

type splitRule struct {
	separator string
	limit     int
}

// Mutator applies a fixed sequence of field operations: add, remove,
// rename, uppercase, lowercase, type-convert, regex-substitute,
// concatenate, split, strip. Grounded on
// original_source/logflow/processors/mutate.py's MutateProcessor —
// same operation order, same per-operation tolerance for missing
// fields.
type Mutator struct {
	addFields       map[string]any
	removeFields    []string
	renameFields    map[string]string
	uppercaseFields []string
	lowercaseFields []string
	convertFields   map[string]string
	gsubFields      map[string]gsubRule
	mergeFields     map[string][]string
	splitFields     map[string]splitRule
	stripFields     []string
}

func NewMutator() *Mutator { return &Mutator{} }

func (m *Mutator) Configure(cfg map[string]any) error {
	if v, ok := cfg["add_fields"].(map[string]any); ok {
		m.addFields = v
	}
	m.removeFields = toStringSlice(cfg["remove_fields"])
	if v, ok := cfg["rename_fields"].(map[string]any); ok {
		m.renameFields = make(map[string]string, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				m.renameFields[k] = s
			}
		}
	}
	m.uppercaseFields = toStringSlice(cfg["uppercase_fields"])
	m.lowercaseFields = toStringSlice(cfg["lowercase_fields"])
	if v, ok := cfg["convert_fields"].(map[string]any); ok {
		m.convertFields = make(map[string]string, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				m.convertFields[k] = s
			}
		}
	}

	if v, ok := cfg["gsub_fields"].(map[string]any); ok {
		m.gsubFields = make(map[string]gsubRule, len(v))
		for field, raw := range v {
			pair, ok := raw.([]any)
			if !ok || len(pair) != 2 {
				return errs.NewConfigError("processor.mutator", fmt.Errorf("gsub_fields.%s must be [pattern, replacement]", field))
			}
			patternStr, _ := pair[0].(string)
			replacement, _ := pair[1].(string)
			compiled, err := regexp.Compile(patternStr)
			if err != nil {
				return errs.NewConfigError("processor.mutator", fmt.Errorf("gsub_fields.%s: %w", field, err))
			}
			m.gsubFields[field] = gsubRule{pattern: compiled, replacement: replacement}
		}
	}

	if v, ok := cfg["merge_fields"].(map[string]any); ok {
		m.mergeFields = make(map[string][]string, len(v))
		for target, raw := range v {
			m.mergeFields[target] = toStringSlice(raw)
		}
	}

	if v, ok := cfg["split_fields"].(map[string]any); ok {
		m.splitFields = make(map[string]splitRule, len(v))
		for field, raw := range v {
			pair, ok := raw.([]any)
			if !ok || len(pair) != 2 {
				return errs.NewConfigError("processor.mutator", fmt.Errorf("split_fields.%s must be [separator, limit]", field))
			}
			sep, _ := pair[0].(string)
			limit, ok := toInt(pair[1])
			if !ok {
				return errs.NewConfigError("processor.mutator", fmt.Errorf("split_fields.%s[1] must be an integer", field))
			}
			m.splitFields[field] = splitRule{separator: sep, limit: limit}
		}
	}

	m.stripFields = toStringSlice(cfg["strip_fields"])
	return nil
}

func (m *Mutator) Process(event *model.LogEvent) (*model.LogEvent, error) {
	for field, value := range m.addFields {
		event.Fields[field] = value
	}
	for _, field := range m.removeFields {
		delete(event.Fields, field)
	}
	for oldName, newName := range m.renameFields {
		if v, ok := event.Fields[oldName]; ok {
			event.Fields[newName] = v
			delete(event.Fields, oldName)
		}
	}
	for _, field := range m.uppercaseFields {
		if s, ok := event.Fields[field].(string); ok {
			event.Fields[field] = strings.ToUpper(s)
		}
	}
	for _, field := range m.lowercaseFields {
		if s, ok := event.Fields[field].(string); ok {
			event.Fields[field] = strings.ToLower(s)
		}
	}
	for field, targetType := range m.convertFields {
		v, ok := event.Fields[field]
		if !ok {
			continue
		}
		converted, err := convertValue(v, targetType)
		if err != nil {
			event.Metadata["convert_error_"+field] = err.Error()
			continue
		}
		event.Fields[field] = converted
	}
	for field, rule := range m.gsubFields {
		if s, ok := event.Fields[field].(string); ok {
			event.Fields[field] = rule.pattern.ReplaceAllString(s, rule.replacement)
		}
	}
	for target, sources := range m.mergeFields {
		var parts []string
		for _, source := range sources {
			if v, ok := event.Fields[source]; ok {
				parts = append(parts, fmt.Sprintf("%v", v))
			}
		}
		if len(parts) > 0 {
			event.Fields[target] = strings.Join(parts, " ")
		}
	}
	for field, rule := range m.splitFields {
		if s, ok := event.Fields[field].(string); ok {
			event.Fields[field] = splitWithLimit(s, rule.separator, rule.limit)
		}
	}
	for _, field := range m.stripFields {
		if s, ok := event.Fields[field].(string); ok {
			event.Fields[field] = strings.TrimSpace(s)
		}
	}
	return event, nil
}

func (m *Mutator) Release() error { return nil }

func convertValue(value any, targetType string) (any, error) {
	switch targetType {
	case "int":
		return toIntAny(value)
	case "float":
		return toFloatAny(value)
	case "str":
		return fmt.Sprintf("%v", value), nil
	case "bool":
		if s, ok := value.(string); ok {
			lower := strings.ToLower(s)
			return lower == "true" || lower == "yes" || lower == "y" || lower == "1", nil
		}
		b, ok := value.(bool)
		if ok {
			return b, nil
		}
		return nil, fmt.Errorf("cannot convert %v to bool", value)
	case "list":
		if s, ok := value.(string); ok {
			parts := strings.Split(s, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts, nil
		}
		if list, ok := value.([]any); ok {
			return list, nil
		}
		return []any{value}, nil
	case "timestamp":
		return convertTimestamp(value)
	default:
		return nil, fmt.Errorf("unsupported conversion type: %s", targetType)
	}
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

func convertTimestamp(value any) (any, error) {
	switch t := value.(type) {
	case string:
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return nil, fmt.Errorf("could not parse timestamp: %s", t)
	case float64:
		return time.Unix(int64(t), 0).UTC(), nil
	case int:
		return time.Unix(int64(t), 0).UTC(), nil
	default:
		return value, nil
	}
}

func toIntAny(v any) (any, error) {
	switch t := v.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil, err
		}
		return n, nil
	case float64:
		return int(t), nil
	case int:
		return t, nil
	default:
		return nil, fmt.Errorf("cannot convert %v to int", v)
	}
}

func toFloatAny(v any) (any, error) {
	switch t := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	default:
		return nil, fmt.Errorf("cannot convert %v to float", v)
	}
}

func splitWithLimit(s, sep string, limit int) []string {
	if limit <= 0 {
		return strings.Split(s, sep)
	}
	return strings.SplitN(s, sep, limit+1)
}

func toStringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		return n, err == nil
	default:
		return 0, false
	}
}
