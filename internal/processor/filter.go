package processor

import (
	"fmt"

	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/filterlang"
	"github.com/souzomain/logflow/internal/model"
)

// Filter drops events that fail a combination of filterlang
// conditions. Grounded on
// original_source/logflow/processors/filter.py's FilterProcessor; the
// condition grammar itself lives in internal/filterlang per spec §9's
// recommendation to use a typed AST instead of a closure per
// condition.
type Filter struct {
	condition filterlang.Condition
	negate    bool
}

func NewFilter() *Filter { return &Filter{} }

func (f *Filter) Configure(cfg map[string]any) error {
	var raw []string
	if list, ok := cfg["conditions"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	if single, ok := cfg["condition"].(string); ok && single != "" {
		raw = append(raw, single)
	}
	if len(raw) == 0 {
		return errs.NewConfigError("processor.filter", fmt.Errorf("at least one condition is required"))
	}

	conditions, err := filterlang.ParseAll(raw)
	if err != nil {
		return errs.NewConfigError("processor.filter", err)
	}

	mode := filterlang.ModeAny
	if v, ok := cfg["mode"].(string); ok && v != "" {
		mode = filterlang.Mode(v)
	}
	if v, ok := cfg["negate"].(bool); ok {
		f.negate = v
	}

	combined, err := filterlang.Combine(mode, conditions, f.negate)
	if err != nil {
		return errs.NewConfigError("processor.filter", err)
	}
	f.condition = combined
	return nil
}

func (f *Filter) Process(event *model.LogEvent) (*model.LogEvent, error) {
	if f.condition.Evaluate(event.Fields) {
		return event, nil
	}
	return nil, nil
}

func (f *Filter) Release() error { return nil }
