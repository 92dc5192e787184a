package filterlang

import "fmt"

// Mode selects how a set of conditions combines.
type Mode string

const (
	ModeAny Mode = "any"
	ModeAll Mode = "all"
)

// Combine builds the Any/All combinator named by mode over
// conditions, optionally wrapped in Not.
func Combine(mode Mode, conditions []Condition, negate bool) (Condition, error) {
	var combinator Condition
	switch mode {
	case ModeAny, "":
		combinator = &Any{Conditions: conditions}
	case ModeAll:
		combinator = &All{Conditions: conditions}
	default:
		return nil, fmt.Errorf("unknown filter mode %q", mode)
	}
	if negate {
		return &Not{Condition: combinator}, nil
	}
	return combinator, nil
}
