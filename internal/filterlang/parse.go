package filterlang

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reIn     = regexp.MustCompile(`^(\S+)\s+in\s*\[(.*)\]$`)
	reNotIn  = regexp.MustCompile(`^(\S+)\s+not\s+in\s*\[(.*)\]$`)
	reRegex  = regexp.MustCompile(`^(\S+)\s*(=~|!~)\s*(.+)$`)
	// Ordered longest-operator-first so ">=" and "<=" aren't cut short to ">" and "<".
	reCompare = regexp.MustCompile(`^(\S+)\s*(==|!=|>=|<=|>|<)\s*(.+)$`)
)

// Parse compiles a single filter condition expression (spec §4.3's
// grammar) into a Condition.
func Parse(expr string) (Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty condition")
	}

	if name, ok := cutPrefix(expr, "exists:"); ok {
		return &Exists{Name: strings.TrimSpace(name)}, nil
	}
	if name, ok := cutPrefix(expr, "missing:"); ok {
		return &Missing{Name: strings.TrimSpace(name)}, nil
	}

	if m := reNotIn.FindStringSubmatch(expr); m != nil {
		return &Member{Name: m[1], Values: parseList(m[2]), Negate: true}, nil
	}
	if m := reIn.FindStringSubmatch(expr); m != nil {
		return &Member{Name: m[1], Values: parseList(m[2])}, nil
	}

	if m := reRegex.FindStringSubmatch(expr); m != nil {
		pattern, err := regexp.Compile(unquote(strings.TrimSpace(m[3])))
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", m[3], err)
		}
		return &Regex{Name: m[1], Pattern: pattern, Negate: m[2] == "!~"}, nil
	}

	if m := reCompare.FindStringSubmatch(expr); m != nil {
		name, op, rawValue := m[1], m[2], strings.TrimSpace(m[3])
		switch op {
		case "==":
			return &Equals{Name: name, Value: unquote(rawValue)}, nil
		case "!=":
			return &Equals{Name: name, Value: unquote(rawValue), Negate: true}, nil
		case "<", "<=", ">", ">=":
			f, err := strconv.ParseFloat(unquote(rawValue), 64)
			if err != nil {
				return nil, fmt.Errorf("comparison value %q is not numeric: %w", rawValue, err)
			}
			return &Compare{Name: name, Op: CompareOp(op), Value: f}, nil
		}
	}

	return nil, fmt.Errorf("unrecognized filter condition: %q", expr)
}

// ParseAll compiles every expression in exprs, stopping at the first
// error.
func ParseAll(exprs []string) ([]Condition, error) {
	conditions := make([]Condition, 0, len(exprs))
	for i, expr := range exprs {
		c, err := Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		conditions = append(conditions, c)
	}
	return conditions, nil
}

func cutPrefix(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, unquote(p))
	}
	return out
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
