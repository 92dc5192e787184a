// Package grok implements the named-pattern extractor engine of spec
// §4.4: a library of named regex fragments referenced with %{NAME} or
// %{NAME:field} and recursively expanded into a single compiled
// regular expression with named capture groups.
package grok

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var tokenRe = regexp.MustCompile(`%\{(\w+)(?::([\w.\-@]+))?\}`)

// Library holds named pattern fragments: the ~60 built-ins plus any
// caller-registered overrides. Overrides shadow a built-in of the
// same name rather than erroring, so a pipeline config can redefine
// e.g. %{MONTH} for a non-English log source.
type Library struct {
	mu      sync.RWMutex
	custom  map[string]string
	cache   map[string]string // name -> fully expanded fragment (no field wrappers)
}

// NewLibrary returns a Library seeded with the built-in pattern set.
func NewLibrary() *Library {
	return &Library{
		custom: make(map[string]string),
		cache:  make(map[string]string),
	}
}

// Register adds or overrides a named pattern fragment. Registering a
// name invalidates any cached expansion for it (and, conservatively,
// the whole cache, since other fragments may already have inlined the
// old definition).
func (l *Library) Register(name, fragment string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.custom[name] = fragment
	l.cache = make(map[string]string)
}

func (l *Library) lookup(name string) (string, bool) {
	if f, ok := l.custom[name]; ok {
		return f, true
	}
	f, ok := builtinPatterns[name]
	return f, ok
}

// Compile expands template's %{NAME}/%{NAME:field} tokens into a
// single Go regular expression (named tokens become named capture
// groups) and compiles it.
func (l *Library) Compile(template string) (*regexp.Regexp, error) {
	expanded, err := l.expand(template, map[string]bool{})
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(expanded)
	if err != nil {
		return nil, fmt.Errorf("grok: compiled pattern invalid: %w", err)
	}
	return re, nil
}

// expand replaces every %{NAME} / %{NAME:field} token in text. visiting
// tracks the chain of pattern names currently being expanded, so a
// pattern that (directly or transitively) references itself is
// reported as a cycle instead of recursing forever.
func (l *Library) expand(text string, visiting map[string]bool) (string, error) {
	matches := tokenRe.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text, nil
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		sb.WriteString(text[last:start])

		name := text[m[2]:m[3]]
		field := ""
		if m[4] != -1 {
			field = text[m[4]:m[5]]
		}

		expandedFragment, err := l.expandNamed(name, visiting)
		if err != nil {
			return "", err
		}

		if field != "" {
			sb.WriteString("(?P<" + field + ">" + expandedFragment + ")")
		} else {
			sb.WriteString("(?:" + expandedFragment + ")")
		}
		last = end
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}

// expandNamed resolves a single pattern name to its fully expanded
// fragment, consulting and populating the memoization cache.
func (l *Library) expandNamed(name string, visiting map[string]bool) (string, error) {
	l.mu.RLock()
	if cached, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	if visiting[name] {
		return "", fmt.Errorf("grok: pattern cycle detected at %q", name)
	}

	l.mu.RLock()
	fragment, ok := l.lookup(name)
	l.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("grok: unknown named pattern %q", name)
	}

	visiting[name] = true
	expanded, err := l.expand(fragment, visiting)
	delete(visiting, name)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	l.cache[name] = expanded
	l.mu.Unlock()
	return expanded, nil
}

// Match expands and compiles pattern, runs it against line, and
// returns the named captures (empty captures from optional groups
// that didn't participate are omitted). ok is false when the pattern
// does not match line at all.
func (l *Library) Match(pattern, line string) (fields map[string]string, ok bool, err error) {
	re, err := l.Compile(pattern)
	if err != nil {
		return nil, false, err
	}
	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil, false, nil
	}
	fields = make(map[string]string)
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		if m[i] != "" {
			fields[name] = m[i]
		}
	}
	return fields, true, nil
}
