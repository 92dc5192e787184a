// Package model defines the LogEvent carried end-to-end through every
// pipeline stage.
package model

import (
	"time"

	"github.com/google/uuid"
)

// LogEvent is the uniform record flowing from a source, through a
// processor chain, into one or more sinks. An event is exclusively
// owned by whichever stage currently holds it: no stage retains a
// reference after handing the event onward.
type LogEvent struct {
	ID         string
	Timestamp  time.Time
	SourceType string
	SourceName string
	RawData    string
	Fields     map[string]any
	Metadata   map[string]any

	tags    []string
	tagSeen map[string]struct{}
}

// New builds a LogEvent with a freshly generated ID and the current
// UTC instant as its timestamp. Sources call this and then overwrite
// Timestamp with the value they actually observed, if any.
func New(sourceType, sourceName, rawData string) *LogEvent {
	return &LogEvent{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		SourceType: sourceType,
		SourceName: sourceName,
		RawData:    rawData,
		Fields:     make(map[string]any),
		Metadata:   make(map[string]any),
	}
}

// AddTag appends tag to the event's tag set, deduplicating on insert
// and preserving insertion order.
func (e *LogEvent) AddTag(tag string) {
	if e.tagSeen == nil {
		e.tagSeen = make(map[string]struct{})
	}
	if _, ok := e.tagSeen[tag]; ok {
		return
	}
	e.tagSeen[tag] = struct{}{}
	e.tags = append(e.tags, tag)
}

// Tags returns the event's tags in insertion order. The returned
// slice must not be mutated by the caller.
func (e *LogEvent) Tags() []string {
	return e.tags
}

// HasTag reports whether tag is present on the event.
func (e *LogEvent) HasTag(tag string) bool {
	_, ok := e.tagSeen[tag]
	return ok
}

// Clone produces a deep-enough copy safe to hand to a second sink
// without aliasing Fields/Metadata/tags mutations across sinks.
func (e *LogEvent) Clone() *LogEvent {
	clone := &LogEvent{
		ID:         e.ID,
		Timestamp:  e.Timestamp,
		SourceType: e.SourceType,
		SourceName: e.SourceName,
		RawData:    e.RawData,
		Fields:     deepCopyMap(e.Fields),
		Metadata:   deepCopyMap(e.Metadata),
	}
	if len(e.tags) > 0 {
		clone.tags = append([]string(nil), e.tags...)
		clone.tagSeen = make(map[string]struct{}, len(e.tags))
		for _, t := range e.tags {
			clone.tagSeen[t] = struct{}{}
		}
	}
	return clone
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(nested)
		} else {
			out[k] = v
		}
	}
	return out
}

// ToMap renders the event as a plain map, suitable for JSON encoding
// or for the round-trip law exercised in tests.
func (e *LogEvent) ToMap() map[string]any {
	return map[string]any{
		"id":          e.ID,
		"timestamp":   e.Timestamp.Format(time.RFC3339Nano),
		"source_type": e.SourceType,
		"source_name": e.SourceName,
		"raw_data":    e.RawData,
		"fields":      deepCopyMap(e.Fields),
		"metadata":    deepCopyMap(e.Metadata),
		"tags":        append([]string(nil), e.tags...),
	}
}

// FromMap reconstructs a LogEvent from the representation produced by
// ToMap. Unknown keys are ignored.
func FromMap(m map[string]any) *LogEvent {
	e := &LogEvent{
		Fields:   make(map[string]any),
		Metadata: make(map[string]any),
	}
	if v, ok := m["id"].(string); ok {
		e.ID = v
	}
	if v, ok := m["timestamp"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			e.Timestamp = t
		}
	}
	if v, ok := m["source_type"].(string); ok {
		e.SourceType = v
	}
	if v, ok := m["source_name"].(string); ok {
		e.SourceName = v
	}
	if v, ok := m["raw_data"].(string); ok {
		e.RawData = v
	}
	if v, ok := m["fields"].(map[string]any); ok {
		e.Fields = deepCopyMap(v)
	}
	if v, ok := m["metadata"].(map[string]any); ok {
		e.Metadata = deepCopyMap(v)
	}
	if v, ok := m["tags"].([]string); ok {
		for _, t := range v {
			e.AddTag(t)
		}
	}
	return e
}
