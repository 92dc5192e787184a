package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/model"
)

// File writes events as JSON-lines or templated text to a local file,
// flushing after every batch. Grounded on
// original_source/logflow/sinks/file.py's FileSink.
type File struct {
	path         string
	format       string // json, text
	append       bool
	template     string
	messageField string

	mu   sync.Mutex
	file *os.File
}

func NewFile() *File { return &File{} }

var templateFieldRe = regexp.MustCompile(`\{(\w+)\}`)

func (f *File) Configure(cfg map[string]any) error {
	f.path, _ = cfg["path"].(string)
	if f.path == "" {
		return errs.NewConfigError("sink.file", fmt.Errorf("path is required"))
	}
	f.format = "json"
	if v, ok := cfg["format"].(string); ok && v != "" {
		f.format = v
	}
	if f.format != "json" && f.format != "text" {
		return errs.NewConfigError("sink.file", fmt.Errorf("invalid format: %s", f.format))
	}
	f.append = true
	if v, ok := cfg["append"].(bool); ok {
		f.append = v
	}
	f.template = "{timestamp} {message}"
	if v, ok := cfg["template"].(string); ok && v != "" {
		f.template = v
	}
	f.messageField = "message"
	if v, ok := cfg["message_field"].(string); ok && v != "" {
		f.messageField = v
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.NewConfigError("sink.file", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if f.append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	handle, err := os.OpenFile(f.path, flags, 0o644)
	if err != nil {
		return errs.NewConfigError("sink.file", err)
	}
	f.file = handle
	return nil
}

func (f *File) Write(batch []*model.LogEvent) error {
	if len(batch) == 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, event := range batch {
		var line string
		if f.format == "json" {
			encoded, err := json.Marshal(event.ToMap())
			if err != nil {
				return &errs.SinkFailure{Sink: "file", Err: err}
			}
			line = string(encoded) + "\n"
		} else {
			line = f.renderTemplate(event) + "\n"
		}
		if _, err := f.file.WriteString(line); err != nil {
			return &errs.SinkFailure{Sink: "file", Err: err}
		}
	}
	if err := f.file.Sync(); err != nil {
		return &errs.SinkFailure{Sink: "file", Err: err}
	}
	return nil
}

func (f *File) renderTemplate(event *model.LogEvent) string {
	context := map[string]any{
		"id":          event.ID,
		"timestamp":   event.Timestamp.Format(isoTimestampNoZone),
		"source_type": event.SourceType,
		"source_name": event.SourceName,
		"raw_data":    event.RawData,
	}
	for k, v := range event.Fields {
		context[k] = v
	}
	if msg, ok := event.Fields[f.messageField]; ok {
		context["message"] = msg
	} else {
		context["message"] = event.RawData
	}

	missing := false
	rendered := templateFieldRe.ReplaceAllStringFunc(f.template, func(token string) string {
		name := token[1 : len(token)-1]
		v, ok := context[name]
		if !ok {
			missing = true
			return token
		}
		return fmt.Sprintf("%v", v)
	})
	if missing {
		return fmt.Sprintf("%s %s", event.Timestamp.Format(isoTimestampNoZone), event.RawData)
	}
	return rendered
}

func (f *File) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
