package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/logging"
	"github.com/souzomain/logflow/internal/model"
)

// EventStream reads JSON-lines structured events (the shape Winlogbeat
// emits for Windows Event Log data) from a file, a directory of
// rotated files, or a TCP listener. Grounded on
// original_source/logflow/sources/winlog.py's WinlogSource: same
// three submodes and the same channel/level/event_id/provider filter
// set, ported from asyncio streams to goroutines and net.Listener.
type EventStream struct {
	mode     string // file, directory, tcp
	path     string
	channels []string
	level    int
	hasLevel bool
	eventIDs []int
	providers []string
	pollEvery time.Duration
	tail      bool
	host      string
	port      int

	processedFiles map[string]bool
	log            *logging.Logger
}

func NewEventStream() *EventStream {
	return &EventStream{
		processedFiles: make(map[string]bool),
		log:            logging.GetLogger("source.eventstream"),
	}
}

func (e *EventStream) Name() string { return fmt.Sprintf("eventstream(%s)", e.mode) }

func (e *EventStream) Configure(cfg map[string]any) error {
	e.mode = "file"
	if v, ok := cfg["mode"].(string); ok && v != "" {
		e.mode = v
	}
	if e.mode != "file" && e.mode != "directory" && e.mode != "tcp" {
		return errs.NewConfigError("source.eventstream", fmt.Errorf("invalid mode %q", e.mode))
	}

	e.path, _ = cfg["path"].(string)
	if (e.mode == "file" || e.mode == "directory") && e.path == "" {
		return errs.NewConfigError("source.eventstream", fmt.Errorf("path is required for mode %q", e.mode))
	}

	e.channels = []string{"Application", "System", "Security"}
	if v, ok := stringSlice(cfg["channels"]); ok {
		e.channels = v
	}
	if v, ok := toFloat(cfg["level"]); ok {
		e.level = int(v)
		e.hasLevel = true
	}
	if v, ok := cfg["event_ids"].([]any); ok {
		for _, item := range v {
			if f, ok := toFloat(item); ok {
				e.eventIDs = append(e.eventIDs, int(f))
			}
		}
	}
	if v, ok := stringSlice(cfg["providers"]); ok {
		e.providers = v
	}
	e.pollEvery = 10 * time.Second
	if v, ok := toFloat(cfg["poll_interval"]); ok {
		e.pollEvery = time.Duration(v * float64(time.Second))
	}
	e.tail = true
	if v, ok := cfg["tail"].(bool); ok {
		e.tail = v
	}
	e.host = "0.0.0.0"
	if v, ok := cfg["host"].(string); ok && v != "" {
		e.host = v
	}
	e.port = 5044
	if v, ok := toFloat(cfg["port"]); ok {
		e.port = int(v)
	}

	switch e.mode {
	case "file":
		if _, err := os.Stat(e.path); err != nil {
			return errs.NewConfigError("source.eventstream", fmt.Errorf("file not found: %s", e.path))
		}
	case "directory":
		info, err := os.Stat(e.path)
		if err != nil || !info.IsDir() {
			return errs.NewConfigError("source.eventstream", fmt.Errorf("directory not found: %s", e.path))
		}
	}
	if e.hasLevel && (e.level < 1 || e.level > 5) {
		return errs.NewConfigError("source.eventstream", fmt.Errorf("level must be between 1 and 5"))
	}
	return nil
}

func (e *EventStream) Read(ctx context.Context, errCh chan<- error) (<-chan *model.LogEvent, error) {
	out := make(chan *model.LogEvent)

	go func() {
		defer close(out)
		switch e.mode {
		case "file":
			e.readFile(ctx, e.path, out, errCh)
		case "directory":
			e.scanDirectory(ctx, out, errCh)
		case "tcp":
			e.serveTCP(ctx, out, errCh)
		}
	}()

	return out, nil
}

func (e *EventStream) readFile(ctx context.Context, path string, out chan<- *model.LogEvent, errCh chan<- error) {
	f, err := os.Open(path)
	if err != nil {
		reportSourceErr(errCh, e.Name(), err)
		return
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			e.emitLine(ctx, path, line, out)
		}
		if err != nil {
			if !e.tail {
				return
			}
			select {
			case <-time.After(e.pollEvery):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (e *EventStream) scanDirectory(ctx context.Context, out chan<- *model.LogEvent, errCh chan<- error) {
	ticker := time.NewTicker(e.pollEvery)
	defer ticker.Stop()

	scan := func() {
		entries, err := os.ReadDir(e.path)
		if err != nil {
			reportSourceErr(errCh, e.Name(), err)
			return
		}
		type fileInfo struct {
			path string
			mod  time.Time
		}
		var files []fileInfo
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			files = append(files, fileInfo{filepath.Join(e.path, entry.Name()), info.ModTime()})
		}
		sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })

		for _, fi := range files {
			if e.processedFiles[fi.path] {
				continue
			}
			tailSaved := e.tail
			e.tail = false
			e.readFile(ctx, fi.path, out, errCh)
			e.tail = tailSaved
			e.processedFiles[fi.path] = true
		}
	}

	scan()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scan()
		}
	}
}

func (e *EventStream) serveTCP(ctx context.Context, out chan<- *model.LogEvent, errCh chan<- error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", e.host, e.port))
	if err != nil {
		reportSourceErr(errCh, e.Name(), err)
		return
	}
	defer listener.Close()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		go e.handleConn(ctx, conn, out)
	}
}

func (e *EventStream) handleConn(ctx context.Context, conn net.Conn, out chan<- *model.LogEvent) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e.emitLine(ctx, conn.RemoteAddr().String(), scanner.Text(), out)
	}
}

func (e *EventStream) emitLine(ctx context.Context, sourceName, line string, out chan<- *model.LogEvent) {
	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return
	}
	winlog, ok := data["winlog"].(map[string]any)
	if !ok {
		return
	}
	if !e.passesFilters(winlog) {
		return
	}

	event := model.New("eventstream", sourceName, line)
	for k, v := range data {
		event.Fields[k] = v
	}
	for _, key := range []string{"event_id", "level", "provider", "computer_name", "channel", "record_id", "message"} {
		if v, ok := winlog[key]; ok {
			event.Fields[key] = v
		}
	}
	event.Metadata["channel"], _ = winlog["channel"].(string)

	select {
	case out <- event:
	case <-ctx.Done():
	}
}

func (e *EventStream) passesFilters(winlog map[string]any) bool {
	if len(e.channels) > 0 {
		channel, _ := winlog["channel"].(string)
		if !contains(e.channels, channel) {
			return false
		}
	}
	if e.hasLevel {
		level, ok := toFloat(winlog["level"])
		if !ok || int(level) < e.level {
			return false
		}
	}
	if len(e.eventIDs) > 0 {
		id, ok := toFloat(winlog["event_id"])
		if !ok || !containsInt(e.eventIDs, int(id)) {
			return false
		}
	}
	if len(e.providers) > 0 {
		provider, _ := winlog["provider"].(string)
		if !contains(e.providers, provider) {
			return false
		}
	}
	return true
}

func (e *EventStream) Release() error { return nil }

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
