package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/logging"
	"github.com/souzomain/logflow/internal/model"
)

// File tails a log file on disk, following truncation and rotation
// (the inode changing under the same path). Grounded on
// original_source/logflow/sources/file.py's FileSource: same
// position/inode bookkeeping, ported from asyncio polling to a
// goroutine driven by an fsnotify watcher with a polling fallback for
// filesystems that don't deliver rename/create events reliably.
type File struct {
	path          string
	tail          bool
	readFromStart bool
	pollInterval  time.Duration

	position int64
	inode    uint64
	drained  bool
}

func NewFile() *File {
	return &File{}
}

func (f *File) Name() string { return f.path }

func (f *File) Configure(cfg map[string]any) error {
	path, _ := cfg["path"].(string)
	if path == "" {
		return errs.NewConfigError("source.file", fmt.Errorf("path is required"))
	}
	f.path = path
	f.tail = true
	if v, ok := cfg["tail"].(bool); ok {
		f.tail = v
	}
	if v, ok := cfg["read_from_start"].(bool); ok {
		f.readFromStart = v
	}
	f.pollInterval = time.Second
	if v, ok := toFloat(cfg["poll_interval"]); ok {
		f.pollInterval = time.Duration(v * float64(time.Second))
	}

	info, err := os.Stat(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.position = 0
			return nil
		}
		return errs.NewConfigError("source.file", err)
	}
	f.inode = inodeOf(info)
	if f.readFromStart {
		f.position = 0
	} else {
		f.position = info.Size()
	}
	return nil
}

func (f *File) Read(ctx context.Context, errCh chan<- error) (<-chan *model.LogEvent, error) {
	out := make(chan *model.LogEvent)

	watcher, watchErr := fsnotify.NewWatcher()
	if watchErr == nil {
		_ = watcher.Add(dirOf(f.path))
	}

	go func() {
		defer close(out)
		if watcher != nil {
			defer watcher.Close()
		}

		ticker := time.NewTicker(f.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.poll(ctx, out, errCh)
				if !f.tail && f.drained {
					return
				}
			case ev, ok := <-watcherEvents(watcher):
				if !ok {
					continue
				}
				if ev.Name == f.path {
					f.poll(ctx, out, errCh)
				}
			}
			if !f.tail && f.drained {
				return
			}
		}
	}()

	return out, nil
}

func watcherEvents(w *fsnotify.Watcher) chan fsnotify.Event {
	if w == nil {
		return nil
	}
	return w.Events
}

func (f *File) poll(ctx context.Context, out chan<- *model.LogEvent, errCh chan<- error) {
	info, err := os.Stat(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			reportSourceErr(errCh, f.Name(), err)
		}
		return
	}

	inode := inodeOf(info)
	if inode != f.inode {
		f.inode = inode
		f.position = 0
	} else if info.Size() < f.position {
		// Same file, but shorter than what was already read: truncated.
		f.position = 0
	}

	if info.Size() <= f.position {
		if !f.tail {
			f.drained = true
		}
		return
	}

	file, err := os.Open(f.path)
	if err != nil {
		reportSourceErr(errCh, f.Name(), err)
		return
	}
	defer file.Close()

	if _, err := file.Seek(f.position, io.SeekStart); err != nil {
		reportSourceErr(errCh, f.Name(), err)
		return
	}

	reader := bufio.NewReader(file)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			f.position += int64(len(line))
			trimmed := strings.TrimRight(line, "\r\n")
			if strings.TrimSpace(trimmed) != "" {
				event := model.New("file", f.path, trimmed)
				event.Metadata["file_path"] = f.path
				event.Metadata["file_position"] = f.position - int64(len(line))
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				f.drained = true
			}
			return
		}
	}
}

func (f *File) Release() error { return nil }

func inodeOf(info os.FileInfo) uint64 {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return stat.Ino
	}
	return 0
}

func dirOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "."
	}
	return path[:i]
}

func reportSourceErr(errCh chan<- error, name string, err error) {
	logging.GetLogger("source.file").Warn("read error", logging.Fields{"source": name, "error": err.Error()})
	if errCh == nil {
		return
	}
	wrapped := &errs.SourceFailure{Source: name, Err: err}
	select {
	case errCh <- wrapped:
	default:
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
