package workflow

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StopWatcher monitors a stop file and flips to stopped when the file
// appears. The orchestrator polls it between iterations so a run can be
// interrupted without killing the process.
type StopWatcher struct {
	path string

	mu      sync.RWMutex
	stopped bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStopWatcher watches for the given stop file. The watcher observes
// the file's parent directory so it catches the file being created after
// the run starts. When fsnotify is unavailable the watcher degrades to
// stat-based polling in ShouldStop.
func NewStopWatcher(path string) (*StopWatcher, error) {
	if path == "" {
		return nil, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	sw := &StopWatcher{
		path: path,
		done: make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Polling fallback only
		return sw, nil
	}
	sw.watcher = watcher

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		sw.watcher = nil
		return sw, nil
	}

	go sw.watch()

	return sw, nil
}

func (sw *StopWatcher) watch() {
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(sw.path) {
				continue
			}
			if event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0 {
				sw.mu.Lock()
				sw.stopped = true
				sw.mu.Unlock()
			}
		case <-sw.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

// ShouldStop returns true once the stop file exists. A nil watcher never
// stops.
func (sw *StopWatcher) ShouldStop() bool {
	if sw == nil {
		return false
	}

	// Also stat directly in case the watcher missed the event
	if _, err := os.Stat(sw.path); err == nil {
		sw.mu.Lock()
		sw.stopped = true
		sw.mu.Unlock()
	}

	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.stopped
}

// Signal creates the stop file so a watching run winds down.
func (sw *StopWatcher) Signal() error {
	if sw == nil {
		return nil
	}
	return os.WriteFile(sw.path, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// Clear removes the stop file and resets the watcher state.
func (sw *StopWatcher) Clear() {
	if sw == nil {
		return
	}
	sw.mu.Lock()
	sw.stopped = false
	sw.mu.Unlock()
	os.Remove(sw.path)
}

// Close shuts the watcher down.
func (sw *StopWatcher) Close() {
	if sw == nil {
		return
	}
	close(sw.done)
	if sw.watcher != nil {
		sw.watcher.Close()
	}
}
