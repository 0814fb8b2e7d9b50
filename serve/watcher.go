package serve

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Paranoid-AF/codelet"
)

// reloadDebounce is how long the watcher waits for more changes before
// reloading. Editors often write a file in several steps.
const reloadDebounce = 200 * time.Millisecond

// configWatcher calls onChange when a watched file in dir is written,
// created, removed or renamed. Bursts of events are collapsed.
type configWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	onChange func()

	mu       sync.Mutex
	timer    *time.Timer
	done     chan struct{}
	stopOnce sync.Once
}

func newConfigWatcher(dir string, files []string, debounce time.Duration, onChange func()) (*configWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// The directory is watched rather than the files so atomic saves
	// (write to temp, rename over) are seen.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &configWatcher{
		watcher:  watcher,
		files:    make(map[string]bool, len(files)),
		debounce: debounce,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, f := range files {
		w.files[f] = true
	}
	go w.processEvents()
	return w, nil
}

func (w *configWatcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Base(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("config file changed", "path", event.Name, "op", event.Op.String())
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "error", err)
		}
	}
}

func (w *configWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
		default:
			w.onChange()
		}
	})
}

// Stop stops watching. Pending reloads are dropped.
func (w *configWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
}

// WatchConfig reloads the engine whenever config.json or prompt.md in the
// config directory changes. The directory must exist.
func (s *Server) WatchConfig() error {
	dir := codelet.ConfigDir()
	w, err := newConfigWatcher(dir, []string{
		filepath.Base(codelet.ConfigPath()),
		filepath.Base(codelet.PromptPath()),
	}, reloadDebounce, s.reloadEngine)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		w.Stop()
		return nil
	}
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.watcher = w
	slog.Info("watching config", "dir", dir)
	return nil
}
