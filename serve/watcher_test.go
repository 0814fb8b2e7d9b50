package serve

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Paranoid-AF/codelet"
)

// waitFor polls cond until it holds or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestConfigWatcherCollapsesWrites(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int64
	w, err := newConfigWatcher(dir, []string{"config.json"}, 50*time.Millisecond, func() { calls.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "config.json")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"version": 1}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if !waitFor(t, 2*time.Second, func() bool { return calls.Load() > 0 }) {
		t.Fatal("expected a reload after config.json changed")
	}
	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected burst to collapse into 1 reload, got %d", got)
	}
}

func TestConfigWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int64
	w, err := newConfigWatcher(dir, []string{"config.json"}, 10*time.Millisecond, func() { calls.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("expected no reload for unrelated files, got %d", got)
	}
}

func TestConfigWatcherMissingDir(t *testing.T) {
	_, err := newConfigWatcher(filepath.Join(t.TempDir(), "missing"), []string{"config.json"}, time.Millisecond, func() {})
	if err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestWatchConfigReloadsEngine(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CODELET_CONFIG_DIR", dir)
	srv, built := newReloadServer(t, &stubCompleter{resp: &codelet.Response{}})

	if err := srv.WatchConfig(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prompt.md"), []byte("Complete {{.Code}}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 3*time.Second, func() bool { return built.Load() > 0 }) {
		t.Error("expected the engine to reload after prompt.md changed")
	}
}
