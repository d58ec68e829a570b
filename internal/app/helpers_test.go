package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cesargomez89/synqed/internal/config"
	"github.com/cesargomez89/synqed/internal/constants"
	"github.com/cesargomez89/synqed/internal/domain"
	"github.com/cesargomez89/synqed/internal/store"
)

func setupTestDB(t *testing.T) (*store.DB, func()) {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test_app.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	cleanup := func() {
		db.Close()
	}
	return db, cleanup
}

func setupSettings(t *testing.T, db *store.DB) *Settings {
	t.Helper()
	cfg := &config.Config{
		LibraryPath:  t.TempDir(),
		AudioFormat:  "mp3",
		AudioQuality: "320k",
		YtDlpVersion: "2026.01.01",
	}
	return NewSettings(store.NewSettingsRepo(db), cfg)
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Publish(ev domain.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *recordingSink) library() []domain.LibraryPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.LibraryPayload
	for _, ev := range s.events {
		if ev.Name == domain.EventLibraryUpdated {
			out = append(out, ev.Payload.(domain.LibraryPayload))
		}
	}
	return out
}

type wakeCounter struct {
	mu sync.Mutex
	n  int
}

func (w *wakeCounter) Wake() {
	w.mu.Lock()
	w.n++
	w.mu.Unlock()
}

// fakeTools stands in for the toolchain manager.
type fakeTools struct {
	binary    string
	ffmpegDir string
	toolsDir  string
	ffmpegErr error
	err       error
	ensured   []string
	versions  []string
}

func (f *fakeTools) Ensure(ctx context.Context, name, version string) (string, error) {
	f.ensured = append(f.ensured, name)
	f.versions = append(f.versions, version)
	if f.err != nil {
		return "", f.err
	}
	if name == constants.ToolFFmpeg {
		return filepath.Join(f.toolsDir, name), nil
	}
	return f.binary, nil
}

func (f *fakeTools) FFmpegDir() (string, error) {
	if f.ffmpegErr != nil {
		return "", f.ffmpegErr
	}
	return f.ffmpegDir, nil
}

func (f *fakeTools) ToolsDir() string {
	return f.toolsDir
}

func (f *fakeTools) JSRuntime() string {
	return "bun"
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
