package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestAcquireCreatesDirectory(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, zaptest.NewLogger(t))

	dir, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	fi, err := os.Stat(dir.Path())
	if err != nil {
		t.Fatalf("stat scratch dir: %v", err)
	}
	if !fi.IsDir() {
		t.Error("scratch path is not a directory")
	}
	if filepath.Dir(dir.Path()) != root {
		t.Errorf("scratch dir %q not directly under root %q", dir.Path(), root)
	}
	if !strings.HasPrefix(filepath.Base(dir.Path()), "ytaudio-") {
		t.Errorf("scratch dir %q missing ytaudio- prefix", dir.Path())
	}
}

func TestAcquireCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "scratch")
	m := NewManager(root, zaptest.NewLogger(t))

	dir, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire with missing root: %v", err)
	}
	if _, err := os.Stat(dir.Path()); err != nil {
		t.Fatalf("stat scratch dir: %v", err)
	}
}

func TestAcquireUniquePaths(t *testing.T) {
	m := NewManager(t.TempDir(), zaptest.NewLogger(t))

	const n = 16
	var (
		mu    sync.Mutex
		paths = make(map[string]bool, n)
		wg    sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dir, err := m.Acquire()
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			mu.Lock()
			paths[dir.Path()] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(paths) != n {
		t.Errorf("got %d distinct paths, want %d", len(paths), n)
	}
}

func TestReleaseRemovesDirectoryAndContents(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, zaptest.NewLogger(t))

	dir, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	for _, name := range []string{"audio.mp3", "audio.webm", "audio.webm.part"} {
		if err := os.WriteFile(filepath.Join(dir.Path(), name), []byte("x"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	m.Release(dir)

	if _, err := os.Stat(dir.Path()); !os.IsNotExist(err) {
		t.Errorf("scratch dir still present after Release: %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("reading root: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("root not empty after Release: %v", entries)
	}
}

func TestReleaseRemovesNestedEntries(t *testing.T) {
	m := NewManager(t.TempDir(), zaptest.NewLogger(t))

	dir, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	sub := filepath.Join(dir.Path(), "fragments")
	if err := os.Mkdir(sub, 0o700); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "frag0001.ts"), []byte("x"), 0o644); err != nil {
		t.Fatalf("writing nested file: %v", err)
	}

	m.Release(dir)

	if _, err := os.Stat(dir.Path()); !os.IsNotExist(err) {
		t.Errorf("scratch dir still present after Release: %v", err)
	}
}

func TestReleaseEmptyDirectory(t *testing.T) {
	m := NewManager(t.TempDir(), zaptest.NewLogger(t))

	dir, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	m.Release(dir)

	if _, err := os.Stat(dir.Path()); !os.IsNotExist(err) {
		t.Errorf("scratch dir still present after Release: %v", err)
	}
}

func TestReleaseToleratesMissingDirectory(t *testing.T) {
	m := NewManager(t.TempDir(), zaptest.NewLogger(t))

	dir, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := os.RemoveAll(dir.Path()); err != nil {
		t.Fatalf("removing dir out from under manager: %v", err)
	}

	// Must not panic or log at error level; already-gone is fine.
	m.Release(dir)
	m.Release(dir)
}

func TestReleaseNil(t *testing.T) {
	m := NewManager(t.TempDir(), zaptest.NewLogger(t))
	m.Release(nil)
}

func TestReleaseLeavesSiblingsAlone(t *testing.T) {
	m := NewManager(t.TempDir(), zaptest.NewLogger(t))

	first, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	second, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := os.WriteFile(filepath.Join(second.Path(), "audio.mp3"), []byte("keep"), 0o644); err != nil {
		t.Fatalf("writing sibling file: %v", err)
	}

	m.Release(first)

	data, err := os.ReadFile(filepath.Join(second.Path(), "audio.mp3"))
	if err != nil {
		t.Fatalf("sibling file lost after releasing first dir: %v", err)
	}
	if string(data) != "keep" {
		t.Errorf("sibling file contents = %q, want %q", data, "keep")
	}
}
