// Package scratch manages the private per-request temporary directories that
// audio downloads are written into.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// dirPrefix namespaces scratch directories under the shared root so stale
// ones are recognizable.
const dirPrefix = "ytaudio-"

// Dir is a scratch directory owned by exactly one in-flight request.
type Dir struct {
	path string
}

// Path returns the directory's path on disk.
func (d *Dir) Path() string { return d.path }

// Manager creates and reclaims scratch directories under a common root.
type Manager struct {
	root   string
	logger *zap.Logger
}

// NewManager returns a Manager rooted at root.
func NewManager(root string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{root: root, logger: logger}
}

// Acquire creates a fresh, uniquely named scratch directory. Creation errors
// propagate to the caller; unlike Release, this path never swallows them.
func (m *Manager) Acquire() (*Dir, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, fmt.Errorf("creating scratch root: %w", err)
	}
	path := filepath.Join(m.root, dirPrefix+uuid.New().String())
	if err := os.Mkdir(path, 0o700); err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	m.logger.Debug("scratch directory acquired", zap.String("dir", path))
	return &Dir{path: path}, nil
}

// Release removes every entry inside d and then the directory itself.
// Cleanup is best-effort: failures are logged, never returned. A directory
// that is already gone counts as released.
func (m *Manager) Release(d *Dir) {
	if d == nil {
		return
	}
	if _, err := os.Stat(d.path); os.IsNotExist(err) {
		m.logger.Debug("scratch directory already gone", zap.String("dir", d.path))
		return
	}

	var errs error
	entries, err := os.ReadDir(d.path)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(d.path, entry.Name())); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if err := os.Remove(d.path); err != nil && !os.IsNotExist(err) {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		m.logger.Warn("scratch cleanup incomplete", zap.String("dir", d.path), zap.Error(errs))
		return
	}
	m.logger.Debug("scratch directory released", zap.String("dir", d.path))
}
