package engine

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// filePermission is the mode for files the engine writes into a
// workspace.
const filePermission = 0o600

// workspace is the per-run isolated scratch directory. It is
// exclusively owned by the run that created it and removed when the
// run ends, regardless of outcome.
type workspace struct {
	dir string
}

// newWorkspace creates a fresh, uniquely named directory under base,
// or under the system temp directory when base is empty.
func newWorkspace(base, runID string) (*workspace, error) {
	dir, err := os.MkdirTemp(base, "runbox-"+runID+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &workspace{dir: dir}, nil
}

// Dir returns the workspace path.
func (w *workspace) Dir() string {
	return w.dir
}

// destroy removes the workspace recursively. Removal failures are
// logged but never override an already computed result.
func (w *workspace) destroy(log *zap.Logger) {
	if w == nil {
		return
	}
	if err := os.RemoveAll(w.dir); err != nil {
		log.Warn("failed to remove workspace", zap.String("dir", w.dir), zap.Error(err))
	}
}
