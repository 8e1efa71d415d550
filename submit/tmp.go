package submit

import (
	"os"
	"path/filepath"
)

// TmpManager scopes a batch of temporary files to one submission and
// removes all of them together: callers ask it for a path inside its
// directory and never have to track cleanup themselves.
type TmpManager struct {
	dir string
}

// NewTmpManager creates a fresh scoped temporary directory.
func NewTmpManager() (*TmpManager, error) {
	dir, err := os.MkdirTemp("", "dispatch-submit-")
	if err != nil {
		return nil, err
	}
	return &TmpManager{dir: dir}, nil
}

// File returns a path for name inside the manager's scoped directory. It
// does not create the file.
func (tm *TmpManager) File(name string) string {
	return filepath.Join(tm.dir, name)
}

// Close removes the scoped directory and everything under it.
func (tm *TmpManager) Close() error {
	return os.RemoveAll(tm.dir)
}
