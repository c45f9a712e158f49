// Package toolbox provides the scratch workspace handed to steps for the
// duration of one run. Every run gets its own Toolbox rooted at
// <run-dir>/tmp; the directory is created lazily on first use so empty runs
// leave no tmp directory behind.
package toolbox

import (
	"fmt"
	"os"
	"path/filepath"
)

// Toolbox is a run-scoped scratch directory.
type Toolbox struct {
	dir string
}

// New returns a Toolbox rooted at dir. The directory is not created until
// a scratch file or subdirectory is requested.
func New(dir string) *Toolbox {
	return &Toolbox{dir: dir}
}

// Dir returns the root of the scratch workspace.
func (t *Toolbox) Dir() string {
	return t.dir
}

// Path joins elem onto the scratch root without creating anything.
func (t *Toolbox) Path(elem ...string) string {
	return filepath.Join(append([]string{t.dir}, elem...)...)
}

// TempFile creates a new scratch file using pattern (os.CreateTemp rules)
// and returns its path. The caller owns the file.
func (t *Toolbox) TempFile(pattern string) (string, error) {
	if err := t.ensure(); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(t.dir, pattern)
	if err != nil {
		return "", fmt.Errorf("toolbox: creating scratch file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("toolbox: closing scratch file: %w", err)
	}
	return path, nil
}

// TempDir creates a new scratch subdirectory with the given prefix.
func (t *Toolbox) TempDir(prefix string) (string, error) {
	if err := t.ensure(); err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp(t.dir, prefix)
	if err != nil {
		return "", fmt.Errorf("toolbox: creating scratch dir: %w", err)
	}
	return dir, nil
}

func (t *Toolbox) ensure() error {
	if err := os.MkdirAll(t.dir, 0755); err != nil {
		return fmt.Errorf("toolbox: creating workspace: %w", err)
	}
	return nil
}
