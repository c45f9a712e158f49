// Package internal holds repo-wide hygiene tests for the packages below it.
package internal

import (
	"bytes"
	"go/format"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// projectRoot resolves the repository root whether the test runs from the
// internal directory or the repo root.
func projectRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getting working directory: %v", err)
	}
	if filepath.Base(wd) == "internal" {
		return filepath.Dir(wd)
	}
	return wd
}

// TestGofmtCompliance verifies that every Go source file under internal/ is
// gofmt-clean. If it fails, run: gofmt -w .
func TestGofmtCompliance(t *testing.T) {
	root := projectRoot(t)

	var unformatted []string
	err := filepath.Walk(filepath.Join(root, "internal"), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		formatted, err := format.Source(content)
		if err != nil {
			// Files that fail to parse are someone else's problem.
			return nil
		}
		if !bytes.Equal(content, formatted) {
			rel, _ := filepath.Rel(root, path)
			unformatted = append(unformatted, rel)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walking internal/: %v", err)
	}

	for _, f := range unformatted {
		t.Errorf("not gofmt-clean: %s", f)
	}
}

// TestGolangciLintCompliance runs golangci-lint over the repository when the
// tool is available, and skips otherwise.
func TestGolangciLintCompliance(t *testing.T) {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		t.Skip("golangci-lint not found in PATH")
	}

	cmd := exec.Command("golangci-lint", "run", "--allow-parallel-runners", "./...")
	cmd.Dir = projectRoot(t)
	cmd.Env = append(os.Environ(), "GOCACHE="+t.TempDir())
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Errorf("golangci-lint found issues:\n%s", output)
	}
}
