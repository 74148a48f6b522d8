package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes contents to path, creating parent directories, and
// returns the path for chaining into fixtures.
func WriteFile(t testing.TB, path, contents string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// CSV joins header and rows into file contents with a trailing newline,
// keeping dataset fixtures readable at the call site.
func CSV(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}
