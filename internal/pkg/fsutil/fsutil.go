package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"policyqa/internal/pkg/retry"
)

// EnsureDir creates the directory if it does not exist.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// SafeJoin joins name under root, stripping any path components from name.
func SafeJoin(root, name string) string {
	return filepath.Join(root, filepath.Base(name))
}

// SanitizeFilename reduces a user-supplied filename to a safe base name.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "..", "")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	if name == "" || name == "." {
		return "upload"
	}
	return name
}

// RemoveWithRetry deletes path, retrying transient failures (e.g. a
// concurrently scanning process holding the file). A missing file is success.
func RemoveWithRetry(path string, attempts int, delay time.Duration) error {
	return retry.Do(attempts, delay, delay, func() error {
		err := os.Remove(path)
		if err == nil || os.IsNotExist(err) {
			return nil
		}
		return err
	})
}
