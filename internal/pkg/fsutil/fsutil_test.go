package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plan summary.pdf", "plan_summary.pdf"},
		{"../../etc/passwd", "passwd"},
		{"", "upload"},
		{"benefits-2024.docx", "benefits-2024.docx"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, SanitizeFilename(tc.in), "input %q", tc.in)
	}
}

func TestRemoveWithRetryMissingFileIsSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.pdf")
	require.NoError(t, RemoveWithRetry(path, 3, time.Millisecond))
}

func TestRemoveWithRetryDeletesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, RemoveWithRetry(path, 3, time.Millisecond))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
