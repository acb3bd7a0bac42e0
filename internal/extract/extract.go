// Package extract turns uploaded PDF and DOCX files into plain text.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrExtraction marks unreadable or corrupt input files. The caller is
// expected to remove the uploaded file when it sees this error.
var ErrExtraction = errors.New("text extraction failed")

var ErrUnsupportedType = errors.New("unsupported file type")

// FromFile extracts text from path based on its extension (.pdf or .docx).
func FromFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("%w: open %s: %v", ErrExtraction, filepath.Base(path), err)
		}
		defer f.Close()
		return FromPDF(f)
	case ".docx":
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("%w: open %s: %v", ErrExtraction, filepath.Base(path), err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return "", fmt.Errorf("%w: stat %s: %v", ErrExtraction, filepath.Base(path), err)
		}
		return FromDOCX(f, info.Size())
	default:
		return "", ErrUnsupportedType
	}
}

// CleanText removes NUL bytes and non-printing control characters that some
// extractors emit, keeping common whitespace.
func CleanText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")
	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}
