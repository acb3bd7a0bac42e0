// Package chunk splits document text into overlapping windows for retrieval.
package chunk

const (
	DefaultSize    = 500
	DefaultOverlap = 50
)

// separators in preference order: paragraph, line, word boundary.
var separators = [][]rune{{'\n', '\n'}, {'\n'}, {' '}}

// Split cuts text into ordered chunks of at most size runes where adjacent
// chunks share exactly overlap runes. Cuts prefer paragraph, then line, then
// space boundaries before falling back to a hard cut. The same input always
// produces the same chunks.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 10
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		cut := boundaryCut(runes, start+overlap+1, end)
		if cut <= start+overlap {
			cut = end
		}
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - overlap
	}
	return chunks
}

// boundaryCut returns the largest cut index in [minCut, hi] that lands just
// past a separator, preferring coarser separators, or -1 when none fits.
func boundaryCut(runes []rune, minCut, hi int) int {
	for _, sep := range separators {
		for i := hi - len(sep); i+len(sep) >= minCut && i >= 0; i-- {
			if matchAt(runes, i, sep) {
				return i + len(sep)
			}
		}
	}
	return -1
}

func matchAt(runes []rune, i int, sep []rune) bool {
	if i < 0 || i+len(sep) > len(runes) {
		return false
	}
	for j := range sep {
		if runes[i+j] != sep[j] {
			return false
		}
	}
	return true
}
