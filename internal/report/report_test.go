package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"policyqa/internal/session"
)

func TestGenerateEmptyHistory(t *testing.T) {
	g := NewGenerator(t.TempDir())
	_, err := g.Generate("user", nil)
	require.ErrorIs(t, err, ErrEmptyHistory)
}

func TestGenerateWritesPDF(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)

	history := []session.ConversationEntry{
		{
			Question: "What is my deductible?",
			Answer:   "Your individual deductible is $1,500.",
			Sources: []session.Source{
				{Text: "Annual deductible: $1,500 individual / $3,000 family.", Document: "plan.pdf"},
			},
			CreatedAt: time.Now(),
		},
		{
			Question:  "What about urgent care?",
			Answer:    "Urgent care visits have a $50 copay.",
			CreatedAt: time.Now(),
		},
	}

	filename, err := g.Generate("jane (jane@example.com)", history)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(filename, "qa_report_"))
	require.True(t, strings.HasSuffix(filename, ".pdf"))

	data, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	require.True(t, len(data) > 0)
	require.Equal(t, "%PDF", string(data[:4]))
}
