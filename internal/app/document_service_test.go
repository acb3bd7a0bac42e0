package app

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"policyqa/internal/ai"
	"policyqa/internal/classify"
	"policyqa/internal/session"
)

type stubChat struct {
	fn func(prompt string) (string, error)
}

func (s *stubChat) Complete(_ context.Context, _ ai.ChatConfig, messages []ai.ChatMessage) (string, error) {
	return s.fn(messages[len(messages)-1].Content)
}

// stubEmbedder maps text onto a tiny keyword space so retrieval order is
// deterministic in tests.
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ ai.EmbeddingConfig, text string) ([]float32, error) {
	return keywordVector(text), nil
}

func (stubEmbedder) EmbedBatch(_ context.Context, _ ai.EmbeddingConfig, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = keywordVector(t)
	}
	return out, nil
}

func keywordVector(text string) []float32 {
	lower := strings.ToLower(text)
	v := []float32{0, 0, 1}
	if strings.Contains(lower, "deductible") {
		v[0] = 1
	}
	if strings.Contains(lower, "copay") {
		v[1] = 1
	}
	return v
}

type verdictClassifier struct {
	accepted bool
	reason   string
}

func (c verdictClassifier) Classify(context.Context, string) (classify.Verdict, error) {
	return classify.Verdict{Accepted: c.accepted, Reason: c.reason}, nil
}

// writeDOCX builds a minimal but valid .docx file containing the given
// paragraphs.
func writeDOCX(t *testing.T, dir, name string, paragraphs ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		fmt.Fprintf(&sb, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	sb.WriteString(`</w:body></w:document>`)
	_, err = w.Write([]byte(sb.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return path
}

func newTestService(t *testing.T, classifier classify.Classifier, chat func(string) (string, error)) (*DocumentService, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewDocumentService(DocumentServiceConfig{
		Store:        session.NewMemoryStore(),
		Classifier:   classifier,
		CompareGate:  verdictClassifier{accepted: true},
		Chat:         &stubChat{fn: chat},
		Embedder:     stubEmbedder{},
		UploadDir:    dir,
		ChunkSize:    80,
		ChunkOverlap: 10,
	})
	return svc, dir
}

func TestUploadAndAsk(t *testing.T) {
	chat := func(prompt string) (string, error) {
		if strings.Contains(prompt, "suggest 5 short questions") {
			return `["What is my deductible?"]`, nil
		}
		return "Your deductible is $1,500 per year.", nil
	}
	svc, dir := newTestService(t, verdictClassifier{accepted: true}, chat)
	path := writeDOCX(t, dir, "plan.docx",
		"Your annual deductible is $1,500 for in-network services.",
		"Primary care visits carry a $25 copay after the deductible.",
		"Claims must be filed within 90 days of the date of service.",
	)

	res, err := svc.Upload(context.Background(), UploadInput{UserID: 1, Filename: "plan.docx", Path: path})
	require.NoError(t, err)
	require.Equal(t, "plan.docx", res.Filename)
	require.NotEmpty(t, res.SuggestedQuestions)
	require.Greater(t, res.ChunkCount, 1)
	require.Equal(t, []string{"plan.docx"}, svc.ListDocuments(1))

	ask, err := svc.Ask(context.Background(), AskInput{UserID: 1, Filename: "plan.docx", Question: "What is my deductible?"})
	require.NoError(t, err)
	require.Equal(t, "Your deductible is $1,500 per year.", ask.Answer)
	require.NotEmpty(t, ask.Sources)
	require.Contains(t, strings.ToLower(ask.Sources[0].Text), "deductible")
	require.Equal(t, "plan.docx", ask.Sources[0].Document)

	history := svc.History(context.Background(), 1)
	require.Len(t, history, 1)
	require.Equal(t, "What is my deductible?", history[0].Question)
}

func TestUploadRejectedRemovesFile(t *testing.T) {
	svc, dir := newTestService(t, verdictClassifier{accepted: false, reason: "looks like a resume"}, func(string) (string, error) {
		return "", nil
	})
	path := writeDOCX(t, dir, "resume.docx", "Work experience and education history.")

	_, err := svc.Upload(context.Background(), UploadInput{UserID: 1, Filename: "resume.docx", Path: path})
	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, "looks like a resume", rej.Reason)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
	require.Empty(t, svc.ListDocuments(1))
}

func TestAskUnknownDocument(t *testing.T) {
	svc, _ := newTestService(t, verdictClassifier{accepted: true}, func(string) (string, error) {
		return "", nil
	})
	_, err := svc.Ask(context.Background(), AskInput{UserID: 1, Filename: "missing.pdf", Question: "anything"})
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	chat := func(prompt string) (string, error) { return "ok", nil }
	svc, dir := newTestService(t, verdictClassifier{accepted: true}, chat)
	path := writeDOCX(t, dir, "plan.docx", "Deductible and copay details for the plan coverage.")

	_, err := svc.Upload(context.Background(), UploadInput{UserID: 1, Filename: "plan.docx", Path: path})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(1, "plan.docx"))
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))

	require.NoError(t, svc.Delete(1, "plan.docx"))
	require.Empty(t, svc.ListDocuments(1))
}

func TestSummarizeFallsBackToPlainText(t *testing.T) {
	chat := func(prompt string) (string, error) {
		if strings.Contains(prompt, "Summarize") {
			return "This plan covers in-network care with a $1,500 deductible.", nil
		}
		return `[]`, nil
	}
	svc, dir := newTestService(t, verdictClassifier{accepted: true}, chat)
	path := writeDOCX(t, dir, "plan.docx", "Deductible details for plan coverage and copay schedule.")
	_, err := svc.Upload(context.Background(), UploadInput{UserID: 1, Filename: "plan.docx", Path: path})
	require.NoError(t, err)

	res, err := svc.Summarize(context.Background(), 1, "plan.docx")
	require.NoError(t, err)
	require.Equal(t, "This plan covers in-network care with a $1,500 deductible.", res.Summary)
	require.Empty(t, res.Benefits.Deductible)
}

func TestSummarizeParsesBenefits(t *testing.T) {
	chat := func(prompt string) (string, error) {
		if strings.Contains(prompt, "Summarize") {
			return "```json\n{\"summary\":\"A solid plan.\",\"benefits\":{\"deductible\":\"$1,500\",\"outOfPocketMax\":\"Not specified\"}}\n```", nil
		}
		return `[]`, nil
	}
	svc, dir := newTestService(t, verdictClassifier{accepted: true}, chat)
	path := writeDOCX(t, dir, "plan.docx", "Deductible details for plan coverage and copay schedule.")
	_, err := svc.Upload(context.Background(), UploadInput{UserID: 1, Filename: "plan.docx", Path: path})
	require.NoError(t, err)

	res, err := svc.Summarize(context.Background(), 1, "plan.docx")
	require.NoError(t, err)
	require.Equal(t, "A solid plan.", res.Summary)
	require.Equal(t, "$1,500", res.Benefits.Deductible)
	// "Not specified" values are pruned rather than echoed back.
	require.Empty(t, res.Benefits.OutOfPocketMax)
}

func TestCompareExtractsBenefitGrid(t *testing.T) {
	chat := func(prompt string) (string, error) {
		return `{"deductibles":{"individual":"$1,000","family":"$3,000"},"copays":{"primaryCare":"$20"}}`, nil
	}
	svc, dir := newTestService(t, verdictClassifier{accepted: true}, chat)
	pathA := writeDOCX(t, dir, "a.docx", "Plan A deductible coverage copay premium claims enrollment details.")
	pathB := writeDOCX(t, dir, "b.docx", "Plan B deductible coverage copay premium claims enrollment details.")

	res, err := svc.Compare(context.Background(), []CompareFile{
		{Label: "Plan A", Path: pathA},
		{Label: "Plan B", Path: pathB},
	})
	require.NoError(t, err)
	require.Len(t, res.Plans, 2)
	require.Equal(t, "$1,000", res.Plans[0].Deductibles.Individual)
	require.Equal(t, "$3,000", res.Plans[0].Deductibles.Family)
	require.Equal(t, "$20", res.Plans[0].Copays.PrimaryCare)
	require.Equal(t, "Not specified", res.Plans[0].OutOfPocketMax.Individual)
	require.Equal(t, "Not specified", res.Plans[0].OutOfPocketMax.Family)
	require.Equal(t, "Not specified", res.Plans[0].Copays.Specialist)

	// Compare files are transient; both are removed after processing.
	for _, p := range []string{pathA, pathB} {
		_, statErr := os.Stat(p)
		require.True(t, os.IsNotExist(statErr))
	}
}

func TestCompareSkipsUnreadableFile(t *testing.T) {
	chat := func(prompt string) (string, error) {
		return `{"deductibles":{"individual":"$1,000"}}`, nil
	}
	svc, dir := newTestService(t, verdictClassifier{accepted: true}, chat)
	good := writeDOCX(t, dir, "good.docx", "Plan deductible coverage copay details.")
	bad := filepath.Join(dir, "bad.docx")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip archive"), 0o644))

	res, err := svc.Compare(context.Background(), []CompareFile{
		{Label: "good.docx", Path: good},
		{Label: "bad.docx", Path: bad},
	})
	require.NoError(t, err)
	require.Len(t, res.Plans, 1)
	require.Len(t, res.Skipped, 1)
	require.Equal(t, "bad.docx", res.Skipped[0].Label)
}

func TestCompareDefaultsWhenExtractionIsNotJSON(t *testing.T) {
	chat := func(prompt string) (string, error) {
		return "Sorry, I cannot produce JSON today.", nil
	}
	svc, dir := newTestService(t, verdictClassifier{accepted: true}, chat)
	pathA := writeDOCX(t, dir, "a.docx", "Plan A deductible coverage copay premium claims enrollment details.")
	pathB := writeDOCX(t, dir, "b.docx", "Plan B deductible coverage copay premium claims enrollment details.")

	res, err := svc.Compare(context.Background(), []CompareFile{
		{Label: "Plan A", Path: pathA},
		{Label: "Plan B", Path: pathB},
	})
	require.NoError(t, err)
	require.Empty(t, res.Skipped)
	require.Len(t, res.Plans, 2)
	for _, plan := range res.Plans {
		require.Equal(t, "Not specified", plan.Deductibles.Individual)
		require.Equal(t, "Not specified", plan.Deductibles.Family)
		require.Equal(t, "Not specified", plan.OutOfPocketMax.Individual)
		require.Equal(t, "Not specified", plan.OutOfPocketMax.Family)
		require.Equal(t, "Not specified", plan.Copays.PrimaryCare)
		require.Equal(t, "Not specified", plan.PrescriptionCoverage)
	}
	require.Equal(t, "Plan A", res.Plans[0].Label)
	require.Equal(t, "Plan B", res.Plans[1].Label)
}

func TestCompareRequiresTwoFiles(t *testing.T) {
	svc, _ := newTestService(t, verdictClassifier{accepted: true}, func(string) (string, error) { return "", nil })
	_, err := svc.Compare(context.Background(), []CompareFile{{Label: "only.docx", Path: "only.docx"}})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestHeadTruncatesOnRuneBoundaries(t *testing.T) {
	s := strings.Repeat("é", 10)
	require.Equal(t, strings.Repeat("é", 4), head(s, 4))
	require.Equal(t, s, head(s, 10))
	require.Equal(t, "franchise médicale", head("franchise médicale", 100))
}

func TestSuggestQuestionsFallback(t *testing.T) {
	chat := func(prompt string) (string, error) {
		if strings.Contains(prompt, "suggest 5 short questions") {
			return "", errors.New("model unavailable")
		}
		return "ok", nil
	}
	svc, dir := newTestService(t, verdictClassifier{accepted: true}, chat)
	path := writeDOCX(t, dir, "plan.docx", "Deductible coverage copay details for the plan.")

	res, err := svc.Upload(context.Background(), UploadInput{UserID: 1, Filename: "plan.docx", Path: path})
	require.NoError(t, err)
	require.Equal(t, defaultQuestions, res.SuggestedQuestions)
}
