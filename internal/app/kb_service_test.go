package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"policyqa/internal/model"
)

type stubKBStore struct {
	records []model.KBChunk
}

func (s *stubKBStore) ListAll() ([]model.KBChunk, error) { return s.records, nil }

func (s *stubKBStore) DeleteBySourceFile(sourceFile string) error {
	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.SourceFile != sourceFile {
			kept = append(kept, rec)
		}
	}
	s.records = kept
	return nil
}

func (s *stubKBStore) CreateBatch(chunks []model.KBChunk) error {
	s.records = append(s.records, chunks...)
	return nil
}

func kbChunk(sourceFile string, position int, content string) model.KBChunk {
	rec := model.KBChunk{SourceFile: sourceFile, Position: position, Content: content}
	rec.SetEmbedding(keywordVector(content))
	return rec
}

func TestKBAsk(t *testing.T) {
	store := &stubKBStore{records: []model.KBChunk{
		kbChunk("hmo_plan.pdf", 0, "The annual deductible for this plan is $2,000."),
		kbChunk("hmo_plan.pdf", 1, "Specialist visits carry a $40 copay."),
		kbChunk("ppo_plan.pdf", 0, "This plan covers preventive care at no cost."),
	}}
	svc := NewKBService(KBServiceConfig{
		Repo:     store,
		Chat:     &stubChat{fn: func(string) (string, error) { return "The deductible is $2,000.", nil }},
		Embedder: stubEmbedder{},
		TopK:     2,
	})

	res, err := svc.Ask(context.Background(), "What is the deductible?")
	require.NoError(t, err)
	require.Equal(t, "The deductible is $2,000.", res.Answer)
	require.Len(t, res.Sources, 2)
	require.Contains(t, strings.ToLower(res.Sources[0].Text), "deductible")
	require.Equal(t, "hmo_plan.pdf", res.Sources[0].SourceFile)
}

func TestKBAskEmptyIndex(t *testing.T) {
	svc := NewKBService(KBServiceConfig{
		Repo:     &stubKBStore{},
		Chat:     &stubChat{fn: func(string) (string, error) { return "", nil }},
		Embedder: stubEmbedder{},
	})
	_, err := svc.Ask(context.Background(), "anything")
	require.ErrorIs(t, err, ErrEmptyKnowledgeBase)
}

func TestKBAskRejectsBlankQuestion(t *testing.T) {
	svc := NewKBService(KBServiceConfig{
		Repo:     &stubKBStore{},
		Chat:     &stubChat{fn: func(string) (string, error) { return "", nil }},
		Embedder: stubEmbedder{},
	})
	_, err := svc.Ask(context.Background(), "   ")
	require.ErrorIs(t, err, ErrInvalidInput)
}
