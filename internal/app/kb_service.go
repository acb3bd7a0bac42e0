package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"policyqa/internal/ai"
	"policyqa/internal/chunk"
	"policyqa/internal/extract"
	"policyqa/internal/model"
	"policyqa/internal/vectorindex"
)

const (
	defaultKBTopK         = 5
	defaultKBChunkSize    = 1000
	defaultKBChunkOverlap = 100
)

var ErrEmptyKnowledgeBase = errors.New("knowledge base is empty")

// KBChunkStore is the slice of the chunk repository the service needs.
type KBChunkStore interface {
	ListAll() ([]model.KBChunk, error)
	DeleteBySourceFile(sourceFile string) error
	CreateBatch(chunks []model.KBChunk) error
}

// KBService answers questions from the shared, pre-indexed knowledge base
// and builds that index from a directory of PDFs.
type KBService struct {
	repo     KBChunkStore
	chat     ChatClient
	embedder EmbeddingClient
	chatCfg  ai.ChatConfig
	embCfg   ai.EmbeddingConfig

	topK         int
	chunkSize    int
	chunkOverlap int
}

type KBServiceConfig struct {
	Repo         KBChunkStore
	Chat         ChatClient
	Embedder     EmbeddingClient
	ChatCfg      ai.ChatConfig
	EmbCfg       ai.EmbeddingConfig
	TopK         int
	ChunkSize    int
	ChunkOverlap int
}

func NewKBService(cfg KBServiceConfig) *KBService {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultKBTopK
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultKBChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = defaultKBChunkOverlap
	}
	return &KBService{
		repo:         cfg.Repo,
		chat:         cfg.Chat,
		embedder:     cfg.Embedder,
		chatCfg:      cfg.ChatCfg,
		embCfg:       cfg.EmbCfg,
		topK:         cfg.TopK,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
	}
}

type KBAskResult struct {
	Answer  string     `json:"answer"`
	Sources []KBSource `json:"sources"`
}

type KBSource struct {
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
}

// Ask answers a question from the shared knowledge base.
func (s *KBService) Ask(ctx context.Context, question string) (*KBAskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	records, err := s.repo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("load knowledge base failed: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyKnowledgeBase
	}

	chunks := make([]string, len(records))
	vectors := make([][]float32, len(records))
	for i, rec := range records {
		chunks[i] = rec.Content
		vectors[i] = rec.EmbeddingVector()
	}

	queryEmb, err := s.embedder.Embed(ctx, s.embCfg, question)
	if err != nil {
		return nil, fmt.Errorf("embed question failed: %w", err)
	}
	idx, err := vectorindex.New(chunks, vectors)
	if err != nil {
		return nil, fmt.Errorf("build similarity index failed: %w", err)
	}
	results := idx.Search(queryEmb, s.topK)

	contexts := make([]string, len(results))
	sources := make([]KBSource, len(results))
	for i, r := range results {
		contexts[i] = r.Chunk
		sources[i] = KBSource{Text: r.Chunk, SourceFile: records[r.Position].SourceFile}
	}

	prompt := fmt.Sprintf(
		"Based on the following insurance document excerpts, answer this question: %s\n\nContext:\n%s\n\nAnswer:",
		question, strings.Join(contexts, "\n\n"),
	)
	answer, err := s.chat.Complete(ctx, s.chatCfg, []ai.ChatMessage{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("answer completion failed: %w", err)
	}

	return &KBAskResult{Answer: strings.TrimSpace(answer), Sources: sources}, nil
}

// IndexDirectory extracts, chunks, and embeds every PDF under dir and
// replaces each file's existing chunks in the knowledge base. Indexing is
// per-file: one unreadable PDF does not abort the run.
func (s *KBService) IndexDirectory(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read knowledge base dir failed: %w", err)
	}

	indexed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		if err := s.indexFile(ctx, dir, entry.Name()); err != nil {
			log.Printf("index %s failed: %v", entry.Name(), err)
			continue
		}
		indexed++
	}
	if indexed == 0 {
		return errors.New("no PDF files indexed")
	}
	log.Printf("indexed %d files from %s", indexed, dir)
	return nil
}

func (s *KBService) indexFile(ctx context.Context, dir, name string) error {
	text, err := extract.FromFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyDocument
	}

	chunks := chunk.Split(text, s.chunkSize, s.chunkOverlap)
	records := make([]model.KBChunk, len(chunks))
	for i := 0; i < len(chunks); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch, err := s.embedder.EmbedBatch(ctx, s.embCfg, chunks[i:end])
		if err != nil {
			return fmt.Errorf("embed chunks failed: %w", err)
		}
		for j, vec := range batch {
			rec := model.KBChunk{SourceFile: name, Position: i + j, Content: chunks[i+j]}
			rec.SetEmbedding(vec)
			records[i+j] = rec
		}
	}

	if err := s.repo.DeleteBySourceFile(name); err != nil {
		return fmt.Errorf("clear existing chunks failed: %w", err)
	}
	if err := s.repo.CreateBatch(records); err != nil {
		return fmt.Errorf("store chunks failed: %w", err)
	}
	log.Printf("indexed %s: %d chunks", name, len(records))
	return nil
}
