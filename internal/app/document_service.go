package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"policyqa/internal/ai"
	"policyqa/internal/chunk"
	"policyqa/internal/classify"
	"policyqa/internal/extract"
	"policyqa/internal/model"
	"policyqa/internal/pkg/fsutil"
	"policyqa/internal/report"
	"policyqa/internal/session"
	"policyqa/internal/vectorindex"
)

const (
	defaultAskTopK      = 3
	embeddingBatchSize  = 10 // embedding APIs often limit array input size
	deleteRetryAttempts = 3
	deleteRetryDelay    = 1 * time.Second
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrEmptyDocument    = errors.New("document contains no extractable text")
)

// RejectionError carries the plain-language reason a document failed
// insurance classification.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return "not an insurance document: " + e.Reason
}

// ChatClient is the chat-completion surface the services depend on.
type ChatClient interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

// EmbeddingClient is the embedding surface the services depend on.
type EmbeddingClient interface {
	Embed(ctx context.Context, cfg ai.EmbeddingConfig, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, cfg ai.EmbeddingConfig, texts []string) ([][]float32, error)
}

// ConversationPublisher enqueues audit records; persistence happens off the
// request path.
type ConversationPublisher interface {
	Publish(ctx context.Context, record model.ConversationRecord) error
}

// ConversationCache mirrors history for cheap repeated reads.
type ConversationCache interface {
	GetHistory(ctx context.Context, userID uint) ([]session.ConversationEntry, bool, error)
	SetHistory(ctx context.Context, userID uint, entries []session.ConversationEntry) error
	DeleteHistory(ctx context.Context, userID uint) error
}

// DocumentService owns the per-user upload/ask/summarize/delete pipeline.
type DocumentService struct {
	store       session.Store
	classifier  classify.Classifier
	compareGate classify.Classifier
	chat        ChatClient
	embedder    EmbeddingClient
	chatCfg     ai.ChatConfig
	embCfg      ai.EmbeddingConfig
	publisher   ConversationPublisher
	cache       ConversationCache
	reports     *report.Generator
	uploadDir   string

	chunkSize    int
	chunkOverlap int
}

type DocumentServiceConfig struct {
	Store        session.Store
	Classifier   classify.Classifier
	CompareGate  classify.Classifier
	Chat         ChatClient
	Embedder     EmbeddingClient
	ChatCfg      ai.ChatConfig
	EmbCfg       ai.EmbeddingConfig
	Publisher    ConversationPublisher
	Cache        ConversationCache
	Reports      *report.Generator
	UploadDir    string
	ChunkSize    int
	ChunkOverlap int
}

func NewDocumentService(cfg DocumentServiceConfig) *DocumentService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunk.DefaultSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = chunk.DefaultOverlap
	}
	if cfg.CompareGate == nil {
		cfg.CompareGate = classify.NewHeuristic(0)
	}
	return &DocumentService{
		store:        cfg.Store,
		classifier:   cfg.Classifier,
		compareGate:  cfg.CompareGate,
		chat:         cfg.Chat,
		embedder:     cfg.Embedder,
		chatCfg:      cfg.ChatCfg,
		embCfg:       cfg.EmbCfg,
		publisher:    cfg.Publisher,
		cache:        cfg.Cache,
		reports:      cfg.Reports,
		uploadDir:    cfg.UploadDir,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
	}
}

type UploadInput struct {
	UserID   uint
	Filename string
	Path     string
}

type UploadResult struct {
	Filename           string   `json:"filename"`
	SuggestedQuestions []string `json:"suggested_questions"`
	ChunkCount         int      `json:"chunk_count"`
}

// Upload extracts the file, gates it through classification, chunks and
// embeds it, and stores it in the user's session. The uploaded file is
// removed from disk whenever processing fails.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if input.UserID == 0 || input.Filename == "" {
		return nil, ErrInvalidInput
	}

	text, err := extract.FromFile(input.Path)
	if err != nil {
		s.removeUpload(input.Path)
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		s.removeUpload(input.Path)
		return nil, ErrEmptyDocument
	}

	verdict, err := s.classifier.Classify(ctx, text)
	if err != nil {
		s.removeUpload(input.Path)
		return nil, fmt.Errorf("classify document failed: %w", err)
	}
	if !verdict.Accepted {
		s.removeUpload(input.Path)
		return nil, &RejectionError{Reason: verdict.Reason}
	}

	chunks := chunk.Split(text, s.chunkSize, s.chunkOverlap)
	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		s.removeUpload(input.Path)
		return nil, err
	}

	s.store.PutDocument(input.UserID, &session.Document{
		Name:    input.Filename,
		Text:    text,
		Chunks:  chunks,
		Vectors: vectors,
	})

	return &UploadResult{
		Filename:           input.Filename,
		SuggestedQuestions: s.suggestQuestions(ctx, chunks),
		ChunkCount:         len(chunks),
	}, nil
}

type AskInput struct {
	UserID   uint
	Filename string
	Question string
	TopK     int
}

type AskResult struct {
	Answer  string           `json:"answer"`
	Sources []session.Source `json:"sources"`
}

// Ask retrieves the most relevant chunks of one document and answers the
// question from them. The similarity index is rebuilt per question from the
// embeddings computed at upload time.
func (s *DocumentService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	doc, ok := s.store.GetDocument(input.UserID, input.Filename)
	if !ok {
		return nil, ErrDocumentNotFound
	}
	if len(doc.Chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	queryEmb, err := s.embedder.Embed(ctx, s.embCfg, question)
	if err != nil {
		return nil, fmt.Errorf("embed question failed: %w", err)
	}

	idx, err := vectorindex.New(doc.Chunks, doc.Vectors)
	if err != nil {
		return nil, fmt.Errorf("build similarity index failed: %w", err)
	}
	topK := input.TopK
	if topK <= 0 {
		topK = defaultAskTopK
	}
	results := idx.Search(queryEmb, topK)

	contexts := make([]string, len(results))
	sources := make([]session.Source, len(results))
	for i, r := range results {
		contexts[i] = r.Chunk
		sources[i] = session.Source{Text: r.Chunk, Document: doc.Name}
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
	answer = strings.TrimSpace(answer)

	entry := session.ConversationEntry{
		Question:  question,
		Answer:    answer,
		Sources:   sources,
		CreatedAt: time.Now(),
	}
	s.store.AppendConversation(input.UserID, entry)
	s.publishRecord(ctx, input.UserID, doc.Name, entry)
	if s.cache != nil {
		_ = s.cache.DeleteHistory(ctx, input.UserID)
	}

	return &AskResult{Answer: answer, Sources: sources}, nil
}

// ListDocuments returns the user's uploaded filenames.
func (s *DocumentService) ListDocuments(userID uint) []string {
	return s.store.ListDocuments(userID)
}

// Delete removes a document from the session and its backing file from disk.
// Deleting an unknown or already-deleted document succeeds.
func (s *DocumentService) Delete(userID uint, filename string) error {
	if userID == 0 || filename == "" {
		return ErrInvalidInput
	}
	s.store.DeleteDocument(userID, filename)

	path := fsutil.SafeJoin(s.uploadDir, filename)
	if err := fsutil.RemoveWithRetry(path, deleteRetryAttempts, deleteRetryDelay); err != nil {
		return fmt.Errorf("delete file failed: %w", err)
	}
	return nil
}

// History returns the user's conversation entries, preferring the cache.
func (s *DocumentService) History(ctx context.Context, userID uint) []session.ConversationEntry {
	if s.cache != nil {
		if entries, hit, err := s.cache.GetHistory(ctx, userID); err == nil && hit {
			return entries
		}
	}
	entries := s.store.History(userID)
	if s.cache != nil && len(entries) > 0 {
		_ = s.cache.SetHistory(ctx, userID, entries)
	}
	return entries
}

// ExportReport renders the conversation history to a PDF in the upload dir
// and returns its filename.
func (s *DocumentService) ExportReport(ctx context.Context, userID uint, userLabel string) (string, error) {
	return s.reports.Generate(userLabel, s.History(ctx, userID))
}

func (s *DocumentService) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	var vectors [][]float32
	for i := 0; i < len(chunks); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch, err := s.embedder.EmbedBatch(ctx, s.embCfg, chunks[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed chunks failed: %w", err)
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(chunks) {
		return nil, errors.New("embedding count mismatch")
	}
	return vectors, nil
}

func (s *DocumentService) publishRecord(ctx context.Context, userID uint, document string, entry session.ConversationEntry) {
	if s.publisher == nil {
		return
	}
	record := model.ConversationRecord{
		UserID:    userID,
		Document:  document,
		Question:  entry.Question,
		Answer:    entry.Answer,
		CreatedAt: entry.CreatedAt,
	}
	record.Sources = encodeSources(entry.Sources)
	if err := s.publisher.Publish(ctx, record); err != nil {
		log.Printf("publish conversation record failed: %v", err)
	}
}

func (s *DocumentService) removeUpload(path string) {
	if err := fsutil.RemoveWithRetry(path, deleteRetryAttempts, deleteRetryDelay); err != nil {
		log.Printf("remove rejected upload %s failed: %v", path, err)
	}
}
