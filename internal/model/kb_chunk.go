package model

import (
	"encoding/json"
	"time"
)

// KBChunk is one chunk of the shared knowledge base built by the batch
// indexer. The embedding is stored as a JSON array of float32 for
// portability across MySQL versions.
type KBChunk struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SourceFile string    `gorm:"size:256;not null;index" json:"source_file"`
	Position   int       `gorm:"not null" json:"position"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Embedding  string    `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *KBChunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *KBChunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}
