// Package session holds per-user uploaded documents and conversation history
// for the lifetime of the process. Nothing here survives a restart.
package session

import "time"

// Source is one retrieved chunk cited by an answer.
type Source struct {
	Text     string `json:"text"`
	Document string `json:"document"`
}

// ConversationEntry is one Q&A exchange. Entries are immutable once appended.
type ConversationEntry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []Source  `json:"sources"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is an uploaded file that passed classification, with its chunks
// and their embeddings computed at upload time. Treated as read-only once
// stored.
type Document struct {
	Name    string
	Text    string
	Chunks  []string
	Vectors [][]float32
}

// Store keeps per-user state. Implementations must allow concurrent access
// by different users without serializing them against each other.
type Store interface {
	PutDocument(userID uint, doc *Document)
	GetDocument(userID uint, name string) (*Document, bool)
	// DeleteDocument reports whether the document existed. Deleting an
	// unknown document is not an error.
	DeleteDocument(userID uint, name string) bool
	ListDocuments(userID uint) []string

	AppendConversation(userID uint, entry ConversationEntry)
	History(userID uint) []ConversationEntry
}
