package session

import (
	"sort"
	"sync"
)

// userSession is one user's state, guarded by its own mutex so concurrent
// requests for unrelated users never contend on the same lock.
type userSession struct {
	mu        sync.Mutex
	documents map[string]*Document
	history   []ConversationEntry
}

// MemoryStore is the in-process Store implementation. The store-level mutex
// only covers the session map; all document and history access runs under
// the per-session mutex.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[uint]*userSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uint]*userSession)}
}

func (s *MemoryStore) session(userID uint) *userSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	us, ok := s.sessions[userID]
	if !ok {
		us = &userSession{documents: make(map[string]*Document)}
		s.sessions[userID] = us
	}
	return us
}

func (s *MemoryStore) PutDocument(userID uint, doc *Document) {
	us := s.session(userID)
	us.mu.Lock()
	defer us.mu.Unlock()
	us.documents[doc.Name] = doc
}

func (s *MemoryStore) GetDocument(userID uint, name string) (*Document, bool) {
	us := s.session(userID)
	us.mu.Lock()
	defer us.mu.Unlock()
	doc, ok := us.documents[name]
	return doc, ok
}

func (s *MemoryStore) DeleteDocument(userID uint, name string) bool {
	us := s.session(userID)
	us.mu.Lock()
	defer us.mu.Unlock()
	_, ok := us.documents[name]
	delete(us.documents, name)
	return ok
}

func (s *MemoryStore) ListDocuments(userID uint) []string {
	us := s.session(userID)
	us.mu.Lock()
	defer us.mu.Unlock()
	names := make([]string, 0, len(us.documents))
	for name := range us.documents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *MemoryStore) AppendConversation(userID uint, entry ConversationEntry) {
	us := s.session(userID)
	us.mu.Lock()
	defer us.mu.Unlock()
	us.history = append(us.history, entry)
}

func (s *MemoryStore) History(userID uint) []ConversationEntry {
	us := s.session(userID)
	us.mu.Lock()
	defer us.mu.Unlock()
	out := make([]ConversationEntry, len(us.history))
	copy(out, us.history)
	return out
}
