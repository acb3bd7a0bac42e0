package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDocumentLifecycle(t *testing.T) {
	s := NewMemoryStore()
	s.PutDocument(1, &Document{Name: "plan.pdf", Text: "text", Chunks: []string{"text"}})

	doc, ok := s.GetDocument(1, "plan.pdf")
	require.True(t, ok)
	require.Equal(t, "plan.pdf", doc.Name)

	_, ok = s.GetDocument(2, "plan.pdf")
	require.False(t, ok, "documents must be scoped per user")

	require.True(t, s.DeleteDocument(1, "plan.pdf"))
	require.False(t, s.DeleteDocument(1, "plan.pdf"), "second delete reports missing")
	_, ok = s.GetDocument(1, "plan.pdf")
	require.False(t, ok)
}

func TestListDocumentsSorted(t *testing.T) {
	s := NewMemoryStore()
	s.PutDocument(1, &Document{Name: "b.pdf"})
	s.PutDocument(1, &Document{Name: "a.pdf"})
	require.Equal(t, []string{"a.pdf", "b.pdf"}, s.ListDocuments(1))
	require.Empty(t, s.ListDocuments(9))
}

func TestHistoryIsAppendOnlyCopy(t *testing.T) {
	s := NewMemoryStore()
	s.AppendConversation(1, ConversationEntry{Question: "q1", Answer: "a1", CreatedAt: time.Now()})
	s.AppendConversation(1, ConversationEntry{Question: "q2", Answer: "a2", CreatedAt: time.Now()})

	history := s.History(1)
	require.Len(t, history, 2)
	require.Equal(t, "q1", history[0].Question)

	// mutating the returned slice must not affect the store
	history[0].Question = "tampered"
	require.Equal(t, "q1", s.History(1)[0].Question)
}

func TestConcurrentUsers(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for u := uint(1); u <= 8; u++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				name := fmt.Sprintf("doc-%d.pdf", i)
				s.PutDocument(userID, &Document{Name: name})
				s.AppendConversation(userID, ConversationEntry{Question: name})
				s.GetDocument(userID, name)
			}
		}(u)
	}
	wg.Wait()
	for u := uint(1); u <= 8; u++ {
		require.Len(t, s.ListDocuments(u), 50)
		require.Len(t, s.History(u), 50)
	}
}
