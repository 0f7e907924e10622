// Package chat holds the conversation state store, the mention resolver,
// and the reconciliation machinery for in-flight assistant replies.
package chat

import (
	"sync"

	"github.com/parleychat/parley/src/chatsdk"
)

// Store owns the active conversation, its participant roster, and the
// ordered message log. It is the only mutable shared state; every mutation
// swaps in freshly built collections so a reader holding a snapshot never
// observes a partial update.
type Store struct {
	mu           sync.RWMutex
	conversation *chatsdk.Conversation
	messages     []chatsdk.Message
}

// NewStore creates an empty store with no active conversation.
func NewStore() *Store {
	return &Store{}
}

// SetActive replaces the active conversation and clears the message log.
func (s *Store) SetActive(conv chatsdk.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := conv
	copied.Participants = append([]chatsdk.Participant(nil), conv.Participants...)
	s.conversation = &copied
	s.messages = nil
}

// Active returns a snapshot of the active conversation.
func (s *Store) Active() (chatsdk.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conversation == nil {
		return chatsdk.Conversation{}, false
	}
	snap := *s.conversation
	snap.Participants = append([]chatsdk.Participant(nil), s.conversation.Participants...)
	return snap, true
}

// Messages returns a snapshot of the ordered message log.
func (s *Store) Messages() []chatsdk.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chatsdk.Message(nil), s.messages...)
}

// MessageByID returns a snapshot of one message.
func (s *Store) MessageByID(id string) (chatsdk.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.messages {
		if m.ID == id {
			return m, true
		}
	}
	return chatsdk.Message{}, false
}

// Roster returns a snapshot of the active conversation's participants.
func (s *Store) Roster() []chatsdk.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conversation == nil {
		return nil
	}
	return append([]chatsdk.Participant(nil), s.conversation.Participants...)
}

// AppendMessage appends a message to the log.
func (s *Store) AppendMessage(m chatsdk.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]chatsdk.Message, 0, len(s.messages)+1)
	next = append(next, s.messages...)
	s.messages = append(next, m)
}

// ReplaceMessage replaces the message with the same id. It reports whether
// a message was replaced.
func (s *Store) ReplaceMessage(m chatsdk.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == m.ID {
			next := append([]chatsdk.Message(nil), s.messages...)
			next[i] = m
			s.messages = next
			return true
		}
	}
	return false
}

// AppendParticipant appends a participant to the roster.
func (s *Store) AppendParticipant(p chatsdk.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversation == nil {
		return
	}
	conv := *s.conversation
	conv.Participants = append(append([]chatsdk.Participant(nil), s.conversation.Participants...), p)
	s.conversation = &conv
}

// RemoveParticipant removes the participant at index i. The index must come
// from a current roster snapshot; out-of-range indices are the caller's
// bug, not checked here.
func (s *Store) RemoveParticipant(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversation == nil {
		return
	}
	conv := *s.conversation
	old := s.conversation.Participants
	next := make([]chatsdk.Participant, 0, len(old)-1)
	next = append(next, old[:i]...)
	next = append(next, old[i+1:]...)
	conv.Participants = next
	s.conversation = &conv
}

// ReplaceParticipant replaces the participant at index i. Same index
// precondition as RemoveParticipant.
func (s *Store) ReplaceParticipant(i int, p chatsdk.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversation == nil {
		return
	}
	conv := *s.conversation
	next := append([]chatsdk.Participant(nil), s.conversation.Participants...)
	next[i] = p
	conv.Participants = next
	s.conversation = &conv
}
