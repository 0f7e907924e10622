package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/src/chatsdk"
)

func TestStoreNoActiveConversation(t *testing.T) {
	store := NewStore()

	_, ok := store.Active()
	assert.False(t, ok)
	assert.Empty(t, store.Roster())
	assert.Empty(t, store.Messages())
}

func TestStoreSetActiveClearsMessages(t *testing.T) {
	store := NewStore()
	store.SetActive(chatsdk.Conversation{Name: "first"})
	store.AppendMessage(chatsdk.Message{ID: "m1", Role: chatsdk.RoleUser, Content: "hi"})

	store.SetActive(chatsdk.Conversation{Name: "second"})

	conv, ok := store.Active()
	require.True(t, ok)
	assert.Equal(t, "second", conv.Name)
	assert.Empty(t, store.Messages())
}

func TestStoreSnapshotIsolation(t *testing.T) {
	store := NewStore()
	store.SetActive(chatsdk.Conversation{
		Name: "test",
		Participants: []chatsdk.Participant{
			{EntityName: "alpha"},
		},
	})
	store.AppendMessage(chatsdk.Message{ID: "m1", Content: "one"})

	messages := store.Messages()
	roster := store.Roster()

	store.AppendMessage(chatsdk.Message{ID: "m2", Content: "two"})
	store.AppendParticipant(chatsdk.Participant{EntityName: "beta"})
	store.ReplaceMessage(chatsdk.Message{ID: "m1", Content: "mutated"})

	// snapshots taken before the mutations are unaffected
	require.Len(t, messages, 1)
	assert.Equal(t, "one", messages[0].Content)
	require.Len(t, roster, 1)

	// fresh reads observe the mutations
	assert.Len(t, store.Messages(), 2)
	assert.Len(t, store.Roster(), 2)
}

func TestStoreMessageOrder(t *testing.T) {
	store := NewStore()
	store.SetActive(chatsdk.Conversation{Name: "test"})

	store.AppendMessage(chatsdk.Message{ID: "a"})
	store.AppendMessage(chatsdk.Message{ID: "b"})
	store.AppendMessage(chatsdk.Message{ID: "c"})

	messages := store.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "a", messages[0].ID)
	assert.Equal(t, "b", messages[1].ID)
	assert.Equal(t, "c", messages[2].ID)
}

func TestStoreReplaceMessage(t *testing.T) {
	store := NewStore()
	store.SetActive(chatsdk.Conversation{Name: "test"})
	store.AppendMessage(chatsdk.Message{ID: "m1", Content: "old", State: chatsdk.StatePending})

	ok := store.ReplaceMessage(chatsdk.Message{ID: "m1", Content: "new", State: chatsdk.StateComplete})
	assert.True(t, ok)

	msg, found := store.MessageByID("m1")
	require.True(t, found)
	assert.Equal(t, "new", msg.Content)
	assert.Equal(t, chatsdk.StateComplete, msg.State)

	assert.False(t, store.ReplaceMessage(chatsdk.Message{ID: "missing"}))
}

func TestStoreRosterMutations(t *testing.T) {
	store := NewStore()
	store.SetActive(chatsdk.Conversation{
		Name: "test",
		Participants: []chatsdk.Participant{
			{EntityName: "alpha"},
			{EntityName: "beta"},
		},
	})

	store.AppendParticipant(chatsdk.Participant{EntityName: "gamma"})
	require.Len(t, store.Roster(), 3)

	store.ReplaceParticipant(1, chatsdk.Participant{EntityName: "delta"})
	roster := store.Roster()
	assert.Equal(t, "delta", roster[1].EntityName)

	store.RemoveParticipant(0)
	roster = store.Roster()
	require.Len(t, roster, 2)
	assert.Equal(t, "delta", roster[0].EntityName)
	assert.Equal(t, "gamma", roster[1].EntityName)
}

func TestStoreSetActiveCopiesParticipants(t *testing.T) {
	participants := []chatsdk.Participant{{EntityName: "alpha"}}
	store := NewStore()
	store.SetActive(chatsdk.Conversation{Name: "test", Participants: participants})

	participants[0].EntityName = "mutated"

	roster := store.Roster()
	require.Len(t, roster, 1)
	assert.Equal(t, "alpha", roster[0].EntityName)
}
