package chat

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/src/chatsdk"
)

func newTestStore() *Store {
	store := NewStore()
	store.SetActive(chatsdk.Conversation{
		Name: "test",
		Participants: []chatsdk.Participant{
			{EntityName: "alpha"},
		},
	})
	return store
}

func TestReconcilerPlaceholder(t *testing.T) {
	store := newTestStore()
	r := NewReconciler(store)

	msg, ok := store.MessageByID(r.MessageID())
	require.True(t, ok)
	assert.Equal(t, chatsdk.RoleAssistant, msg.Role)
	assert.Equal(t, chatsdk.StatePending, msg.State)
	assert.Empty(t, msg.Content)
}

func TestReconcilerFold(t *testing.T) {
	tests := []struct {
		name       string
		increments []string
		expected   string
	}{
		{
			name:       "single increment replaces placeholder",
			increments: []string{"hello"},
			expected:   "hello",
		},
		{
			name:       "later increments append with one space",
			increments: []string{"hello", "world", "again"},
			expected:   "hello world again",
		},
		{
			name:       "first increment carries no leading space",
			increments: []string{"a"},
			expected:   "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			r := NewReconciler(store)

			for _, inc := range tt.increments {
				r.Apply(inc)
			}

			msg, ok := store.MessageByID(r.MessageID())
			require.True(t, ok)
			assert.Equal(t, tt.expected, msg.Content)
			assert.Equal(t, chatsdk.StateStreaming, msg.State)
		})
	}
}

func TestReconcilerContentNonDecreasing(t *testing.T) {
	store := newTestStore()
	r := NewReconciler(store)

	prev := 0
	for _, inc := range []string{"one", "two", "three", "four"} {
		r.Apply(inc)
		msg, ok := store.MessageByID(r.MessageID())
		require.True(t, ok)
		assert.GreaterOrEqual(t, len(msg.Content), prev)
		prev = len(msg.Content)
	}
}

func TestReconcilerComplete(t *testing.T) {
	store := newTestStore()
	r := NewReconciler(store)

	r.Apply("hello")
	r.Complete()

	msg, ok := store.MessageByID(r.MessageID())
	require.True(t, ok)
	assert.Equal(t, chatsdk.StateComplete, msg.State)
	assert.Equal(t, "hello", msg.Content)
	assert.True(t, r.State().Terminal())
}

func TestReconcilerEmptySequenceCompletesEmpty(t *testing.T) {
	store := newTestStore()
	r := NewReconciler(store)

	r.Complete()

	msg, ok := store.MessageByID(r.MessageID())
	require.True(t, ok)
	assert.Equal(t, chatsdk.StateComplete, msg.State)
	assert.Empty(t, msg.Content)
}

func TestReconcilerFailReplacesContent(t *testing.T) {
	store := newTestStore()
	r := NewReconciler(store)

	r.Apply("partial")
	r.Apply("reply")
	r.Fail()

	msg, ok := store.MessageByID(r.MessageID())
	require.True(t, ok)
	assert.Equal(t, chatsdk.StateFailed, msg.State)
	assert.Equal(t, FailureText, msg.Content)
}

func TestReconcilerTerminalIsFinal(t *testing.T) {
	store := newTestStore()
	r := NewReconciler(store)

	r.Apply("done")
	r.Complete()

	r.Apply("late increment")
	r.Fail()

	msg, ok := store.MessageByID(r.MessageID())
	require.True(t, ok)
	assert.Equal(t, chatsdk.StateComplete, msg.State)
	assert.Equal(t, "done", msg.Content)
}

func TestDrainCompletesOnEOF(t *testing.T) {
	store := newTestStore()
	r := NewReconciler(store)

	var snapshots []chatsdk.Message
	err := r.Drain(context.Background(), chatsdk.NewSliceStream([]string{"a", "b"}), func(m chatsdk.Message) {
		snapshots = append(snapshots, m)
	})
	require.NoError(t, err)

	msg, ok := store.MessageByID(r.MessageID())
	require.True(t, ok)
	assert.Equal(t, "a b", msg.Content)
	assert.Equal(t, chatsdk.StateComplete, msg.State)

	// two applies plus the completion
	require.Len(t, snapshots, 3)
	assert.Equal(t, "a", snapshots[0].Content)
	assert.Equal(t, "a b", snapshots[1].Content)
	assert.Equal(t, chatsdk.StateComplete, snapshots[2].State)
}

type failingStream struct {
	increments []string
	pos        int
	err        error
}

func (s *failingStream) Read() (string, error) {
	if s.pos >= len(s.increments) {
		return "", s.err
	}
	inc := s.increments[s.pos]
	s.pos++
	return inc, nil
}

func (s *failingStream) Close() error { return nil }

func TestDrainFailsOnStreamError(t *testing.T) {
	store := newTestStore()
	r := NewReconciler(store)

	streamErr := errors.New("connection reset")
	err := r.Drain(context.Background(), &failingStream{increments: []string{"partial"}, err: streamErr}, nil)
	require.ErrorIs(t, err, streamErr)

	msg, ok := store.MessageByID(r.MessageID())
	require.True(t, ok)
	assert.Equal(t, chatsdk.StateFailed, msg.State)
	assert.Equal(t, FailureText, msg.Content)
}

func TestDrainEmptyStream(t *testing.T) {
	store := newTestStore()
	r := NewReconciler(store)

	err := r.Drain(context.Background(), chatsdk.NewSliceStream(nil), nil)
	require.NoError(t, err)

	msg, ok := store.MessageByID(r.MessageID())
	require.True(t, ok)
	assert.Equal(t, chatsdk.StateComplete, msg.State)
	assert.Empty(t, msg.Content)
}

func TestDrainCancelledContext(t *testing.T) {
	store := newTestStore()
	r := NewReconciler(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Drain(ctx, &failingStream{increments: []string{"never read"}, err: io.EOF}, nil)
	require.ErrorIs(t, err, context.Canceled)

	// cancellation does not force a terminal state
	msg, ok := store.MessageByID(r.MessageID())
	require.True(t, ok)
	assert.Equal(t, chatsdk.StatePending, msg.State)
}
