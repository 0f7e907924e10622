package chat

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/parleychat/parley/src/chatsdk"
)

// FailureText replaces whatever content accumulated when a turn fails.
const FailureText = "Sorry, I encountered an error. Please try again."

// Reconciler holds the exclusive lease on one in-flight assistant message.
// It creates the placeholder, folds increments into it in order, and moves
// it to exactly one terminal state.
type Reconciler struct {
	store   *Store
	id      string
	applied int
	state   chatsdk.MessageState
}

// NewReconciler appends a pending assistant placeholder to the store and
// returns the reconciler leasing it.
func NewReconciler(store *Store) *Reconciler {
	msg := chatsdk.Message{
		ID:        uuid.New().String(),
		Role:      chatsdk.RoleAssistant,
		State:     chatsdk.StatePending,
		CreatedAt: time.Now(),
	}
	store.AppendMessage(msg)
	return &Reconciler{
		store: store,
		id:    msg.ID,
		state: chatsdk.StatePending,
	}
}

// MessageID returns the id of the leased message.
func (r *Reconciler) MessageID() string {
	return r.id
}

// State returns the current lifecycle state of the leased message.
func (r *Reconciler) State() chatsdk.MessageState {
	return r.state
}

// Apply folds one increment into the message. The first increment replaces
// the placeholder content; every later one is appended with a single
// separating space. Batched replies often deliver the whole first chunk up
// front, so replacing rather than appending keeps it from being duplicated
// or prefixed with a stray space.
func (r *Reconciler) Apply(increment string) {
	if r.state.Terminal() {
		return
	}

	msg, ok := r.store.MessageByID(r.id)
	if !ok {
		return
	}

	if r.applied == 0 {
		msg.Content = increment
	} else {
		msg.Content += " " + increment
	}
	r.applied++

	msg.State = chatsdk.StateStreaming
	r.state = chatsdk.StateStreaming
	r.store.ReplaceMessage(msg)
}

// Complete freezes the message content and releases the lease. An empty
// sequence completes directly from pending with empty content.
func (r *Reconciler) Complete() {
	r.finish(chatsdk.StateComplete, "")
}

// Fail discards whatever content accumulated, substitutes the fixed failure
// text, and releases the lease.
func (r *Reconciler) Fail() {
	r.finish(chatsdk.StateFailed, FailureText)
}

func (r *Reconciler) finish(state chatsdk.MessageState, content string) {
	if r.state.Terminal() {
		return
	}

	msg, ok := r.store.MessageByID(r.id)
	if !ok {
		return
	}

	if state == chatsdk.StateFailed {
		msg.Content = content
	}
	msg.State = state
	msg.CreatedAt = time.Now()
	r.state = state
	r.store.ReplaceMessage(msg)
}

// Drain consumes the stream to exhaustion, applying each increment in
// order, and moves the message to its terminal state. onUpdate, when
// non-nil, receives a snapshot after every change. Context cancellation
// stops driving the stream without forcing a terminal transition; the
// abandoned read is left to the transport.
func (r *Reconciler) Drain(ctx context.Context, stream chatsdk.IncrementStream, onUpdate func(chatsdk.Message)) error {
	defer stream.Close()

	notify := func() {
		if onUpdate != nil {
			if msg, ok := r.store.MessageByID(r.id); ok {
				onUpdate(msg)
			}
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		increment, err := stream.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.Complete()
				notify()
				return nil
			}
			r.Fail()
			notify()
			return err
		}

		r.Apply(increment)
		notify()
	}
}
