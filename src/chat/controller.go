package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/parleychat/parley/src/chatsdk"
)

// Controller errors.
var (
	// ErrTurnInProgress means the prior assistant message has not reached a
	// terminal state yet; a new turn must not start.
	ErrTurnInProgress = errors.New("a turn is already in progress")

	// ErrNoActiveConversation means no conversation has been set active.
	ErrNoActiveConversation = errors.New("no active conversation")

	// ErrNoParticipants means the active conversation has an empty roster.
	ErrNoParticipants = errors.New("conversation has no participants")
)

// Predictor issues a generation request and returns the normalized
// increment stream. *hubclient.Client satisfies it.
type Predictor interface {
	Predict(ctx context.Context, req *chatsdk.PredictRequest) (chatsdk.IncrementStream, error)
}

// ControllerConfig configures a turn controller.
type ControllerConfig struct {
	// IntegrationName is stamped into every predict request's model ref.
	IntegrationName string
	// Streaming is the transport preference flag; the reply shape is still
	// classified at read time.
	Streaming bool
	Logger    *slog.Logger
}

// Controller orchestrates one user turn at a time: it resolves the target
// participant, appends the user message, creates the assistant placeholder,
// and drives the increment stream into the reconciler.
type Controller struct {
	store     *Store
	predictor Predictor
	config    ControllerConfig
	logger    *slog.Logger
	inflight  *Reconciler
}

// NewController creates a controller bound to a store and a predictor.
func NewController(store *Store, predictor Predictor, config ControllerConfig) *Controller {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.IntegrationName == "" {
		config.IntegrationName = "my_integration"
	}
	return &Controller{
		store:     store,
		predictor: predictor,
		config:    config,
		logger:    logger.With("component", "turn_controller"),
	}
}

// Busy reports whether an assistant message is still pending or streaming.
func (c *Controller) Busy() bool {
	return c.inflight != nil && !c.inflight.State().Terminal()
}

// ResolveTarget picks the participant a turn is directed at: the explicit
// mention target when one was chosen, otherwise the conversation's first
// participant. The first-participant default is deliberate, even when other
// participants exist.
func (c *Controller) ResolveTarget(explicit *chatsdk.Participant) (chatsdk.Participant, error) {
	if explicit != nil {
		return *explicit, nil
	}
	roster := c.store.Roster()
	if len(roster) == 0 {
		return chatsdk.Participant{}, ErrNoParticipants
	}
	return roster[0], nil
}

// Send runs one complete turn: it appends the user message, creates the
// assistant placeholder, issues the predict request parameterized by the
// target, and folds the increments until the message reaches a terminal
// state. onUpdate, when non-nil, receives a snapshot of the assistant
// message after every change. The returned message is the final snapshot.
func (c *Controller) Send(ctx context.Context, input string, explicit *chatsdk.Participant, onUpdate func(chatsdk.Message)) (chatsdk.Message, error) {
	if c.Busy() {
		return chatsdk.Message{}, ErrTurnInProgress
	}
	if _, ok := c.store.Active(); !ok {
		return chatsdk.Message{}, ErrNoActiveConversation
	}

	target, err := c.ResolveTarget(explicit)
	if err != nil {
		return chatsdk.Message{}, err
	}

	logger := c.logger.With("target", target.DisplayName(), "model", target.EntityMeta.ModelName)
	logger.Debug("starting turn")

	c.store.AppendMessage(chatsdk.Message{
		ID:        uuid.New().String(),
		Role:      chatsdk.RoleUser,
		Content:   input,
		State:     chatsdk.StateComplete,
		CreatedAt: time.Now(),
	})

	reconciler := NewReconciler(c.store)
	c.inflight = reconciler
	if onUpdate != nil {
		if msg, ok := c.store.MessageByID(reconciler.MessageID()); ok {
			onUpdate(msg)
		}
	}

	req := chatsdk.NewPredictRequest(target, input, c.config.IntegrationName, c.config.Streaming)

	stream, err := c.predictor.Predict(ctx, req)
	if err != nil {
		// The placeholder exists, so a request-time failure still lands the
		// message in the failed state rather than leaving it dangling.
		reconciler.Fail()
		if onUpdate != nil {
			if msg, ok := c.store.MessageByID(reconciler.MessageID()); ok {
				onUpdate(msg)
			}
		}
		logger.Error("predict failed", "error", err)
		final, _ := c.store.MessageByID(reconciler.MessageID())
		return final, err
	}

	if err := reconciler.Drain(ctx, stream, onUpdate); err != nil {
		logger.Error("turn failed during reconciliation", "error", err)
		final, _ := c.store.MessageByID(reconciler.MessageID())
		return final, err
	}

	final, _ := c.store.MessageByID(reconciler.MessageID())
	logger.Info("turn complete", "message_id", final.ID, "content_len", len(final.Content))
	return final, nil
}
