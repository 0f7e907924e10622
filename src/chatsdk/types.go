// Package chatsdk defines the shared types for multi-participant conversations
// with remote language-model participants.
package chatsdk

import (
	"time"
)

// Role identifies the author kind of a message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MessageState is the lifecycle state of a message.
type MessageState string

const (
	// StatePending means the placeholder exists but no content has arrived.
	StatePending MessageState = "pending"
	// StateStreaming means at least one increment has been applied and more may arrive.
	StateStreaming MessageState = "streaming"
	// StateComplete is terminal; content is frozen.
	StateComplete MessageState = "complete"
	// StateFailed is terminal; content holds the fixed failure text.
	StateFailed MessageState = "failed"
)

// Terminal reports whether the state is a terminal one.
func (s MessageState) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// Message is a single entry in the conversation log. Content is mutable only
// while State is StateStreaming and its length is non-decreasing there.
type Message struct {
	ID        string       `json:"id"`
	Role      string       `json:"role"`
	Content   string       `json:"content"`
	State     MessageState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
}

// EntityMeta is the model binding of a participant. Name, when set, is the
// human-facing alias shown instead of the raw entity name.
type EntityMeta struct {
	ID             int    `json:"id,omitempty"`
	Name           string `json:"name,omitempty"`
	IntegrationUID string `json:"integration_uid,omitempty"`
	ModelName      string `json:"model_name,omitempty"`
}

// EntitySettings holds the generation parameters of a participant.
type EntitySettings struct {
	MaxTokens   int     `json:"max_tokens" validate:"gt=0"`
	TopP        float64 `json:"top_p" validate:"gte=0,lte=1"`
	TopK        int     `json:"top_k" validate:"gte=0"`
	Temperature float64 `json:"temperature" validate:"gte=0,lte=2"`
}

// Participant is a configured model identity that can produce assistant
// turns. It is immutable for the duration of one turn.
type Participant struct {
	EntityName     string         `json:"entity_name" validate:"required"`
	EntityMeta     EntityMeta     `json:"entity_meta"`
	EntitySettings EntitySettings `json:"entity_settings"`
}

// DisplayName returns the human-facing alias when one is set, falling back
// to the raw entity name.
func (p Participant) DisplayName() string {
	if p.EntityMeta.Name != "" {
		return p.EntityMeta.Name
	}
	return p.EntityName
}

// Conversation groups an ordered roster of participants with a message log.
// ID is server-assigned and stays zero until the conversation is persisted.
type Conversation struct {
	ID           int           `json:"id,omitempty"`
	Name         string        `json:"name"`
	IsPrivate    bool          `json:"is_private"`
	Source       string        `json:"source"`
	Participants []Participant `json:"participants"`
	CreatedAt    string        `json:"created_at,omitempty"`
}

// Persisted reports whether the conversation has been assigned a server id.
func (c Conversation) Persisted() bool {
	return c.ID != 0
}

// ModelRef names the model a predict request is directed at.
type ModelRef struct {
	ModelName       string `json:"model_name"`
	IntegrationUID  string `json:"integration_uid"`
	IntegrationName string `json:"integration_name"`
}

// ModelSettings parameterizes one generation request.
type ModelSettings struct {
	Temperature float64  `json:"temperature"`
	TopK        int      `json:"top_k"`
	TopP        float64  `json:"top_p"`
	MaxTokens   int      `json:"max_tokens"`
	Stream      bool     `json:"stream"`
	Model       ModelRef `json:"model"`
}

// Variable is a named substitution passed alongside the user input.
type Variable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PredictRequest is the wire shape of a generation request.
type PredictRequest struct {
	Type           string        `json:"type"`
	ModelSettings  ModelSettings `json:"model_settings"`
	Variables      []Variable    `json:"variables"`
	UserInput      string        `json:"user_input"`
	FormatResponse bool          `json:"format_response"`
}

// NewPredictRequest builds a predict request carrying the target
// participant's generation parameters and model binding.
func NewPredictRequest(target Participant, userInput, integrationName string, stream bool) *PredictRequest {
	return &PredictRequest{
		Type: "chat",
		ModelSettings: ModelSettings{
			Temperature: target.EntitySettings.Temperature,
			TopK:        target.EntitySettings.TopK,
			TopP:        target.EntitySettings.TopP,
			MaxTokens:   target.EntitySettings.MaxTokens,
			Stream:      stream,
			Model: ModelRef{
				ModelName:       target.EntityMeta.ModelName,
				IntegrationUID:  target.EntityMeta.IntegrationUID,
				IntegrationName: integrationName,
			},
		},
		Variables:      []Variable{},
		UserInput:      userInput,
		FormatResponse: true,
	}
}

// CatalogEntry is one row of the remote participant catalog.
type CatalogEntry struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedBy   string `json:"created_by,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CatalogPage is one page of catalog entries plus the total count.
type CatalogPage struct {
	Total int            `json:"total"`
	Rows  []CatalogEntry `json:"rows"`
}
