// Package hubclient is the HTTP client for the prompt-hub chat service. It
// covers conversation and participant management, the participant catalog,
// and generation requests whose replies are normalized into increment
// streams regardless of the transport shape.
package hubclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/parleychat/parley/src/chatsdk"
)

// Client is the prompt-hub API client.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new hub API client.
func NewClient(config Config) (*Client, error) {
	if config.BearerToken == "" {
		return nil, ErrNoBearerToken
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "hub_client")

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CreateConversation persists a locally built conversation and returns it
// with the server-assigned id filled in.
func (c *Client) CreateConversation(ctx context.Context, conv chatsdk.Conversation) (*chatsdk.Conversation, error) {
	logger := c.logger.With("method", "CreateConversation", "name", conv.Name)
	logger.Debug("creating conversation")

	path := fmt.Sprintf("/chat/conversations/prompt_lib/%d", c.config.ProjectID)
	resp, err := c.postJSON(ctx, path, conv)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.handleError(resp)
	}

	var created struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode conversation response: %w", err)
	}

	conv.ID = created.ID
	logger.Info("conversation created", "id", conv.ID)
	return &conv, nil
}

// AddParticipants submits one or more participant descriptors for a
// conversation and returns the persisted descriptors.
func (c *Client) AddParticipants(ctx context.Context, conversationID int, participants []chatsdk.Participant) ([]chatsdk.Participant, error) {
	logger := c.logger.With("method", "AddParticipants", "conversation_id", conversationID)
	logger.Debug("adding participants", "count", len(participants))

	path := fmt.Sprintf("/chat/participants/prompt_lib/%d/%d", c.config.ProjectID, conversationID)
	resp, err := c.postJSON(ctx, path, participants)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.handleError(resp)
	}

	var persisted []chatsdk.Participant
	if err := json.NewDecoder(resp.Body).Decode(&persisted); err != nil {
		// Some hub versions echo a single descriptor rather than a list.
		return participants, nil
	}
	return persisted, nil
}

// AttachCatalogParticipant attaches a participant-catalog entry to a
// conversation by its catalog id.
func (c *Client) AttachCatalogParticipant(ctx context.Context, conversationID, catalogID int) error {
	logger := c.logger.With("method", "AttachCatalogParticipant", "conversation_id", conversationID, "catalog_id", catalogID)
	logger.Debug("attaching catalog participant")

	body := map[string]any{
		"entity_name": "user",
		"entity_meta": map[string]any{
			"id": catalogID,
		},
		"meta":            map[string]any{},
		"entity_settings": map[string]any{},
	}

	path := fmt.Sprintf("/chat/participants/prompt_lib/%d/%d", c.config.ProjectID, conversationID)
	resp, err := c.postJSON(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// ListCatalog fetches a page of the participant catalog. limit caps the
// number of returned entries; the reply carries the total count as well.
func (c *Client) ListCatalog(ctx context.Context, limit int) (*chatsdk.CatalogPage, error) {
	logger := c.logger.With("method", "ListCatalog", "limit", limit)
	logger.Debug("listing participant catalog")

	path := fmt.Sprintf("/applications/applications/prompt_lib/%d?limit=%d&agents_type=all", c.config.ProjectID, limit)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.handleError(resp)
	}

	var page chatsdk.CatalogPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	logger.Info("catalog fetched", "total", page.Total, "rows", len(page.Rows))
	return &page, nil
}

// newRequest creates an HTTP request with the credential headers attached.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	url := c.config.BaseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.BearerToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Cookie != "" {
		req.Header.Set("Cookie", c.config.Cookie)
	}

	return req, nil
}

// postJSON marshals v and POSTs it to path.
func (c *Client) postJSON(ctx context.Context, path string, v any) (*http.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// handleError converts a non-success response into an APIError, preserving
// the status code and whatever body the server sent.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
		RequestID:  resp.Header.Get("X-Request-ID"),
	}

	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		apiErr.Message = errResp.Error.Message
		apiErr.Code = errResp.Error.Code
	}

	c.logger.Error("received error response", "status_code", resp.StatusCode, "message", apiErr.Message)
	return apiErr
}
