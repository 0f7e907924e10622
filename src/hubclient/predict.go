package hubclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/parleychat/parley/src/chatsdk"
)

// Predict issues a generation request and returns the normalized increment
// stream. The caller decides the streaming preference via the request's
// model settings; the reply shape is classified at read time from the
// response itself, so a batched reply to a streaming request (or the other
// way around) is handled transparently.
func (c *Client) Predict(ctx context.Context, req *chatsdk.PredictRequest) (chatsdk.IncrementStream, error) {
	logger := c.logger.With("method", "Predict", "model", req.ModelSettings.Model.ModelName, "stream", req.ModelSettings.Stream)
	logger.Debug("sending predict request")

	path := fmt.Sprintf("/prompt_lib/predict/prompt_lib/%d", c.config.ProjectID)
	resp, err := c.postJSON(ctx, path, req)
	if err != nil {
		logger.Error("predict request failed", "error", err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, c.handleError(resp)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/event-stream") || strings.Contains(contentType, "text/plain") {
		logger.Debug("classified reply as event stream", "content_type", contentType)
		return newEventStream(resp.Body, logger), nil
	}

	logger.Debug("classified reply as batch", "content_type", contentType)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read predict response: %w", err)
	}
	return normalizeBatch(body)
}

// batchReply is the structured one-shot predict reply: either a list of
// sub-messages or a single top-level content field.
type batchReply struct {
	Messages []batchMessage `json:"messages"`
	Content  string         `json:"content"`
}

type batchMessage struct {
	Content          string `json:"content"`
	ResponseMetadata struct {
		ResponseMetadata struct {
			HTTPHeaders struct {
				Date string `json:"date"`
			} `json:"HTTPHeaders"`
		} `json:"ResponseMetadata"`
	} `json:"response_metadata"`
}

// date returns the embedded timestamp of the sub-message, if present and
// parseable as an HTTP date.
func (m batchMessage) date() (time.Time, bool) {
	raw := m.ResponseMetadata.ResponseMetadata.HTTPHeaders.Date
	if raw == "" {
		return time.Time{}, false
	}
	t, err := http.ParseTime(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// normalizeBatch turns a structured predict reply into an increment stream.
// Sub-messages are stable-sorted by their embedded timestamp; pairs where
// either timestamp is missing keep arrival order.
func normalizeBatch(body []byte) (chatsdk.IncrementStream, error) {
	var reply batchReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode predict response: %w", err)
	}

	if len(reply.Messages) > 0 {
		sorted := make([]batchMessage, len(reply.Messages))
		copy(sorted, reply.Messages)
		sort.SliceStable(sorted, func(i, j int) bool {
			ti, oki := sorted[i].date()
			tj, okj := sorted[j].date()
			if !oki || !okj {
				return false
			}
			return ti.Before(tj)
		})

		increments := make([]string, 0, len(sorted))
		for _, m := range sorted {
			if m.Content != "" {
				increments = append(increments, m.Content)
			}
		}
		return chatsdk.NewSliceStream(increments), nil
	}

	if reply.Content != "" {
		return chatsdk.NewSliceStream([]string{reply.Content}), nil
	}

	// A reply with neither messages nor content is a valid empty sequence.
	return chatsdk.NewSliceStream(nil), nil
}
