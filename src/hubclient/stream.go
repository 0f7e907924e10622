package hubclient

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

const (
	ssePrefix   = "data: "
	sseSentinel = "[DONE]"
)

// eventStream decodes a server-sent-event predict reply into increments.
// Each "data:" line carries a JSON fragment with a content field; the
// [DONE] sentinel and malformed fragments are skipped. A trailing partial
// line at EOF never forms a frame and is discarded.
type eventStream struct {
	body   io.ReadCloser
	reader *bufio.Reader
	logger *slog.Logger
	closed bool
}

func newEventStream(body io.ReadCloser, logger *slog.Logger) *eventStream {
	return &eventStream{
		body:   body,
		reader: bufio.NewReader(body),
		logger: logger,
	}
}

// sseFragment is one decoded stream unit.
type sseFragment struct {
	Content string `json:"content"`
}

// Read returns the next content increment, or io.EOF at exhaustion.
func (s *eventStream) Read() (string, error) {
	if s.closed {
		return "", ErrStreamClosed
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// A leftover without a line terminator is an incomplete
				// frame; drop it rather than emit a corrupt increment.
				if line != "" {
					s.logger.Debug("discarding partial trailing frame", "bytes", len(line))
				}
				return "", io.EOF
			}
			return "", err
		}

		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}

		payload := strings.TrimPrefix(line, ssePrefix)
		if payload == sseSentinel {
			continue
		}

		var fragment sseFragment
		if err := json.Unmarshal([]byte(payload), &fragment); err != nil {
			// One bad frame must not ruin the stream.
			s.logger.Debug("skipping malformed fragment", "error", err)
			continue
		}
		if fragment.Content == "" {
			continue
		}

		return fragment.Content, nil
	}
}

// Close releases the underlying response body. Further reads fail with
// ErrStreamClosed.
func (s *eventStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
