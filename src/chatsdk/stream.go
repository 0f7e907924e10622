package chatsdk

import (
	"errors"
	"io"
	"strings"
)

// IncrementStream is a lazy, finite, non-restartable sequence of content
// increments produced by normalizing one generation reply. Read returns
// io.EOF when the sequence is exhausted. An empty sequence that ends in
// io.EOF with no prior error is a valid, successful empty reply.
type IncrementStream interface {
	// Read returns the next increment from the stream.
	Read() (string, error)

	// Close closes the stream and releases the underlying transport.
	Close() error
}

// IncrementCallback is a function called for each increment in a stream.
type IncrementCallback func(increment string) error

// StreamToCallback reads a stream to exhaustion and calls the callback for
// each increment, in order.
func StreamToCallback(stream IncrementStream, callback IncrementCallback) error {
	defer stream.Close()

	for {
		increment, err := stream.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := callback(increment); err != nil {
			return err
		}
	}
}

// CollectIncrements reads a stream and folds all increments into a single
// string using the replace-then-append rule: the first increment stands
// alone, each subsequent one is appended with a single separating space.
func CollectIncrements(stream IncrementStream) (string, error) {
	var content strings.Builder

	err := StreamToCallback(stream, func(increment string) error {
		if content.Len() > 0 {
			content.WriteString(" ")
		}
		content.WriteString(increment)
		return nil
	})

	return content.String(), err
}

// IncrementResult is one result from draining a stream onto a channel.
type IncrementResult struct {
	Increment string
	Err       error
}

// StreamToChannel drains a stream onto a channel. The channel is closed when
// the stream is exhausted or fails; a failure is delivered as the final
// result before close.
func StreamToChannel(stream IncrementStream) <-chan IncrementResult {
	ch := make(chan IncrementResult, 1)

	go func() {
		defer close(ch)
		defer stream.Close()

		for {
			increment, err := stream.Read()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					ch <- IncrementResult{Err: err}
				}
				return
			}
			ch <- IncrementResult{Increment: increment}
		}
	}()

	return ch
}

// SliceStream wraps a fixed set of increments as an IncrementStream.
// Intended for batched replies and tests.
type SliceStream struct {
	increments []string
	pos        int
}

// NewSliceStream returns a stream that yields the given increments in order.
func NewSliceStream(increments []string) *SliceStream {
	return &SliceStream{increments: increments}
}

// Read implements IncrementStream.
func (s *SliceStream) Read() (string, error) {
	if s.pos >= len(s.increments) {
		return "", io.EOF
	}
	inc := s.increments[s.pos]
	s.pos++
	return inc, nil
}

// Close implements IncrementStream.
func (s *SliceStream) Close() error { return nil }
