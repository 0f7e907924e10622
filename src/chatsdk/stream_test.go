package chatsdk

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceStream(t *testing.T) {
	s := NewSliceStream([]string{"a", "b"})

	inc, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, "a", inc)

	inc, err = s.Read()
	require.NoError(t, err)
	assert.Equal(t, "b", inc)

	_, err = s.Read()
	assert.ErrorIs(t, err, io.EOF)

	// exhaustion is sticky
	_, err = s.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestCollectIncrements(t *testing.T) {
	tests := []struct {
		name       string
		increments []string
		expected   string
	}{
		{"empty sequence", nil, ""},
		{"single increment", []string{"only"}, "only"},
		{"space-joined fold", []string{"a", "b", "c"}, "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := CollectIncrements(NewSliceStream(tt.increments))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, content)
		})
	}
}

type erroringStream struct {
	err error
}

func (s *erroringStream) Read() (string, error) { return "", s.err }
func (s *erroringStream) Close() error          { return nil }

func TestStreamToCallbackPropagatesErrors(t *testing.T) {
	readErr := errors.New("read failed")
	err := StreamToCallback(&erroringStream{err: readErr}, func(string) error { return nil })
	assert.ErrorIs(t, err, readErr)

	callbackErr := errors.New("callback failed")
	err = StreamToCallback(NewSliceStream([]string{"x"}), func(string) error { return callbackErr })
	assert.ErrorIs(t, err, callbackErr)
}

func TestStreamToChannel(t *testing.T) {
	ch := StreamToChannel(NewSliceStream([]string{"a", "b"}))

	var got []string
	for result := range ch {
		require.NoError(t, result.Err)
		got = append(got, result.Increment)
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestStreamToChannelDeliversErrorBeforeClose(t *testing.T) {
	readErr := errors.New("broken")
	ch := StreamToChannel(&erroringStream{err: readErr})

	result, ok := <-ch
	require.True(t, ok)
	assert.ErrorIs(t, result.Err, readErr)

	_, ok = <-ch
	assert.False(t, ok)
}
