package eva

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(s *Stream) []Chunk {
	var chunks []Chunk
	for chunk := range s.Chunks() {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func TestStream_DeliversInOrder(t *testing.T) {
	s := NewStream()
	s.SendText("Hello")
	s.SendText(", world")
	s.Send(Chunk{Kind: ChunkToolCall, Call: &ToolCall{ID: "c1", Name: "open_file"}})
	s.Close()

	chunks := collect(s)
	require.Len(t, chunks, 3)
	assert.Equal(t, "Hello", chunks[0].Text)
	assert.Equal(t, ", world", chunks[1].Text)
	assert.Equal(t, ChunkToolCall, chunks[2].Kind)
	assert.Equal(t, "Hello, world", s.Text())
}

func TestStream_SendNeverBlocksWithoutListener(t *testing.T) {
	s := NewStream()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			s.SendText("x")
		}
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Send blocked with no listener")
	}

	assert.Len(t, collect(s), 1000)
}

func TestStream_SendAfterCloseIgnored(t *testing.T) {
	s := NewStream()
	s.SendText("kept")
	s.Close()
	s.SendText("dropped")

	chunks := collect(s)
	require.Len(t, chunks, 1)
	assert.Equal(t, "kept", chunks[0].Text)
	assert.Equal(t, "kept", s.Text())
}

func TestStream_CloseWithError(t *testing.T) {
	s := NewStream()
	s.SendText("partial")
	s.CloseWithError(errors.New("model unavailable"))

	chunks := collect(s)
	require.Len(t, chunks, 2)
	assert.Equal(t, ChunkError, chunks[1].Kind)
	assert.EqualError(t, chunks[1].Err, "model unavailable")
}
