package eva

import (
	"strings"
	"sync"
)

// ChunkKind classifies stream chunks. Callers doing token-by-token display
// should filter for ChunkAssistantText; other kinds are passed through for
// callers that want tool activity.
type ChunkKind string

const (
	// ChunkAssistantText is an incremental fragment of assistant text.
	ChunkAssistantText ChunkKind = "assistant_text"

	// ChunkToolCall announces a tool invocation about to run.
	ChunkToolCall ChunkKind = "tool_call"

	// ChunkToolResult carries a completed tool outcome.
	ChunkToolResult ChunkKind = "tool_result"

	// ChunkError carries a terminal error; the stream closes after it.
	ChunkError ChunkKind = "error"
)

// Chunk is one streamed event.
type Chunk struct {
	Kind   ChunkKind
	Text   string
	Call   *ToolCall
	Result *ToolResult
	Err    error
}

// Stream delivers chunks from a running conversation turn.
//
// Send never blocks, even with no listener or a slow one: chunks are queued
// internally and a drain goroutine feeds the output channel. This lets the
// agent loop keep generating while the caller renders at its own pace.
type Stream struct {
	chunks chan Chunk

	mu    sync.Mutex
	cond  *sync.Cond
	queue []Chunk

	closed bool

	text strings.Builder
}

// NewStream creates a stream ready to receive chunks.
func NewStream() *Stream {
	s := &Stream{
		chunks: make(chan Chunk, 1),
		queue:  make([]Chunk, 0, 64),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.drain()
	return s
}

func (s *Stream) drain() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			close(s.chunks)
			return
		}
		chunk := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		// May block here, which is fine: only the drain goroutine blocks.
		s.chunks <- chunk
	}
}

// Chunks returns the receive channel. It is closed when the turn completes.
func (s *Stream) Chunks() <-chan Chunk { return s.chunks }

// Send queues a chunk. Sends after Close are ignored.
func (s *Stream) Send(chunk Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if chunk.Kind == ChunkAssistantText {
		s.text.WriteString(chunk.Text)
	}
	s.queue = append(s.queue, chunk)
	s.cond.Signal()
}

// SendText queues an assistant text fragment.
func (s *Stream) SendText(text string) {
	s.Send(Chunk{Kind: ChunkAssistantText, Text: text})
}

// Close marks the stream complete. Queued chunks are still delivered.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cond.Signal()
}

// CloseWithError queues a terminal error chunk and closes the stream.
func (s *Stream) CloseWithError(err error) {
	s.Send(Chunk{Kind: ChunkError, Err: err})
	s.Close()
}

// Text returns the assistant text accumulated so far.
func (s *Stream) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.String()
}
