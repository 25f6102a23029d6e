package eva

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Turn is one entry in a conversation: a user message, an assistant message
// (possibly carrying tool calls), or a tool outcome.
type Turn interface {
	turn()
}

// UserTurn is a message typed by the user.
type UserTurn struct {
	Text string `json:"text"`
}

// AssistantTurn is a model response. When Calls is non-empty the model is
// requesting tool execution; Text may still carry partial commentary.
type AssistantTurn struct {
	Text  string     `json:"text"`
	Calls []ToolCall `json:"calls,omitempty"`
}

// ToolTurn is the outcome of exactly one tool call.
type ToolTurn struct {
	Result ToolResult `json:"result"`
}

func (UserTurn) turn()      {}
func (AssistantTurn) turn() {}
func (ToolTurn) turn()      {}

// Conversation is the ordered turn sequence for one session. It is owned
// exclusively by the agent for the lifetime of the session identifier and is
// never shared across sessions.
type Conversation struct {
	SessionID string
	turns     []Turn
}

// NewConversation creates an empty conversation for the given session.
func NewConversation(sessionID string) *Conversation {
	return &Conversation{SessionID: sessionID}
}

// Append adds a turn.
func (c *Conversation) Append(t Turn) {
	c.turns = append(c.turns, t)
}

// Turns returns a copy of the turn sequence.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int { return len(c.turns) }

// LastAssistantText returns the latest non-empty assistant message,
// or "" when there is none.
func (c *Conversation) LastAssistantText() string {
	for i := len(c.turns) - 1; i >= 0; i-- {
		if at, ok := c.turns[i].(AssistantTurn); ok && at.Text != "" {
			return at.Text
		}
	}
	return ""
}

// LastToolText returns the latest non-empty tool outcome, or "".
func (c *Conversation) LastToolText() string {
	for i := len(c.turns) - 1; i >= 0; i-- {
		if tt, ok := c.turns[i].(ToolTurn); ok && tt.Result.Content != "" {
			return tt.Result.Content
		}
	}
	return ""
}

// LastUserText returns the latest user message, or "".
func (c *Conversation) LastUserText() string {
	for i := len(c.turns) - 1; i >= 0; i-- {
		if ut, ok := c.turns[i].(UserTurn); ok {
			return ut.Text
		}
	}
	return ""
}

// Store persists conversation turns keyed by session identifier.
// Implementations must keep sessions isolated from each other.
type Store interface {
	// Append adds a turn to the session's history.
	Append(sessionID string, t Turn) error

	// Snapshot returns the session's ordered turn history.
	// An unknown session yields an empty history, not an error.
	Snapshot(sessionID string) ([]Turn, error)
}

// MemoryStore is an in-memory Store. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]Turn
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]Turn)}
}

// Append adds a turn to the session's history.
func (s *MemoryStore) Append(sessionID string, t Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], t)
	return nil
}

// Snapshot returns a copy of the session's turn history.
func (s *MemoryStore) Snapshot(sessionID string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := s.sessions[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Turn kinds used by the serialized envelope.
const (
	turnKindUser      = "user"
	turnKindAssistant = "assistant"
	turnKindTool      = "tool"
)

type turnEnvelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalTurn serializes a turn into a tagged JSON envelope, used by
// persistent stores.
func MarshalTurn(t Turn) ([]byte, error) {
	var kind string
	switch t.(type) {
	case UserTurn:
		kind = turnKindUser
	case AssistantTurn:
		kind = turnKindAssistant
	case ToolTurn:
		kind = turnKindTool
	default:
		return nil, fmt.Errorf("eva: unknown turn type %T", t)
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(turnEnvelope{Kind: kind, Payload: payload})
}

// UnmarshalTurn deserializes a turn from its tagged JSON envelope.
func UnmarshalTurn(data []byte) (Turn, error) {
	var env turnEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case turnKindUser:
		var t UserTurn
		err := json.Unmarshal(env.Payload, &t)
		return t, err
	case turnKindAssistant:
		var t AssistantTurn
		err := json.Unmarshal(env.Payload, &t)
		return t, err
	case turnKindTool:
		var t ToolTurn
		err := json.Unmarshal(env.Payload, &t)
		return t, err
	}
	return nil, fmt.Errorf("eva: unknown turn kind %q", env.Kind)
}
