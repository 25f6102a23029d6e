package agent

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/mfalcone/eva"
)

// BeforeModelCallEvent is fired right before a provider request.
type BeforeModelCallEvent struct {
	SessionID string
	Request   []llms.MessageContent
}

// AfterModelCallEvent is fired after a provider request completes.
type AfterModelCallEvent struct {
	SessionID string
	Request   []llms.MessageContent
	Response  *eva.Response
	Duration  time.Duration
	Err       error
}

// BeforeToolCallEvent is fired before a tool call is dispatched.
type BeforeToolCallEvent struct {
	SessionID string
	Call      eva.ToolCall
}

// AfterToolCallEvent is fired after a tool call resolved, successfully or not.
type AfterToolCallEvent struct {
	SessionID string
	Call      eva.ToolCall
	Result    eva.ToolResult
	Duration  time.Duration
}

// Hooks observes the agent loop. Implementations must not block; they run
// inline on the loop goroutine.
type Hooks interface {
	BeforeModelCall(ctx context.Context, e BeforeModelCallEvent)
	AfterModelCall(ctx context.Context, e AfterModelCallEvent)
	BeforeToolCall(ctx context.Context, e BeforeToolCallEvent)
	AfterToolCall(ctx context.Context, e AfterToolCallEvent)
}

// NoopHooks ignores every event.
type NoopHooks struct{}

func (NoopHooks) BeforeModelCall(context.Context, BeforeModelCallEvent) {}
func (NoopHooks) AfterModelCall(context.Context, AfterModelCallEvent)   {}
func (NoopHooks) BeforeToolCall(context.Context, BeforeToolCallEvent)   {}
func (NoopHooks) AfterToolCall(context.Context, AfterToolCallEvent)     {}

var _ Hooks = NoopHooks{}
