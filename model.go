package eva

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// Model is the conversational provider. It accepts an ordered conversation
// history plus the tool catalog (via llms.WithTools) and returns either final
// text or a list of tool call requests. Streaming is requested with
// llms.WithStreamingFunc.
//
// The loop's branching logic (answer vs. tool call) belongs to the provider;
// the agent only wires state and dispatches the calls it is handed.
type Model interface {
	GenerateContent(
		ctx context.Context,
		messages []llms.MessageContent,
		options ...llms.CallOption,
	) (*Response, error)
}

// Response is a provider response with tool calls already normalized.
type Response struct {
	// Text is the assistant's textual content, possibly empty on a pure
	// tool-call turn.
	Text string

	// StopReason is the provider's stop reason, when reported.
	StopReason string

	// ToolCalls are the normalized tool invocations the model requests.
	// Empty means the model is done with this user turn.
	ToolCalls []ToolCall

	// BadCalls are provider tool calls that could not be normalized (bad
	// argument JSON, missing payload). The agent still answers each with an
	// error-flagged ToolResult so the model can correct itself.
	BadCalls []BadToolCall

	// Raw is the unmodified provider response.
	Raw *llms.ContentResponse
}

// BadToolCall pairs a partially normalized call with its normalization error.
type BadToolCall struct {
	Call ToolCall
	Err  error
}
