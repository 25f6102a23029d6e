package eva

import (
	"context"
	"fmt"
)

// toolErrorPrefix is what the model sees when a tool faults. The model can
// read it and react (apologize, retry with corrected arguments).
const toolErrorPrefix = "An error occurred while executing the tool: "

// Handler executes a single tool call and returns its text result.
type Handler func(ctx context.Context, call ToolCall) (string, error)

// SafeInvoke runs handler for call and guarantees a ToolResult.
//
// Any returned error or panic is captured and converted into an error-flagged
// result correlated to the originating call id. This is the single point that
// keeps backend, I/O, and validation faults from terminating the conversation
// loop: every ToolCall produces exactly one ToolResult.
func SafeInvoke(ctx context.Context, call ToolCall, handler Handler) ToolResult {
	content, err := func() (s string, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return handler(ctx, call)
	}()

	if err != nil {
		return ToolResult{
			CallID:  call.ID,
			Content: toolErrorPrefix + err.Error(),
			IsError: true,
		}
	}
	return ToolResult{CallID: call.ID, Content: content}
}
