package eva

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeInvoke_Success(t *testing.T) {
	call := ToolCall{ID: "call-1", Name: "get_current_time"}

	result := SafeInvoke(context.Background(), call,
		func(ctx context.Context, c ToolCall) (string, error) {
			return "2024-01-15 10:00:00", nil
		})

	assert.Equal(t, "call-1", result.CallID)
	assert.Equal(t, "2024-01-15 10:00:00", result.Content)
	assert.False(t, result.IsError)
}

func TestSafeInvoke_Error(t *testing.T) {
	call := ToolCall{ID: "call-2", Name: "send_email"}
	backendErr := errors.New("connection refused")

	result := SafeInvoke(context.Background(), call,
		func(ctx context.Context, c ToolCall) (string, error) {
			return "", backendErr
		})

	assert.Equal(t, "call-2", result.CallID)
	assert.True(t, result.IsError)
	assert.Equal(t,
		"An error occurred while executing the tool: connection refused",
		result.Content)
}

func TestSafeInvoke_Panic(t *testing.T) {
	call := ToolCall{ID: "call-3", Name: "remove_file"}

	result := SafeInvoke(context.Background(), call,
		func(ctx context.Context, c ToolCall) (string, error) {
			panic("nil map write")
		})

	assert.Equal(t, "call-3", result.CallID)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "An error occurred while executing the tool: ")
	assert.Contains(t, result.Content, "nil map write")
}

func TestSafeInvoke_AlwaysProducesResult(t *testing.T) {
	// Every call must resolve to exactly one result, whatever the handler
	// does.
	handlers := []Handler{
		func(ctx context.Context, c ToolCall) (string, error) { return "ok", nil },
		func(ctx context.Context, c ToolCall) (string, error) { return "", errors.New("boom") },
		func(ctx context.Context, c ToolCall) (string, error) { panic(errors.New("wrapped")) },
	}

	for i, h := range handlers {
		result := SafeInvoke(context.Background(), ToolCall{ID: "c"}, h)
		assert.Equal(t, "c", result.CallID, "handler %d", i)
	}
}
