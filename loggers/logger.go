// Package loggers provides a logging hook for the agent loop.
package loggers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"gopkg.in/yaml.v3"

	"github.com/mfalcone/eva/agent"
)

// LoggerHook logs every model round-trip and tool call on the conversation
// loop. Structured data is logged as YAML with block scalars for easy
// reading. Nothing is truncated - full content is always logged.
type LoggerHook struct {
	out io.Writer
}

// NewLoggerHook creates a LoggerHook that writes to stdout.
func NewLoggerHook() *LoggerHook {
	return &LoggerHook{out: os.Stdout}
}

// NewLoggerHookWithWriter creates a LoggerHook that writes to the given
// writer.
func NewLoggerHookWithWriter(w io.Writer) *LoggerHook {
	return &LoggerHook{out: w}
}

// logEvent logs an event header with timestamp.
func (h *LoggerHook) logEvent(name string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(h.out, "\n>>> [%s]: %s\n", name, timestamp)
}

// log writes a line without any prefix.
func (h *LoggerHook) log(format string, args ...any) {
	fmt.Fprintf(h.out, format+"\n", args...)
}

func (h *LoggerHook) logYAML(v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		h.log("(failed to marshal: %v)", err)
		return
	}
	fmt.Fprint(h.out, string(data))
}

// BeforeModelCall logs the request messages before a model call.
func (h *LoggerHook) BeforeModelCall(ctx context.Context, event agent.BeforeModelCallEvent) {
	h.logEvent(fmt.Sprintf("BeforeModelCall: session %s", event.SessionID))

	h.log("Request:")
	for i, msg := range event.Request {
		h.log("  [%d] Role: %s", i, msg.Role)
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				h.log("      Content:")
				for _, line := range strings.Split(p.Text, "\n") {
					h.log("        %s", line)
				}
			case llms.ToolCall:
				if p.FunctionCall != nil {
					h.log("      ToolCall: %s(%s)", p.FunctionCall.Name, p.FunctionCall.Arguments)
				}
			case llms.ToolCallResponse:
				h.log("      ToolResult[%s]:", p.ToolCallID)
				for _, line := range strings.Split(p.Content, "\n") {
					h.log("        %s", line)
				}
			}
		}
	}
}

// AfterModelCall logs the response after a model call.
func (h *LoggerHook) AfterModelCall(ctx context.Context, event agent.AfterModelCallEvent) {
	h.logEvent(fmt.Sprintf("AfterModelCall: session %s (duration: %s)", event.SessionID, event.Duration))

	if event.Err != nil {
		h.log("Error: %v", event.Err)
		return
	}
	if event.Response == nil {
		return
	}

	if event.Response.Text != "" {
		h.log("Content:")
		for _, line := range strings.Split(event.Response.Text, "\n") {
			h.log("  %s", line)
		}
	}
	if event.Response.StopReason != "" {
		h.log("StopReason: %s", event.Response.StopReason)
	}
	for _, call := range event.Response.ToolCalls {
		h.log("ToolCall: %s", call.Name)
		h.logYAML(call.Args)
	}
	for _, bad := range event.Response.BadCalls {
		h.log("BadToolCall: %s (%v)", bad.Call.Name, bad.Err)
	}
}

// BeforeToolCall logs the tool call before execution.
func (h *LoggerHook) BeforeToolCall(ctx context.Context, event agent.BeforeToolCallEvent) {
	h.logEvent(fmt.Sprintf("BeforeToolCall: %s", event.Call.Name))
	h.log("Args:")
	h.logYAML(event.Call.Args)
}

// AfterToolCall logs the tool result after execution.
func (h *LoggerHook) AfterToolCall(ctx context.Context, event agent.AfterToolCallEvent) {
	h.logEvent(fmt.Sprintf("AfterToolCall: %s (duration: %s)", event.Call.Name, event.Duration))

	if event.Result.IsError {
		h.log("Error: %s", event.Result.Content)
		return
	}
	h.log("Output:")
	h.logYAML(event.Result.Content)
}

var _ agent.Hooks = (*LoggerHook)(nil)
