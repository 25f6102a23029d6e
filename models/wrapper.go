// Package models binds language-model providers to the agent's Model
// interface via langchaingo.
package models

import (
	"context"

	"github.com/tmc/langchaingo/llms"

	"github.com/mfalcone/eva"
)

// Wrapper wraps an llms.Model and implements eva.Model. Provider tool calls
// are normalized into eva.ToolCall on the way out; calls with unparseable
// argument payloads land in Response.BadCalls so the agent can answer them
// with an error result instead of dropping them.
//
// Example usage:
//
//	llm, _ := ollama.New(ollama.WithModel("llama3.1"))
//	model := models.NewWrapper(llm)
//	resp, err := model.GenerateContent(ctx, messages, llms.WithTools(tools))
type Wrapper struct {
	model llms.Model
}

// NewWrapper creates a Wrapper around the given llms.Model.
func NewWrapper(model llms.Model) *Wrapper {
	return &Wrapper{model: model}
}

// Unwrap returns the underlying llms.Model.
func (m *Wrapper) Unwrap() llms.Model {
	return m.model
}

// GenerateContent implements eva.Model.
func (m *Wrapper) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*eva.Response, error) {
	raw, err := m.model.GenerateContent(ctx, messages, options...)
	if err != nil {
		return nil, err
	}
	return convertResponse(raw), nil
}

// convertResponse maps the first provider choice into an eva.Response.
func convertResponse(raw *llms.ContentResponse) *eva.Response {
	resp := &eva.Response{Raw: raw}
	if len(raw.Choices) == 0 {
		return resp
	}

	choice := raw.Choices[0]
	resp.Text = choice.Content
	resp.StopReason = choice.StopReason

	for _, tc := range choice.ToolCalls {
		call, err := eva.NormalizeToolCall(tc)
		if err != nil {
			resp.BadCalls = append(resp.BadCalls, eva.BadToolCall{Call: call, Err: err})
			continue
		}
		resp.ToolCalls = append(resp.ToolCalls, call)
	}
	return resp
}

var _ eva.Model = (*Wrapper)(nil)
