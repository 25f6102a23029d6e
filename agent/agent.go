// Package agent runs the conversation loop: user text in, model decides
// between answering and calling tools, tool results feed back into the model,
// final text comes out, synchronously or streamed.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/mfalcone/eva"
)

// ErrMaxModelTurns is returned when the model keeps requesting tools past the
// configured turn limit within a single user message.
var ErrMaxModelTurns = errors.New("model turn limit reached")

// DefaultMaxModelTurns bounds model round-trips per user message. A model
// stuck re-requesting a failing tool hits this instead of looping forever.
const DefaultMaxModelTurns = 8

// Agent orchestrates one or more conversations. Each session identifier maps
// to an isolated turn history in the store; the per-session state machine is
// the same for all of them.
//
// Example usage:
//
//	a := agent.New(model, catalog).
//		WithSystemPrompt(prompt).
//		WithStore(store)
//	conv, err := a.Invoke(ctx, sessionID, "what's on my calendar tomorrow?")
//	fmt.Println(conv.LastAssistantText())
type Agent struct {
	model         eva.Model
	catalog       *eva.Catalog
	systemPrompt  string
	store         eva.Store
	hooks         Hooks
	maxModelTurns int
}

// New creates an agent over the given model and tool catalog, with an
// in-memory store and no hooks.
func New(model eva.Model, catalog *eva.Catalog) *Agent {
	return &Agent{
		model:         model,
		catalog:       catalog,
		store:         eva.NewMemoryStore(),
		hooks:         NoopHooks{},
		maxModelTurns: DefaultMaxModelTurns,
	}
}

// WithSystemPrompt sets the system prompt prepended to every model request.
// Returns the agent for chaining.
func (a *Agent) WithSystemPrompt(prompt string) *Agent {
	a.systemPrompt = prompt
	return a
}

// WithStore replaces the conversation store.
// Returns the agent for chaining.
func (a *Agent) WithStore(store eva.Store) *Agent {
	a.store = store
	return a
}

// WithHooks sets the loop observer.
// Returns the agent for chaining.
func (a *Agent) WithHooks(hooks Hooks) *Agent {
	a.hooks = hooks
	return a
}

// WithMaxModelTurns overrides the per-message model round-trip limit.
// Returns the agent for chaining.
func (a *Agent) WithMaxModelTurns(n int) *Agent {
	a.maxModelTurns = n
	return a
}

// Invoke appends user text to the session and runs the loop to completion.
// The returned conversation includes the full history; callers extract the
// answer with Conversation.LastAssistantText or LastToolText.
func (a *Agent) Invoke(ctx context.Context, sessionID, text string) (*eva.Conversation, error) {
	return a.run(ctx, sessionID, text, nil)
}

// Stream is Invoke with incremental output. Assistant text is emitted as
// ChunkAssistantText fragments as the provider produces it; tool activity is
// passed through as ChunkToolCall/ChunkToolResult and callers doing
// token-by-token display should filter for text chunks only.
func (a *Agent) Stream(ctx context.Context, sessionID, text string) *eva.Stream {
	stream := eva.NewStream()
	go func() {
		_, err := a.run(ctx, sessionID, text, stream)
		if err != nil {
			stream.CloseWithError(err)
			return
		}
		stream.Close()
	}()
	return stream
}

func (a *Agent) run(ctx context.Context, sessionID, text string, stream *eva.Stream) (*eva.Conversation, error) {
	conv, err := a.load(sessionID)
	if err != nil {
		return nil, err
	}
	if err := a.persist(conv, eva.UserTurn{Text: text}); err != nil {
		return nil, err
	}

	for turn := 0; ; turn++ {
		if turn >= a.maxModelTurns {
			return conv, fmt.Errorf("%w (%d)", ErrMaxModelTurns, a.maxModelTurns)
		}

		resp, err := a.callModel(ctx, sessionID, conv, stream)
		if err != nil {
			return conv, err
		}

		assistant := eva.AssistantTurn{Text: resp.Text}
		assistant.Calls = append(assistant.Calls, resp.ToolCalls...)
		for _, bad := range resp.BadCalls {
			assistant.Calls = append(assistant.Calls, bad.Call)
		}
		if err := a.persist(conv, assistant); err != nil {
			return conv, err
		}

		if len(assistant.Calls) == 0 {
			return conv, nil
		}

		// Malformed calls are answered, not executed: the error result goes
		// back to the model so it can correct its arguments.
		for _, bad := range resp.BadCalls {
			badErr := bad.Err
			result := eva.SafeInvoke(ctx, bad.Call, func(context.Context, eva.ToolCall) (string, error) {
				return "", badErr
			})
			if err := a.record(conv, stream, result); err != nil {
				return conv, err
			}
		}

		for _, call := range resp.ToolCalls {
			if stream != nil {
				c := call
				stream.Send(eva.Chunk{Kind: eva.ChunkToolCall, Call: &c})
			}
			a.hooks.BeforeToolCall(ctx, BeforeToolCallEvent{SessionID: sessionID, Call: call})
			start := time.Now()
			result := eva.SafeInvoke(ctx, call, a.execute)
			a.hooks.AfterToolCall(ctx, AfterToolCallEvent{
				SessionID: sessionID,
				Call:      call,
				Result:    result,
				Duration:  time.Since(start),
			})
			if err := a.record(conv, stream, result); err != nil {
				return conv, err
			}
		}
	}
}

// callModel performs one provider round-trip, streaming text fragments when a
// stream is attached.
func (a *Agent) callModel(ctx context.Context, sessionID string, conv *eva.Conversation, stream *eva.Stream) (*eva.Response, error) {
	msgs := a.messages(conv)
	opts := []llms.CallOption{llms.WithTools(a.catalog.LLMTools())}
	if stream != nil {
		opts = append(opts, llms.WithStreamingFunc(
			func(_ context.Context, chunk []byte) error {
				if len(chunk) > 0 {
					stream.SendText(string(chunk))
				}
				return nil
			}))
	}

	a.hooks.BeforeModelCall(ctx, BeforeModelCallEvent{SessionID: sessionID, Request: msgs})
	start := time.Now()
	resp, err := a.model.GenerateContent(ctx, msgs, opts...)
	a.hooks.AfterModelCall(ctx, AfterModelCallEvent{
		SessionID: sessionID,
		Request:   msgs,
		Response:  resp,
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	return resp, nil
}

// execute dispatches a single normalized call against the catalog. Errors
// returned here become error-flagged results via SafeInvoke.
func (a *Agent) execute(ctx context.Context, call eva.ToolCall) (string, error) {
	tool, ok := a.catalog.Get(call.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s", eva.ErrUnknownTool, call.Name)
	}
	if err := a.catalog.Validate(call.Name, call.Args); err != nil {
		return "", err
	}
	return tool.Call(ctx, call.Args)
}

// record persists a tool outcome and forwards it to the stream.
func (a *Agent) record(conv *eva.Conversation, stream *eva.Stream, result eva.ToolResult) error {
	if stream != nil {
		r := result
		stream.Send(eva.Chunk{Kind: eva.ChunkToolResult, Result: &r})
	}
	return a.persist(conv, eva.ToolTurn{Result: result})
}

// load rebuilds the session's conversation from the store.
func (a *Agent) load(sessionID string) (*eva.Conversation, error) {
	turns, err := a.store.Snapshot(sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	conv := eva.NewConversation(sessionID)
	for _, t := range turns {
		conv.Append(t)
	}
	return conv, nil
}

// persist appends a turn to both the live conversation and the store.
func (a *Agent) persist(conv *eva.Conversation, t eva.Turn) error {
	conv.Append(t)
	if err := a.store.Append(conv.SessionID, t); err != nil {
		return fmt.Errorf("persisting turn for session %s: %w", conv.SessionID, err)
	}
	return nil
}

// messages converts the turn history into the provider message shape. Tool
// results are replayed with the tool name resolved from the assistant turn
// that requested them.
func (a *Agent) messages(conv *eva.Conversation) []llms.MessageContent {
	turns := conv.Turns()
	msgs := make([]llms.MessageContent, 0, len(turns)+1)
	if a.systemPrompt != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, a.systemPrompt))
	}

	callNames := make(map[string]string)
	for _, t := range turns {
		switch turn := t.(type) {
		case eva.UserTurn:
			msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, turn.Text))

		case eva.AssistantTurn:
			msg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if turn.Text != "" {
				msg.Parts = append(msg.Parts, llms.TextContent{Text: turn.Text})
			}
			for _, call := range turn.Calls {
				callNames[call.ID] = call.Name
				msg.Parts = append(msg.Parts, call.LLMToolCall())
			}
			if len(msg.Parts) > 0 {
				msgs = append(msgs, msg)
			}

		case eva.ToolTurn:
			msgs = append(msgs, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: turn.Result.CallID,
						Name:       callNames[turn.Result.CallID],
						Content:    turn.Result.Content,
					},
				},
			})
		}
	}
	return msgs
}
