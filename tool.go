package eva

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/mfalcone/eva/schema"
)

var (
	// ErrUnknownTool is returned when the model asks for a tool that is not
	// in the catalog.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidToolArgs is returned when tool arguments fail to parse or
	// validate against the tool's schema.
	ErrInvalidToolArgs = errors.New("invalid tool arguments")
)

// Tool is a single named action the model can invoke.
//
// Responsibility split:
//   - Tool: execute one action, return a plain descriptive string. Expected
//     domain failures ("folder does not exist", "invalid email address
//     format") are part of that string contract and must NOT be returned as
//     errors.
//   - Middleware ([SafeInvoke]): convert returned errors (integration-level
//     faults) into error-flagged ToolResults.
type Tool interface {
	// Name returns the tool's identifier used in tool calls.
	Name() string

	// Description returns the usage contract shown to the LLM. Tools that
	// accept relative dates must instruct the model to call
	// get_current_time first and pass the result as current_date.
	Description() string

	// Schema returns the JSON Schema for the tool's parameters,
	// or nil if the tool takes none.
	Schema() map[string]any

	// Call executes the tool. Args have already been validated against
	// Schema by the catalog.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// Group is a family of related tools sharing one backend client.
// Backend clients are constructed once per group and reused for the group's
// lifetime; groups are not safe for concurrent sessions without external
// synchronization.
type Group interface {
	Tools() []Tool
}

// ToolFunc adapts a function to the Tool interface.
type ToolFunc struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, args map[string]any) (string, error)
}

// NewTool creates a Tool from a function.
func NewTool(
	name, description string,
	sc map[string]any,
	fn func(ctx context.Context, args map[string]any) (string, error),
) *ToolFunc {
	return &ToolFunc{
		name:        name,
		description: description,
		schema:      sc,
		fn:          fn,
	}
}

// Name returns the tool's identifier.
func (t *ToolFunc) Name() string { return t.name }

// Description returns the usage contract shown to the LLM.
func (t *ToolFunc) Description() string { return t.description }

// Schema returns the JSON Schema for the tool's parameters.
func (t *ToolFunc) Schema() map[string]any { return t.schema }

// Call executes the tool function.
func (t *ToolFunc) Call(ctx context.Context, args map[string]any) (string, error) {
	return t.fn(ctx, args)
}

// Catalog holds every tool the agent may dispatch to, keyed by unique name.
// Parameter schemas are compiled at registration so model-produced arguments
// can be validated before execution.
type Catalog struct {
	order   []Tool
	byName  map[string]Tool
	schemas map[string]*schema.Schema
}

// NewCatalog builds a catalog from the given groups.
// Panics if two tools share a name.
func NewCatalog(groups ...Group) *Catalog {
	c := &Catalog{
		byName:  make(map[string]Tool),
		schemas: make(map[string]*schema.Schema),
	}
	for _, g := range groups {
		for _, t := range g.Tools() {
			c.Register(t)
		}
	}
	return c
}

// Register adds a tool to the catalog.
// Panics on a duplicate name or an invalid parameter schema; both are
// programming errors, not runtime conditions.
func (c *Catalog) Register(t Tool) {
	if t == nil {
		panic("eva: Register called with nil tool")
	}
	if _, exists := c.byName[t.Name()]; exists {
		panic(fmt.Sprintf("eva: duplicate tool name %q", t.Name()))
	}
	if raw := t.Schema(); raw != nil {
		compiled, err := schema.Compile(raw)
		if err != nil {
			panic(fmt.Sprintf("eva: tool %q has invalid schema: %v", t.Name(), err))
		}
		c.schemas[t.Name()] = compiled
	}
	c.byName[t.Name()] = t
	c.order = append(c.order, t)
}

// Get retrieves a tool by name.
func (c *Catalog) Get(name string) (Tool, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// All returns the tools in registration order.
func (c *Catalog) All() []Tool {
	out := make([]Tool, len(c.order))
	copy(out, c.order)
	return out
}

// Validate checks args against the named tool's compiled schema.
// Tools without a schema accept anything.
func (c *Catalog) Validate(name string, args map[string]any) error {
	compiled, ok := c.schemas[name]
	if !ok {
		return nil
	}
	if err := compiled.Validate(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToolArgs, err)
	}
	return nil
}

// LLMTools returns the catalog in the shape the model provider expects.
func (c *Catalog) LLMTools() []llms.Tool {
	out := make([]llms.Tool, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Schema(),
			},
		})
	}
	return out
}

// ToolCall is a structured request, produced by the model, to execute one
// named tool. It is the single normalized call shape at the trust boundary;
// provider-specific representations are converted via [NormalizeToolCall].
type ToolCall struct {
	// ID correlates this call with its ToolResult. Never empty after
	// normalization.
	ID string `json:"id"`

	// Name is the tool to invoke.
	Name string `json:"name"`

	// Args are the parsed arguments.
	Args map[string]any `json:"args,omitempty"`

	// Raw is the original JSON arguments string as produced by the model,
	// kept for echoing the call back to the provider and for logging.
	Raw string `json:"raw,omitempty"`
}

// ToolResult is the outcome of exactly one ToolCall. One is always produced,
// even on fault, so the conversation never stalls waiting for a tool.
type ToolResult struct {
	// CallID is the back-reference to ToolCall.ID.
	CallID string `json:"call_id"`

	// Content is the conversation-safe result text.
	Content string `json:"content"`

	// IsError marks results produced from a fault.
	IsError bool `json:"is_error"`
}

// NormalizeToolCall converts a provider tool call into the normalized shape.
// A missing ID is replaced with a generated one so correlation always works.
// Malformed argument JSON is an error; the caller is expected to surface it
// through the middleware so the model can correct itself.
func NormalizeToolCall(tc llms.ToolCall) (ToolCall, error) {
	call := ToolCall{ID: tc.ID}
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	if tc.FunctionCall == nil {
		return call, fmt.Errorf("%w: tool call %s has no function payload", ErrInvalidToolArgs, call.ID)
	}
	call.Name = tc.FunctionCall.Name
	call.Raw = tc.FunctionCall.Arguments

	if call.Raw != "" {
		if err := json.Unmarshal([]byte(call.Raw), &call.Args); err != nil {
			return call, fmt.Errorf("%w: arguments for %s are not valid JSON: %v",
				ErrInvalidToolArgs, call.Name, err)
		}
	}
	if call.Args == nil {
		call.Args = map[string]any{}
	}
	return call, nil
}

// LLMToolCall converts the normalized call back into the provider shape,
// used when replaying conversation history to the model.
func (c ToolCall) LLMToolCall() llms.ToolCall {
	raw := c.Raw
	if raw == "" {
		if data, err := json.Marshal(c.Args); err == nil {
			raw = string(data)
		}
	}
	return llms.ToolCall{
		ID:   c.ID,
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      c.Name,
			Arguments: raw,
		},
	}
}

// StringArg extracts a string argument, falling back to def when the key is
// absent, null, or empty.
func StringArg(args map[string]any, key, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// IntArg extracts an integer argument. JSON numbers arrive as float64.
func IntArg(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return def
}

// OptString extracts an optional string argument. Empty strings count as
// unset, mirroring the update semantics of the calendar tools.
func OptString(args map[string]any, key string) (string, bool) {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// OptInt extracts an optional integer argument. Unlike OptString, an explicit
// zero counts as set: a reminder of 0 minutes is a valid update.
func OptInt(args map[string]any, key string) (int, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

// StringsArg extracts a string-slice argument.
func StringsArg(args map[string]any, key string) []string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
