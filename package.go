// Package eva provides the core of a personal-assistant chatbot: a tool
// catalog the language model can invoke, the middleware that makes tool
// failures conversation-safe, and the conversation state shared between them.
//
// The model itself is pluggable (see [Model] and the models subpackage); the
// calendar and mail backends are pluggable too (see backends/gcal and
// backends/gmail). The agent subpackage wires everything into a conversation
// loop.
//
// # Quick Start
//
//	model, _ := models.NewOllama("qwen3:8b", "")
//
//	catalog := eva.NewCatalog(timetools.New(), fstools.New())
//	a := agent.New(model, catalog).
//	    WithSystemPrompt("You are a helpful assistant called Eva.")
//
//	conv, err := a.Invoke(ctx, "default", "what time is it?")
//	fmt.Println(conv.LastAssistantText())
//
// Tools are registered per group. Every tool returns a descriptive string on
// success and on expected domain failure; unexpected faults are converted by
// [SafeInvoke] into error-flagged results so the conversation never dies on a
// backend exception.
package eva
