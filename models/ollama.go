package models

import (
	"github.com/tmc/langchaingo/llms/ollama"
)

// NewOllama creates a Wrapper over a local Ollama server. serverURL may be
// empty, in which case the client's default (http://localhost:11434) is used.
func NewOllama(model, serverURL string) (*Wrapper, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewWrapper(llm), nil
}
