// Package models contains shared data models used across the ContentForge codebase.
package models

import "context"

// CompletionRequest is the input to a chat-completion call.
type CompletionRequest struct {
	System      string
	Prompt      string
	JSONMode    bool // request a json_object response format
	MaxTokens   int
	Temperature float64
}

// LLMProvider is the core interface all LLM integrations implement.
// Never call a specific vendor SDK directly — always inject this interface.
type LLMProvider interface {
	// Complete sends a system+user prompt pair and returns the raw text response.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Transcribe converts raw audio bytes into plain text.
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	// Name returns the provider identifier (e.g., "openai", "mock").
	Name() string
}
