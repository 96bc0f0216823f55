// Package engine is the boundary to the inference runtime. The rest of the
// server treats a model as an opaque Handle obtained from Engine.Load; how
// weights are fetched and executed lives entirely behind this interface.
package engine

import "context"

// Engine loads models by canonical hub repository reference.
type Engine interface {
	// Load fetches and loads the model identified by canonical, returning
	// a Handle ready to generate. Implementations must be safe to call
	// from the constructing goroutine only; Handles must be safe for
	// concurrent Generate calls or serialize internally.
	Load(ctx context.Context, canonical string) (Handle, error)
}

// Handle is a loaded model instance.
type Handle interface {
	// Generate produces a completion for the given request. Each call is
	// stateless: the request carries the full conversation context.
	Generate(ctx context.Context, req GenRequest) (Result, error)
	// Close releases the model resources. Closing twice is harmless.
	Close() error
}

// Message is one conversation turn passed to Generate.
type Message struct {
	Role    string
	Content string
}

// GenRequest captures generation parameters for a single call.
type GenRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// Result summarizes a completed generation.
type Result struct {
	Content      string
	FinishReason string
	Usage        Usage
}

// Usage contains token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
