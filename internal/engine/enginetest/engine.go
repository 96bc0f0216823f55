// Package enginetest provides a deterministic in-memory Engine for tests.
// Handles echo the last user message so callers can assert the request
// made it through routing intact.
package enginetest

import (
	"context"
	"fmt"
	"sync"

	"fakellm/internal/engine"
)

// Engine records loads and hands out echo Handles. Safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	loadErr map[string]error
	loaded  []string
	handles []*Handle
}

// New returns an empty test engine.
func New() *Engine {
	return &Engine{loadErr: make(map[string]error)}
}

// FailLoad makes Load return err for the given canonical identifier.
func (e *Engine) FailLoad(canonical string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadErr[canonical] = err
}

// Load implements engine.Engine.
func (e *Engine) Load(ctx context.Context, canonical string) (engine.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.loadErr[canonical]; err != nil {
		return nil, err
	}
	e.loaded = append(e.loaded, canonical)
	h := &Handle{Canonical: canonical}
	e.handles = append(e.handles, h)
	return h, nil
}

// Loaded returns the canonical identifiers loaded so far, in order.
func (e *Engine) Loaded() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.loaded...)
}

// OpenHandles counts handles that have not been closed.
func (e *Engine) OpenHandles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, h := range e.handles {
		if !h.Closed() {
			n++
		}
	}
	return n
}

// Handle is an echo model instance.
type Handle struct {
	Canonical string

	mu     sync.Mutex
	closed bool
	calls  int
}

// Generate implements engine.Handle by echoing the last user message.
func (h *Handle) Generate(ctx context.Context, req engine.GenRequest) (engine.Result, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return engine.Result{}, fmt.Errorf("generate on closed handle for %s", h.Canonical)
	}
	h.calls++
	h.mu.Unlock()

	last := ""
	for _, m := range req.Messages {
		if m.Role == "user" || m.Role == "" {
			last = m.Content
		}
	}
	content := "echo: " + last
	return engine.Result{
		Content:      content,
		FinishReason: "stop",
		Usage: engine.Usage{
			PromptTokens:     len(req.Messages),
			CompletionTokens: 1,
			TotalTokens:      len(req.Messages) + 1,
		},
	}, nil
}

// Close implements engine.Handle; closing twice is harmless.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Calls returns how many Generate calls the handle served.
func (h *Handle) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}
