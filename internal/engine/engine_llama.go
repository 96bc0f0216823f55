//go:build llama

package engine

import (
	"context"
	"runtime"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

const llamaCtxSize = 2048

// llamaEngine loads GGUF models in-process via go-llama.cpp.
type llamaEngine struct {
	hub     *Hub
	threads int
}

// NewLlamaEngine returns the in-process llama.cpp engine. Models are
// fetched through hub before loading.
func NewLlamaEngine(hub *Hub) Engine {
	return &llamaEngine{hub: hub, threads: runtime.NumCPU()}
}

func (e *llamaEngine) Load(ctx context.Context, canonical string) (Handle, error) {
	path, err := e.hub.Fetch(ctx, canonical)
	if err != nil {
		return nil, err
	}
	m, err := llama.New(path, llama.SetContext(llamaCtxSize))
	if err != nil {
		return nil, err
	}
	return &llamaHandle{model: m, threads: e.threads}, nil
}

// llamaHandle owns one loaded model. go-llama.cpp predictions are not
// reentrant, so concurrent Generate calls are serialized on mu.
type llamaHandle struct {
	mu      sync.Mutex
	model   *llama.LLama
	threads int
}

func (h *llamaHandle) Generate(ctx context.Context, req GenRequest) (Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.model == nil {
		return Result{}, ErrDependencyUnavailable("model already closed")
	}

	h.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}
	topP := req.TopP
	if topP <= 0 {
		topP = 0.95
	}
	po := []llama.PredictOption{
		llama.SetTokens(maxTokens),
		llama.SetThreads(h.threads),
		llama.SetTemperature(req.Temperature),
		llama.SetTopP(topP),
	}
	text, err := h.model.Predict(BuildPrompt(req.Messages), po...)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, err
	}
	return Result{Content: text, FinishReason: "stop"}, nil
}

func (h *llamaHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.model != nil {
		h.model.Free()
		h.model = nil
	}
	return nil
}
