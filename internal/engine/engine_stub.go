//go:build !llama

package engine

import "context"

// NewLlamaEngine returns a stub when compiled without -tags=llama. Load
// fails with a dependency-unavailable error; tests inject their own Engine.
func NewLlamaEngine(hub *Hub) Engine {
	return stubEngine{}
}

type stubEngine struct{}

func (stubEngine) Load(ctx context.Context, canonical string) (Handle, error) {
	return nil, ErrDependencyUnavailable("fakellm built without llama support; rebuild with -tags=llama")
}
