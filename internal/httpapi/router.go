package httpapi

import (
	"fakellm/internal/alias"
	"fakellm/internal/engine"
	"fakellm/internal/modelset"
)

// Router maps an incoming model name to its loaded handle. It only reads
// structures that are immutable after construction, so a single Router is
// safe for any number of concurrent request handlers.
type Router struct {
	aliases *alias.Registry
	models  *modelset.Set
}

// NewRouter pairs the per-instance alias registry with the loaded set.
func NewRouter(reg *alias.Registry, set *modelset.Set) *Router {
	return &Router{aliases: reg, models: set}
}

// Entry is the result of routing one request: the canonical identifier and
// the handle serving it.
type Entry struct {
	Canonical string
	Handle    engine.Handle
}

// Route resolves name through the alias registry and looks up the handle.
// Any name that does not land on a configured model reports as unknown:
// either resolution fails outright, or the name resolved (repository
// references resolve trivially) but that identifier was never loaded. Both
// are client errors, not server faults.
func (rt *Router) Route(name string) (Entry, error) {
	canonical, err := rt.aliases.Resolve(name)
	if err != nil {
		return Entry{}, err
	}
	h, err := rt.models.Get(canonical)
	if err != nil {
		if modelset.IsNotFound(err) {
			return Entry{}, alias.ErrUnknownModel(name)
		}
		return Entry{}, err
	}
	return Entry{Canonical: canonical, Handle: h}, nil
}

// Canonicals lists the configured model identifiers.
func (rt *Router) Canonicals() []string { return rt.models.Canonicals() }
