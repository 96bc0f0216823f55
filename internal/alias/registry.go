// Package alias maps user-facing model names to canonical hub repository
// references. A name containing a path separator is already canonical; a
// bare name must be a registered alias. Alias values are always repository
// references, never other aliases, so resolution is a single hop.
package alias

import (
	"fmt"
	"strings"
)

// IsRepoRef reports whether name is repository-reference shaped
// (contains a path separator, e.g. "unsloth/gemma-3-270m-it-GGUF").
func IsRepoRef(name string) bool { return strings.Contains(name, "/") }

// Registry resolves aliases to canonical repository references. A Registry
// is immutable once built: per-instance extensions are produced by Extend,
// which copies the receiver, so concurrent server instances never share
// mutable alias state.
type Registry struct {
	entries map[string]string
}

// NewRegistry returns a Registry seeded with the built-in model table.
func NewRegistry() *Registry {
	entries := make(map[string]string, len(builtinSpecs))
	for a, s := range builtinSpecs {
		entries[a] = s.RepoID
	}
	return &Registry{entries: entries}
}

// Resolve maps name to its canonical repository reference. Repository
// references pass through unchanged regardless of registry contents.
func (r *Registry) Resolve(name string) (string, error) {
	if IsRepoRef(name) {
		return name, nil
	}
	if canonical, ok := r.entries[name]; ok {
		return canonical, nil
	}
	return "", ErrUnknownModel(name)
}

// Register adds alias -> canonical. The canonical side must be a repository
// reference; pointing an alias at another alias would create a transitive
// chain and is rejected. Re-registering an identical mapping is a no-op;
// remapping an alias to a different canonical is an error.
func (r *Registry) Register(alias, canonical string) error {
	if alias == "" || IsRepoRef(alias) {
		return ErrInvalidAlias(fmt.Sprintf("invalid alias %q: aliases must be non-empty bare names", alias))
	}
	if !IsRepoRef(canonical) {
		return ErrInvalidAlias(fmt.Sprintf("alias %q target %q is not a canonical repository reference", alias, canonical))
	}
	if existing, ok := r.entries[alias]; ok {
		if existing == canonical {
			return nil
		}
		return ErrInvalidAlias(fmt.Sprintf("alias %q already maps to %q, refusing remap to %q", alias, existing, canonical))
	}
	r.entries[alias] = canonical
	return nil
}

// Extend returns a copy of the registry with the batch applied. Every
// target is resolved against the receiver (the pre-batch canonical set),
// never against other batch entries, so the outcome is independent of map
// iteration order and forward references between batch entries fail.
func (r *Registry) Extend(batch map[string]string) (*Registry, error) {
	entries := make(map[string]string, len(r.entries)+len(batch))
	for a, c := range r.entries {
		entries[a] = c
	}
	next := &Registry{entries: entries}
	for a, target := range batch {
		canonical, err := r.Resolve(target)
		if err != nil {
			return nil, ErrInvalidAlias(fmt.Sprintf("alias %q target %q does not resolve to a known model", a, target))
		}
		if err := next.Register(a, canonical); err != nil {
			return nil, err
		}
	}
	return next, nil
}
