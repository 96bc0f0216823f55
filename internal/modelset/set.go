// Package modelset builds and owns the per-instance mapping from canonical
// model identifier to loaded engine handle. The mapping is created once
// during server construction and never mutated afterwards, which makes it
// safe for unsynchronized concurrent reads from request handlers.
package modelset

import (
	"context"
	"fmt"
	"sync"

	"fakellm/internal/alias"
	"fakellm/internal/engine"
)

// Requested is one entry from the caller's requested model list: the
// original name (kept for audit) and its resolved canonical identifier.
type Requested struct {
	Name      string
	Canonical string
}

// ParseRequested resolves and validates the caller's model names. The list
// must be non-empty and no two entries may resolve to the same canonical
// identifier, so the configuration mapping stays 1:1.
func ParseRequested(reg *alias.Registry, names []string) ([]Requested, error) {
	if len(names) == 0 {
		return nil, ErrConfiguration("at least one model is required")
	}
	seen := make(map[string]string, len(names))
	out := make([]Requested, 0, len(names))
	for _, name := range names {
		canonical, err := reg.Resolve(name)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[canonical]; dup {
			return nil, ErrConfiguration(fmt.Sprintf("models %q and %q both resolve to %q", prev, name, canonical))
		}
		seen[canonical] = name
		out = append(out, Requested{Name: name, Canonical: canonical})
	}
	return out, nil
}

// Set is the immutable canonical-identifier -> handle mapping for one
// server instance.
type Set struct {
	handles map[string]engine.Handle
	order   []string

	closeOnce sync.Once
}

// Build loads every requested model through eng. Construction is
// all-or-nothing: on the first failure all previously loaded handles are
// released and the error (carrying the offending identifier) is returned.
func Build(ctx context.Context, eng engine.Engine, requested []Requested) (*Set, error) {
	s := &Set{handles: make(map[string]engine.Handle, len(requested))}
	for _, r := range requested {
		h, err := eng.Load(ctx, r.Canonical)
		if err != nil {
			s.Close()
			return nil, ErrModelLoad(r.Canonical, err)
		}
		s.handles[r.Canonical] = h
		s.order = append(s.order, r.Canonical)
	}
	return s, nil
}

// Get returns the handle for a canonical identifier. A miss means the
// caller routed an identifier that was never loaded.
func (s *Set) Get(canonical string) (engine.Handle, error) {
	h, ok := s.handles[canonical]
	if !ok {
		return nil, ErrNotFound(canonical)
	}
	return h, nil
}

// Canonicals lists the configured identifiers in request order.
func (s *Set) Canonicals() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of configured models.
func (s *Set) Len() int { return len(s.handles) }

// Close releases every handle. Release is best-effort and unconditional;
// the first close error is reported but does not stop the rest. Safe to
// call more than once.
func (s *Set) Close() error {
	var first error
	s.closeOnce.Do(func() {
		for _, id := range s.order {
			if err := s.handles[id].Close(); err != nil && first == nil {
				first = err
			}
		}
	})
	return first
}
