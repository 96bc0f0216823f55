package alias

import "testing"

func TestResolveRepoRefPassthrough(t *testing.T) {
	r := NewRegistry()
	cases := []string{
		"Qwen/Qwen2.5-Coder-3B-Instruct-GGUF",
		"someone/some-unknown-repo",
	}
	for _, name := range cases {
		got, err := r.Resolve(name)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", name, err)
		}
		if got != name {
			t.Fatalf("Resolve(%q) = %q, want unchanged", name, got)
		}
	}
}

func TestResolveBuiltinAlias(t *testing.T) {
	r := NewRegistry()
	got, err := r.Resolve("gemma-3-270m")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "unsloth/gemma-3-270m-it-GGUF" {
		t.Fatalf("Resolve(gemma-3-270m) = %q", got)
	}
}

func TestResolveUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("does-not-exist")
	if err == nil || !IsUnknownModel(err) {
		t.Fatalf("expected unknown model error, got %v", err)
	}
}

func TestRegisterRejectsAliasTarget(t *testing.T) {
	r := NewRegistry()
	// gemma-3-1b is an alias key; an alias pointing at it would be a
	// transitive chain.
	err := r.Register("my-model", "gemma-3-1b")
	if err == nil || !IsInvalidAlias(err) {
		t.Fatalf("expected invalid alias error, got %v", err)
	}
	for _, b := range BuiltinAliases() {
		if err := r.Register("x-"+b, b); err == nil || !IsInvalidAlias(err) {
			t.Fatalf("target %q: expected invalid alias error, got %v", b, err)
		}
	}
}

func TestRegisterIdempotentAndConflict(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("mine", "org/repo-a"); err != nil {
		t.Fatalf("register: %v", err)
	}
	// identical mapping is a no-op
	if err := r.Register("mine", "org/repo-a"); err != nil {
		t.Fatalf("re-register identical: %v", err)
	}
	// conflicting remap is rejected
	err := r.Register("mine", "org/repo-b")
	if err == nil || !IsInvalidAlias(err) {
		t.Fatalf("expected invalid alias on remap, got %v", err)
	}
	if got, _ := r.Resolve("mine"); got != "org/repo-a" {
		t.Fatalf("mapping changed after rejected remap: %q", got)
	}
}

func TestRegisterRejectsRepoShapedAlias(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("org/alias", "org/repo"); err == nil || !IsInvalidAlias(err) {
		t.Fatalf("expected invalid alias for repo-shaped alias, got %v", err)
	}
	if err := r.Register("", "org/repo"); err == nil || !IsInvalidAlias(err) {
		t.Fatalf("expected invalid alias for empty alias, got %v", err)
	}
}

func TestExtendResolvesTargetsAgainstBase(t *testing.T) {
	r := NewRegistry()
	ext, err := r.Extend(map[string]string{
		"GPT-X": "qwen-2.5-coder-3b",                   // builtin alias target
		"GPT-Y": "Qwen/Qwen2.5-Coder-3B-Instruct-GGUF", // repo ref target
	})
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	x, err := ext.Resolve("GPT-X")
	if err != nil {
		t.Fatalf("resolve GPT-X: %v", err)
	}
	y, err := ext.Resolve("GPT-Y")
	if err != nil {
		t.Fatalf("resolve GPT-Y: %v", err)
	}
	if x != y || x != "Qwen/Qwen2.5-Coder-3B-Instruct-GGUF" {
		t.Fatalf("GPT-X=%q GPT-Y=%q, want both the qwen repo", x, y)
	}
	// base registry is untouched
	if _, err := r.Resolve("GPT-X"); err == nil {
		t.Fatal("extension leaked into the base registry")
	}
}

func TestExtendRejectsForwardReference(t *testing.T) {
	r := NewRegistry()
	// "second" only exists inside the same batch; resolution runs against
	// the pre-batch set so the outcome cannot depend on iteration order.
	_, err := r.Extend(map[string]string{
		"second": "gemma-3-270m",
		"first":  "second",
	})
	if err == nil || !IsInvalidAlias(err) {
		t.Fatalf("expected invalid alias for forward reference, got %v", err)
	}
}

func TestExtendRejectsUnknownTarget(t *testing.T) {
	r := NewRegistry()
	_, err := r.Extend(map[string]string{"bad": "no-such-model"})
	if err == nil || !IsInvalidAlias(err) {
		t.Fatalf("expected invalid alias, got %v", err)
	}
}

func TestBuiltinSpecLookups(t *testing.T) {
	s, ok := BuiltinSpec("gemma-3-270m")
	if !ok || s.RepoID != "unsloth/gemma-3-270m-it-GGUF" || s.Filename == "" {
		t.Fatalf("unexpected spec: %+v ok=%v", s, ok)
	}
	if _, ok := BuiltinSpec("nope"); ok {
		t.Fatal("expected miss for unknown alias")
	}
	byRepo, ok := SpecForRepo("unsloth/gemma-3-270m-it-GGUF")
	if !ok || byRepo.Alias != "gemma-3-270m" {
		t.Fatalf("SpecForRepo: %+v ok=%v", byRepo, ok)
	}
}
