package alias

// Spec describes a built-in model: its short alias, the hub repository it
// lives in, and the GGUF file to fetch from that repository.
type Spec struct {
	Alias    string
	RepoID   string
	Filename string
}

// builtinSpecs is the process-wide table of models the fixture knows by
// short name. It is never mutated; per-instance registries overlay it.
var builtinSpecs = map[string]Spec{
	"qwen-2.5-coder-3b": {
		Alias:    "qwen-2.5-coder-3b",
		RepoID:   "Qwen/Qwen2.5-Coder-3B-Instruct-GGUF",
		Filename: "qwen2.5-coder-3b-instruct-q4_k_m.gguf",
	},
	"qwen-2.5-coder-1.5b": {
		Alias:    "qwen-2.5-coder-1.5b",
		RepoID:   "Qwen/Qwen2.5-Coder-1.5B-Instruct-GGUF",
		Filename: "qwen2.5-coder-1.5b-instruct-q4_k_m.gguf",
	},
	"llama-3.2-3b-instruct": {
		Alias:    "llama-3.2-3b-instruct",
		RepoID:   "bartowski/Llama-3.2-3B-Instruct-GGUF",
		Filename: "Llama-3.2-3B-Instruct-Q4_K_M.gguf",
	},
	"smollm3": {
		Alias:    "smollm3",
		RepoID:   "ggml-org/SmolLM3-3B-GGUF",
		Filename: "SmolLM3-Q4_K_M.gguf",
	},
	"gemma-3-1b": {
		Alias:    "gemma-3-1b",
		RepoID:   "unsloth/gemma-3-1b-it-GGUF",
		Filename: "gemma-3-1b-it-Q4_K_M.gguf",
	},
	"gemma-3-270m": {
		Alias:    "gemma-3-270m",
		RepoID:   "unsloth/gemma-3-270m-it-GGUF",
		Filename: "gemma-3-270m-it-Q4_K_M.gguf",
	},
}

// BuiltinSpec returns the built-in Spec for a short alias, if present.
func BuiltinSpec(name string) (Spec, bool) {
	s, ok := builtinSpecs[name]
	return s, ok
}

// SpecForRepo returns the built-in Spec whose repository matches repoID.
// Arbitrary repositories outside the table return ok=false; callers fall
// back to listing the repository contents.
func SpecForRepo(repoID string) (Spec, bool) {
	for _, s := range builtinSpecs {
		if s.RepoID == repoID {
			return s, true
		}
	}
	return Spec{}, false
}

// BuiltinAliases lists the short names in the built-in table.
func BuiltinAliases() []string {
	out := make([]string, 0, len(builtinSpecs))
	for a := range builtinSpecs {
		out = append(out, a)
	}
	return out
}
