package lang

import (
	"strings"
	"sync"
)

// Factory builds an analyzer for a canonical language id.
type Factory func(id string) Analyzer

// Registry maps language ids to analyzers. Analyzers are created on first
// lookup and shared afterwards; they are read-only once built.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	aliases   map[string]string
	cache     map[string]Analyzer
}

// NewRegistry returns a registry with every built-in language registered.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		aliases:   make(map[string]string),
		cache:     make(map[string]Analyzer),
	}
	r.Register(Generic, newGeneric, "plaintext", "text")
	r.Register("javascript", newJavaScript, "js", "jsx", "mjs", "cjs")
	r.Register("javascriptreact", newJavaScript)
	r.Register("typescript", newTypeScript, "ts", "mts", "cts")
	r.Register("typescriptreact", newTypeScript, "tsx")
	r.Register("python", newPython, "py", "python3")
	r.Register("go", newGo, "golang")
	r.Register("java", newJava)
	r.Register("csharp", newCSharp, "cs", "c#")
	r.Register("kotlin", newKotlin, "kt", "kts")
	r.Register("c", newC, "h")
	r.Register("cpp", newCpp, "c++", "cxx", "cc", "hpp")
	r.Register("rust", newRust, "rs")
	r.Register("shellscript", newShell, "sh", "bash", "zsh", "shell")
	return r
}

// Register adds or replaces a language. A cached analyzer for id is
// discarded.
func (r *Registry) Register(id string, f Factory, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id = strings.ToLower(id)
	r.factories[id] = f
	delete(r.cache, id)
	for _, a := range aliases {
		r.aliases[strings.ToLower(a)] = id
	}
}

// Lookup returns the analyzer for a language id or alias, falling back to the
// generic analyzer.
func (r *Registry) Lookup(languageID string) Analyzer {
	id := r.canonical(languageID)

	r.mu.RLock()
	a, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return a
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.cache[id]; ok {
		return a
	}
	a = r.factories[id](id)
	r.cache[id] = a
	return a
}

// Generic returns the fallback analyzer.
func (r *Registry) Generic() Analyzer {
	return r.Lookup(Generic)
}

// Known reports whether languageID has a dedicated analyzer.
func (r *Registry) Known(languageID string) bool {
	return r.canonical(languageID) != Generic
}

// Languages returns the canonical ids of all registered languages.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for id := range r.factories {
		out = append(out, id)
	}
	return out
}

func (r *Registry) canonical(languageID string) string {
	id := strings.ToLower(strings.TrimSpace(languageID))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if alias, ok := r.aliases[id]; ok {
		id = alias
	}
	if _, ok := r.factories[id]; !ok {
		return Generic
	}
	return id
}
