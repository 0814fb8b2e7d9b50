// Package defaults provides embedded default assets (config, prompt template
// and prompt boilerplate).
package defaults

import (
	"embed"
	"io/fs"
	"strings"
)

//go:embed default_prompt.md
var DefaultPrompt string

//go:embed default_config.json
var DefaultConfigJSON []byte

//go:embed prompts/system.md
var SystemPrompt string

//go:embed prompts
var prompts embed.FS

// ProviderAddendum returns the extra system instructions for a provider, or
// "" when there are none.
func ProviderAddendum(provider string) string {
	if provider == "" || strings.ContainsAny(provider, "/.") {
		return ""
	}
	data, err := prompts.ReadFile("prompts/provider/" + provider + ".md")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ModelAddenda returns the extra system instructions whose file name appears
// in the model name, in file name order.
func ModelAddenda(model string) []string {
	model = strings.ToLower(model)
	entries, err := fs.ReadDir(prompts, "prompts/model")
	if err != nil || model == "" {
		return nil
	}
	var out []string
	for _, e := range entries {
		key := strings.TrimSuffix(e.Name(), ".md")
		if !strings.Contains(model, key) {
			continue
		}
		data, err := prompts.ReadFile("prompts/model/" + e.Name())
		if err == nil {
			out = append(out, strings.TrimSpace(string(data)))
		}
	}
	return out
}
