package codelet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	defaults "github.com/Paranoid-AF/codelet/default"
)

// Config represents the user's codelet configuration.
type Config struct {
	Version    int              `json:"version"`
	Generation GenerationConfig `json:"generation"`
	Context    ContextConfig    `json:"context"`
	Prompt     PromptConfig     `json:"prompt"`
	Telemetry  TelemetryConfig  `json:"telemetry"`
}

// GenerationConfig holds settings for the generation API.
type GenerationConfig struct {
	Provider    string   `json:"provider"`
	BaseURL     string   `json:"base_url,omitempty"`
	APIKey      string   `json:"api_key,omitempty"`
	Model       string   `json:"model"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	TimeoutMS   int      `json:"timeout_ms,omitempty"`
}

// ContextConfig holds the thresholds of context extraction.
type ContextConfig struct {
	ContextLines       int `json:"context_lines,omitempty"`
	SmallDocumentChars int `json:"small_document_chars,omitempty"`
	SmallPrefixChars   int `json:"small_prefix_chars,omitempty"`
	ScopeLookback      int `json:"scope_lookback,omitempty"`
	SignatureLines     int `json:"signature_lines,omitempty"`
}

// PromptConfig holds prompt rendering settings. Nil toggles take their
// default value.
type PromptConfig struct {
	Mode             string `json:"mode"`
	MaxPromptTokens  int    `json:"max_prompt_tokens,omitempty"`
	DefaultRequest   string `json:"default_request,omitempty"`
	SingleLineWindow int    `json:"single_line_window,omitempty"`
	MaxDependencies  int    `json:"max_dependencies,omitempty"`
	MaxSymbols       int    `json:"max_symbols,omitempty"`

	IncludeStructure *bool `json:"include_structure,omitempty"`
	IncludeSyntax    *bool `json:"include_syntax,omitempty"`
	IncludeScope     *bool `json:"include_scope,omitempty"`
	IncludeImports   *bool `json:"include_imports,omitempty"`
	IncludeProject   *bool `json:"include_project,omitempty"`
	IncludeStyle     *bool `json:"include_style,omitempty"`
	RedactSecrets    *bool `json:"redact_secrets,omitempty"`
}

// TelemetryConfig holds telemetry settings.
type TelemetryConfig struct {
	OpenRouter *bool `json:"openrouter,omitempty"`
}

// ConfigDir returns the config directory path.
// Resolution order: $CODELET_CONFIG_DIR > $XDG_CONFIG_HOME/codelet > ~/.config/codelet
func ConfigDir() string {
	if dir := os.Getenv("CODELET_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "codelet")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "codelet-config")
	}
	return filepath.Join(home, ".config", "codelet")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// PromptPath returns the custom prompt template path.
func PromptPath() string {
	return filepath.Join(ConfigDir(), "prompt.md")
}

// SocketPath returns the daemon socket path.
// Resolution order: $CODELET_SOCKET > $XDG_RUNTIME_DIR/codelet.sock > /tmp/codelet-<uid>.sock
func SocketPath() string {
	if path := os.Getenv("CODELET_SOCKET"); path != "" {
		return path
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "codelet.sock")
	}
	return fmt.Sprintf("/tmp/codelet-%d.sock", os.Getuid())
}

// DefaultConfig returns the default configuration from the embedded default_config.json.
func DefaultConfig() *Config {
	var cfg Config
	if err := json.Unmarshal(defaults.DefaultConfigJSON, &cfg); err != nil {
		panic("codelet: invalid embedded default_config.json: " + err.Error())
	}
	return &cfg
}

// LoadConfig loads config from disk or returns defaults if not found.
func LoadConfig() (*Config, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDefaults(&cfg, DefaultConfig())
	return &cfg, nil
}

// applyDefaults fills missing fields of cfg from def.
func applyDefaults(cfg, def *Config) {
	if cfg.Version == 0 {
		cfg.Version = def.Version
	}

	g, dg := &cfg.Generation, def.Generation
	if g.Provider == "" {
		g.Provider = dg.Provider
	}
	if g.Model == "" {
		g.Model = dg.Model
	}
	if g.MaxTokens == 0 {
		g.MaxTokens = dg.MaxTokens
	}
	if g.Temperature == 0 {
		g.Temperature = dg.Temperature
	}
	if g.TimeoutMS == 0 {
		g.TimeoutMS = dg.TimeoutMS
	}

	c, dc := &cfg.Context, def.Context
	if c.ContextLines == 0 {
		c.ContextLines = dc.ContextLines
	}
	if c.SmallDocumentChars == 0 {
		c.SmallDocumentChars = dc.SmallDocumentChars
	}
	if c.SmallPrefixChars == 0 {
		c.SmallPrefixChars = dc.SmallPrefixChars
	}
	if c.ScopeLookback == 0 {
		c.ScopeLookback = dc.ScopeLookback
	}
	if c.SignatureLines == 0 {
		c.SignatureLines = dc.SignatureLines
	}

	p, dp := &cfg.Prompt, def.Prompt
	if p.Mode == "" {
		p.Mode = dp.Mode
	}
	if p.MaxPromptTokens == 0 {
		p.MaxPromptTokens = dp.MaxPromptTokens
	}
	if p.DefaultRequest == "" {
		p.DefaultRequest = dp.DefaultRequest
	}
	if p.SingleLineWindow == 0 {
		p.SingleLineWindow = dp.SingleLineWindow
	}
	if p.MaxDependencies == 0 {
		p.MaxDependencies = dp.MaxDependencies
	}
	if p.MaxSymbols == 0 {
		p.MaxSymbols = dp.MaxSymbols
	}
	toggles := []struct {
		dst **bool
		src *bool
	}{
		{&p.IncludeStructure, dp.IncludeStructure},
		{&p.IncludeSyntax, dp.IncludeSyntax},
		{&p.IncludeScope, dp.IncludeScope},
		{&p.IncludeImports, dp.IncludeImports},
		{&p.IncludeProject, dp.IncludeProject},
		{&p.IncludeStyle, dp.IncludeStyle},
		{&p.RedactSecrets, dp.RedactSecrets},
		{&cfg.Telemetry.OpenRouter, def.Telemetry.OpenRouter},
	}
	for _, f := range toggles {
		if *f.dst == nil {
			*f.dst = f.src
		}
	}
}

// Enabled returns *b, or true when b is nil.
func Enabled(b *bool) bool {
	return b == nil || *b
}

// Providers lists the supported generation providers.
var Providers = []string{"openai", "openrouter", "anthropic", "gemini", "deepseek", "mistral", "groq", "ollama", "lmstudio"}

// ProviderRequiresKey reports whether the provider needs an API key. Local
// servers do not.
func ProviderRequiresKey(provider string) bool {
	switch provider {
	case "ollama", "lmstudio":
		return false
	}
	return true
}

func knownProvider(provider string) bool {
	for _, p := range Providers {
		if p == provider {
			return true
		}
	}
	return false
}

// ValidateConfig checks configuration for potential issues and returns warnings.
func ValidateConfig(cfg *Config) []string {
	var warnings []string
	if cfg == nil {
		return warnings
	}
	provider := ResolveProvider(cfg)
	if !knownProvider(provider) {
		if ResolveBaseURL(cfg) == "" {
			warnings = append(warnings, fmt.Sprintf("unknown provider %q and no base_url; requests will fail", provider))
		} else {
			warnings = append(warnings, fmt.Sprintf("unknown provider %q; using base_url as an OpenAI-compatible endpoint", provider))
		}
	}
	if ProviderRequiresKey(provider) && ResolveAPIKey(cfg) == "" {
		warnings = append(warnings, "api_key is not configured; set CODELET_API_KEY or generation.api_key")
	}
	if ResolveModel(cfg) == "" {
		warnings = append(warnings, "generation.model is empty")
	}
	if cfg.Generation.Temperature < 0 || cfg.Generation.Temperature > 2 {
		warnings = append(warnings, fmt.Sprintf("generation.temperature %.2f is outside [0, 2]", cfg.Generation.Temperature))
	}
	if cfg.Generation.TimeoutMS < 0 {
		warnings = append(warnings, "generation.timeout_ms is negative; the default is used")
	}
	switch cfg.Prompt.Mode {
	case ModeLine, ModeSnippet, "":
	default:
		warnings = append(warnings, fmt.Sprintf("prompt.mode %q is not %q or %q", cfg.Prompt.Mode, ModeLine, ModeSnippet))
	}
	if cfg.Prompt.MaxPromptTokens > 0 && cfg.Prompt.MaxPromptTokens < 256 {
		warnings = append(warnings, "prompt.max_prompt_tokens is below 256; most prompts will be truncated to code only")
	}
	return warnings
}

// ResolveProvider returns the generation provider.
// Priority: $CODELET_PROVIDER env > config value.
func ResolveProvider(cfg *Config) string {
	if p := os.Getenv("CODELET_PROVIDER"); p != "" {
		return p
	}
	if cfg != nil {
		return cfg.Generation.Provider
	}
	return ""
}

// ResolveBaseURL returns the generation API base URL. Empty means the
// provider default.
// Priority: $CODELET_BASE_URL env > config value.
func ResolveBaseURL(cfg *Config) string {
	if url := os.Getenv("CODELET_BASE_URL"); url != "" {
		return url
	}
	if cfg != nil {
		return cfg.Generation.BaseURL
	}
	return ""
}

// ResolveAPIKey returns the generation API key.
// Priority: $CODELET_API_KEY env > config value.
func ResolveAPIKey(cfg *Config) string {
	if key := os.Getenv("CODELET_API_KEY"); key != "" {
		return key
	}
	if cfg != nil {
		return cfg.Generation.APIKey
	}
	return ""
}

// ResolveModel returns the generation model name.
// Priority: $CODELET_MODEL env > config value.
func ResolveModel(cfg *Config) string {
	if model := os.Getenv("CODELET_MODEL"); model != "" {
		return model
	}
	if cfg != nil {
		return cfg.Generation.Model
	}
	return ""
}

// OpenRouterTelemetryEnabled returns whether OpenRouter attribution headers should be sent.
func OpenRouterTelemetryEnabled(cfg *Config) bool {
	if cfg == nil {
		return true
	}
	return Enabled(cfg.Telemetry.OpenRouter)
}
