// Package prompt renders a context record into the natural-language prompt
// sent to the model.
//
// A prompt is an ordered list of named sections kept as structured values
// until the final join. Optional sections can be switched off, and when the
// estimated token count exceeds the budget the truncation pass decides which
// sections survive (see fit).
package prompt

import (
	"log/slog"
	"strings"
	"text/template"

	"github.com/Paranoid-AF/codelet"
	defaults "github.com/Paranoid-AF/codelet/default"
	"github.com/Paranoid-AF/codelet/lang"
)

// CursorMarker marks the cursor in the code section.
const CursorMarker = "<CURSOR>"

// Options is a snapshot of the prompt settings.
type Options struct {
	Provider string
	Model    string
	// Mode is codelet.ModeLine or codelet.ModeSnippet.
	Mode string
	// MaxTokens is the prompt budget in estimated tokens; 0 disables
	// truncation.
	MaxTokens int

	IncludeStructure bool
	IncludeSyntax    bool
	IncludeScope     bool
	IncludeImports   bool
	IncludeProject   bool
	IncludeStyle     bool
	RedactSecrets    bool

	DefaultRequest string
	// Template replaces the default section layout when set.
	Template string

	SingleLineWindow int
	MaxDependencies  int
	MaxSymbols       int
}

// DefaultOptions returns the options of the embedded default config.
func DefaultOptions() Options {
	return OptionsFromConfig(codelet.DefaultConfig(), "")
}

// OptionsFromConfig builds options from cfg and an optional custom template.
func OptionsFromConfig(cfg *codelet.Config, tmpl string) Options {
	p := cfg.Prompt
	return Options{
		Provider:         codelet.ResolveProvider(cfg),
		Model:            codelet.ResolveModel(cfg),
		Mode:             p.Mode,
		MaxTokens:        p.MaxPromptTokens,
		IncludeStructure: codelet.Enabled(p.IncludeStructure),
		IncludeSyntax:    codelet.Enabled(p.IncludeSyntax),
		IncludeScope:     codelet.Enabled(p.IncludeScope),
		IncludeImports:   codelet.Enabled(p.IncludeImports),
		IncludeProject:   codelet.Enabled(p.IncludeProject),
		IncludeStyle:     codelet.Enabled(p.IncludeStyle),
		RedactSecrets:    codelet.Enabled(p.RedactSecrets),
		DefaultRequest:   p.DefaultRequest,
		Template:         tmpl,
		SingleLineWindow: p.SingleLineWindow,
		MaxDependencies:  p.MaxDependencies,
		MaxSymbols:       p.MaxSymbols,
	}
}

func (o Options) withDefaults() Options {
	if o.Mode != codelet.ModeSnippet {
		o.Mode = codelet.ModeLine
	}
	if o.SingleLineWindow <= 0 {
		o.SingleLineWindow = 5
	}
	if o.MaxDependencies <= 0 {
		o.MaxDependencies = 10
	}
	if o.MaxSymbols <= 0 {
		o.MaxSymbols = 40
	}
	if strings.TrimSpace(o.DefaultRequest) == "" {
		o.DefaultRequest = "Complete the code at the cursor."
	}
	return o
}

// Builder renders prompts. It is safe for concurrent use.
type Builder struct {
	opts     Options
	registry *lang.Registry
	tmpl     *template.Template
	system   string
}

// NewBuilder creates a builder. A template that fails to parse is dropped in
// favor of the default layout.
func NewBuilder(opts Options, registry *lang.Registry) *Builder {
	opts = opts.withDefaults()
	b := &Builder{opts: opts, registry: registry, system: systemText(opts.Provider, opts.Model)}
	if strings.TrimSpace(opts.Template) != "" {
		t, err := template.New("prompt").Parse(opts.Template)
		if err != nil {
			slog.Warn("failed to parse prompt template, falling back to default layout", "error", err)
		} else {
			b.tmpl = t
		}
	}
	return b
}

// Options returns the builder's settings.
func (b *Builder) Options() Options {
	return b.opts
}

// Build renders the prompt for rec. mode overrides the configured mode when
// non-empty.
func (b *Builder) Build(rec *codelet.ContextRecord, project *codelet.ProjectInfo, userPrompt, mode string) string {
	opts := b.opts
	if mode == codelet.ModeLine || mode == codelet.ModeSnippet {
		opts.Mode = mode
	}
	secs := b.sections(opts, rec, project, userPrompt)

	layout := layoutFunc(defaultLayout)
	if b.tmpl != nil {
		if _, err := b.execute(secs, rec); err != nil {
			slog.Warn("failed to execute prompt template, falling back to default layout", "error", err)
		} else {
			layout = func(s []section) string { return b.templateLayout(s, rec) }
		}
	}
	return fit(secs, layout, opts.MaxTokens)
}

// systemText joins the fixed boilerplate with the provider and model addenda.
func systemText(provider, model string) string {
	parts := []string{strings.TrimSpace(defaults.SystemPrompt)}
	if add := defaults.ProviderAddendum(provider); add != "" {
		parts = append(parts, add)
	}
	parts = append(parts, defaults.ModelAddenda(model)...)
	return strings.Join(parts, "\n\n")
}

// EstimateTokens approximates the token count of s as one token per four
// bytes.
func EstimateTokens(s string) int {
	return len(s) / 4
}
