// Package generate orchestrates context gathering and model inference to
// generate code completions.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Paranoid-AF/codelet"
	"github.com/Paranoid-AF/codelet/document"
	"github.com/Paranoid-AF/codelet/lang"
	"github.com/Paranoid-AF/codelet/prompt"
)

// DefaultTimeout bounds a completion when the config sets none.
const DefaultTimeout = 10 * time.Second

var (
	// ErrCancelled is returned when the caller gave up on the request.
	ErrCancelled = errors.New("request cancelled")
	// ErrTimeout is returned when generation.timeout_ms elapsed.
	ErrTimeout = errors.New("request timed out")
	// ErrNotConfigured is returned when the provider needs an API key and
	// none is set.
	ErrNotConfigured = errors.New("generation API key not configured; set CODELET_API_KEY or generation.api_key")
)

// Engine orchestrates context gathering and model inference for completions.
type Engine struct {
	config    *codelet.Config
	registry  *lang.Registry
	gatherer  *Gatherer
	builder   *prompt.Builder
	projects  *ProjectCache
	generator Completer
	timeout   time.Duration
}

// NewEngine creates a completion engine from the user's config file and
// custom prompt template. A config that fails to load is replaced by the
// defaults.
func NewEngine() *Engine {
	cfg, err := codelet.LoadConfig()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = codelet.DefaultConfig()
	}

	customPrompt := loadCustomPrompt()
	if customPrompt == "" {
		slog.Debug("no custom prompt, using built-in layout")
	}

	return NewEngineWithConfig(cfg, customPrompt)
}

// NewEngineWithConfig creates an engine whose generator talks to the
// provider configured in cfg. The generator is left unset when the provider
// needs an API key and none is configured.
func NewEngineWithConfig(cfg *codelet.Config, customPrompt string) *Engine {
	var gen Completer
	provider := codelet.ResolveProvider(cfg)
	apiKey := codelet.ResolveAPIKey(cfg)
	if apiKey != "" || !codelet.ProviderRequiresKey(provider) {
		gen = NewGenerator(
			provider,
			codelet.ResolveBaseURL(cfg),
			apiKey,
			codelet.ResolveModel(cfg),
			cfg.Generation.MaxTokens,
			cfg.Generation.Temperature,
			cfg.Generation.Stop,
			codelet.OpenRouterTelemetryEnabled(cfg),
		)
	} else {
		slog.Warn("generation API key not configured", "provider", provider)
	}
	return NewEngineWithCompleter(cfg, customPrompt, gen)
}

// NewEngineWithCompleter creates an engine around a custom Completer. A nil
// completer makes every completion fail with ErrNotConfigured.
func NewEngineWithCompleter(cfg *codelet.Config, customPrompt string, gen Completer) *Engine {
	registry := lang.NewRegistry()
	timeout := DefaultTimeout
	if cfg.Generation.TimeoutMS > 0 {
		timeout = time.Duration(cfg.Generation.TimeoutMS) * time.Millisecond
	}
	return &Engine{
		config:    cfg,
		registry:  registry,
		gatherer:  NewGatherer(registry, cfg),
		builder:   prompt.NewBuilder(prompt.OptionsFromConfig(cfg, customPrompt), registry),
		projects:  NewProjectCache(),
		generator: gen,
		timeout:   timeout,
	}
}

// loadCustomPrompt loads a custom prompt template.
// Returns empty string if no custom prompt exists.
func loadCustomPrompt() string {
	promptPath := codelet.PromptPath()
	data, err := os.ReadFile(promptPath)
	if err != nil {
		return ""
	}
	slog.Info("loaded custom prompt", "path", promptPath)
	return string(data)
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *codelet.Config {
	return e.config
}

// Close releases resources held by the engine.
func (e *Engine) Close() {
	if g, ok := e.generator.(*Generator); ok {
		g.Close()
	}
	if e.projects != nil {
		e.projects.Close()
	}
}

// WarmProject pre-populates the project info cache for root.
func (e *Engine) WarmProject(ctx context.Context, root string) {
	e.projects.Gather(ctx, root)
}

// Complete processes a completion request and returns a response.
func (e *Engine) Complete(ctx context.Context, req *codelet.Request) *codelet.Response {
	if e.generator == nil {
		return errorResponse(codelet.ErrCodeNotConfigured, ErrNotConfigured)
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.Prompt) == "" {
		return &codelet.Response{}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rec, text, err := e.prepare(ctx, req)
	if err != nil {
		slog.Debug("context error", "error", err)
		if req.Manual {
			return errorResponse(codelet.ErrCodeContext, err)
		}
		return &codelet.Response{}
	}

	slog.Debug("context gathered",
		"language", rec.LanguageID,
		"scope", rec.CurrentScope,
		"strategy", rec.RangeStrategy,
		"symbols", len(rec.Symbols),
	)

	// Check for cancellation before expensive inference
	if err := contextError(ctx); err != nil {
		return cancelledResponse(err)
	}

	slog.Debug("prompt", "text", text)

	output, err := e.generator.Generate(ctx, text)

	// Results that arrive after cancellation are discarded.
	if err := contextError(ctx); err != nil {
		return cancelledResponse(err)
	}
	if err != nil {
		slog.Error("generation error", "error", err)
		return errorResponse(codelet.ErrCodeAPI, err)
	}

	completion := FormatCompletion(output, rec, FormatOptions{
		Mode:         e.mode(req),
		TabSize:      req.TabSize,
		InsertSpaces: insertSpaces(req),
	})
	return &codelet.Response{Completion: completion}
}

// Inspect returns the context record and the prompt that Complete would
// send for req, without calling the model.
func (e *Engine) Inspect(ctx context.Context, req *codelet.Request) (*codelet.ContextRecord, string, error) {
	return e.prepare(ctx, req)
}

// prepare builds the document, context record, project info and prompt.
// A panic anywhere in the pipeline becomes an error.
func (e *Engine) prepare(ctx context.Context, req *codelet.Request) (rec *codelet.ContextRecord, text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, text, err = nil, "", fmt.Errorf("build context: %v", r)
		}
	}()

	languageID := req.LanguageID
	if languageID == "" {
		languageID = lang.Detect(req.FileName, req.Text)
	}
	doc := document.New(req.FileName, languageID, req.Text)
	pos := doc.Clamp(document.Position{Line: req.Line, Character: req.Character})

	rec = e.gatherer.Gather(doc, pos, GatherOptions{
		TabSize:      req.TabSize,
		InsertSpaces: insertSpaces(req),
	})

	var project *codelet.ProjectInfo
	if e.builder.Options().IncludeProject {
		project = e.projects.Lookup(ctx, req.FileName, req.ProjectRoot)
	}

	text = e.builder.Build(rec, project, req.Prompt, e.mode(req))
	return rec, text, nil
}

func (e *Engine) mode(req *codelet.Request) string {
	if req.Mode == codelet.ModeLine || req.Mode == codelet.ModeSnippet {
		return req.Mode
	}
	return e.builder.Options().Mode
}

func insertSpaces(req *codelet.Request) bool {
	return req.InsertSpaces == nil || *req.InsertSpaces
}

// contextError maps a done context to ErrTimeout or ErrCancelled.
func contextError(ctx context.Context) error {
	switch {
	case ctx.Err() == nil:
		return nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	default:
		return ErrCancelled
	}
}

func cancelledResponse(err error) *codelet.Response {
	if errors.Is(err, ErrTimeout) {
		return errorResponse(codelet.ErrCodeTimeout, err)
	}
	return errorResponse(codelet.ErrCodeCancelled, err)
}

func errorResponse(code string, err error) *codelet.Response {
	return &codelet.Response{
		Error: &codelet.Error{
			Code:    code,
			Message: err.Error(),
		},
	}
}
