package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// systemMessage accompanies every prompt. The prompt text carries its own
// instructions, so this only sets the role.
const systemMessage = "You are a code completion engine. Answer with code only."

// providerBaseURLs holds the OpenAI-compatible endpoint of each provider.
var providerBaseURLs = map[string]string{
	"openai":     "https://api.openai.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
	"anthropic":  "https://api.anthropic.com/v1/",
	"gemini":     "https://generativelanguage.googleapis.com/v1beta/openai/",
	"deepseek":   "https://api.deepseek.com/v1",
	"mistral":    "https://api.mistral.ai/v1",
	"groq":       "https://api.groq.com/openai/v1",
	"ollama":     "http://localhost:11434/v1",
	"lmstudio":   "http://localhost:1234/v1",
}

// DefaultBaseURL returns the endpoint of a known provider, or "".
func DefaultBaseURL(provider string) string {
	return providerBaseURLs[provider]
}

// Completer turns a prompt into raw model output.
type Completer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator performs text generation via an OpenAI-compatible API.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	stop        []string
}

// NewGenerator creates a generator for the given endpoint. An empty baseURL
// uses the provider default. telemetry sends OpenRouter attribution headers.
func NewGenerator(provider, baseURL, apiKey, model string, maxTokens int, temperature float64, stop []string, telemetry bool) *Generator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL(provider)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	transport := http.DefaultTransport
	if telemetry && provider == "openrouter" {
		transport = &attributionTransport{base: transport}
	}
	cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second, Transport: transport}

	return &Generator{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		stop:        stop,
	}
}

// Generate sends the prompt as a single user message and returns the text of
// the first choice. Failures are not retried.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: float32(g.temperature),
		Stop:        g.stop,
	}

	slog.Debug("sending completion request", "model", g.model, "prompt_bytes", len(prompt))
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	slog.Debug("received completion", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op (no subprocess to manage).
func (g *Generator) Close() {}

// attributionTransport adds the OpenRouter app attribution headers.
type attributionTransport struct {
	base http.RoundTripper
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Title", "codelet - inline code completion")
	req.Header.Set("HTTP-Referer", "https://github.com/Paranoid-AF/codelet")
	return t.base.RoundTrip(req)
}
