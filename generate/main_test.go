package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Paranoid-AF/codelet"
)

// stubCompleter records prompts and answers with a fixed output.
type stubCompleter struct {
	output  string
	err     error
	prompts []string
	// hook runs inside Generate before it returns.
	hook func(ctx context.Context) error
}

func (s *stubCompleter) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.hook != nil {
		if err := s.hook(ctx); err != nil {
			return "", err
		}
	}
	return s.output, s.err
}

func testConfig() *codelet.Config {
	cfg := codelet.DefaultConfig()
	off := false
	cfg.Prompt.IncludeProject = &off
	return cfg
}

// testEngine creates an engine around gen that never reads project files.
func testEngine(t *testing.T, gen Completer) *Engine {
	t.Helper()
	e := NewEngineWithCompleter(testConfig(), "", gen)
	t.Cleanup(e.Close)
	return e
}

const addJS = "function add(a, b) {\n  \n}\n"

func addRequest() *codelet.Request {
	return &codelet.Request{
		RequestID:  7,
		SessionID:  "s1",
		FileName:   "add.js",
		LanguageID: "javascript",
		Text:       addJS,
		Line:       1,
		Character:  2,
		TabSize:    2,
	}
}

func TestCompleteNotConfigured(t *testing.T) {
	e := testEngine(t, nil)

	resp := e.Complete(context.Background(), addRequest())
	if resp.Error == nil {
		t.Fatal("expected error")
	}
	if resp.Error.Code != codelet.ErrCodeNotConfigured {
		t.Errorf("expected code %q, got %q", codelet.ErrCodeNotConfigured, resp.Error.Code)
	}
}

func TestNewEngineWithConfigRequiresKey(t *testing.T) {
	t.Setenv("CODELET_API_KEY", "")
	t.Setenv("CODELET_PROVIDER", "")

	cfg := testConfig()
	cfg.Generation.APIKey = ""
	e := NewEngineWithConfig(cfg, "")
	defer e.Close()
	if e.generator != nil {
		t.Error("expected no generator without an API key")
	}

	cfg = testConfig()
	cfg.Generation.Provider = "ollama"
	local := NewEngineWithConfig(cfg, "")
	defer local.Close()
	if local.generator == nil {
		t.Error("local providers should not need an API key")
	}
}

func TestCompleteFormatsOutput(t *testing.T) {
	stub := &stubCompleter{output: "```js\n  return a + b;\n```"}
	e := testEngine(t, stub)

	resp := e.Complete(context.Background(), addRequest())
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if resp.Completion != "return a + b;" {
		t.Errorf("expected %q, got %q", "return a + b;", resp.Completion)
	}
	if len(stub.prompts) != 1 {
		t.Fatalf("expected one generation call, got %d", len(stub.prompts))
	}
	if !strings.Contains(stub.prompts[0], "<CURSOR>") {
		t.Error("prompt should mark the cursor")
	}
}

func TestCompletePassesUserPrompt(t *testing.T) {
	stub := &stubCompleter{output: "return a + b;"}
	e := testEngine(t, stub)

	req := addRequest()
	req.Prompt = "add the two numbers"
	e.Complete(context.Background(), req)

	if len(stub.prompts) != 1 || !strings.Contains(stub.prompts[0], "add the two numbers") {
		t.Errorf("expected user request in prompt, got %q", stub.prompts)
	}
}

func TestCompleteSnippetMode(t *testing.T) {
	stub := &stubCompleter{output: "const sum = a + b;\nreturn sum;"}
	e := testEngine(t, stub)

	req := addRequest()
	req.Mode = codelet.ModeSnippet
	resp := e.Complete(context.Background(), req)

	want := "const sum = a + b;\n  return sum;"
	if resp.Completion != want {
		t.Errorf("expected %q, got %q", want, resp.Completion)
	}
}

func TestCompleteEmptyText(t *testing.T) {
	stub := &stubCompleter{output: "x"}
	e := testEngine(t, stub)

	req := addRequest()
	req.Text = "  \n"
	resp := e.Complete(context.Background(), req)
	if resp.Completion != "" || resp.Error != nil {
		t.Errorf("expected empty response, got %+v", resp)
	}
	if len(stub.prompts) != 0 {
		t.Error("generator should not be called for empty text")
	}
}

func TestCompleteCancelledBeforeGeneration(t *testing.T) {
	stub := &stubCompleter{output: "return a + b;"}
	e := testEngine(t, stub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := e.Complete(ctx, addRequest())
	if resp.Error == nil || resp.Error.Code != codelet.ErrCodeCancelled {
		t.Fatalf("expected cancelled error, got %+v", resp)
	}
	if len(stub.prompts) != 0 {
		t.Error("generator should not be called after cancellation")
	}
}

func TestCompleteDiscardsLateResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stub := &stubCompleter{
		output: "return a + b;",
		hook: func(context.Context) error {
			cancel()
			return nil
		},
	}
	e := testEngine(t, stub)

	resp := e.Complete(ctx, addRequest())
	if resp.Completion != "" {
		t.Errorf("late result should be discarded, got %q", resp.Completion)
	}
	if resp.Error == nil || resp.Error.Code != codelet.ErrCodeCancelled {
		t.Errorf("expected cancelled error, got %+v", resp.Error)
	}
}

func TestCompleteTimeout(t *testing.T) {
	stub := &stubCompleter{
		hook: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	cfg := testConfig()
	cfg.Generation.TimeoutMS = 20
	e := NewEngineWithCompleter(cfg, "", stub)
	defer e.Close()

	resp := e.Complete(context.Background(), addRequest())
	if resp.Error == nil || resp.Error.Code != codelet.ErrCodeTimeout {
		t.Fatalf("expected timeout error, got %+v", resp)
	}
}

func TestCompleteAPIError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("status 500")}
	e := testEngine(t, stub)

	resp := e.Complete(context.Background(), addRequest())
	if resp.Error == nil {
		t.Fatal("expected error")
	}
	if resp.Error.Code != codelet.ErrCodeAPI {
		t.Errorf("expected code %q, got %q", codelet.ErrCodeAPI, resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "status 500") {
		t.Errorf("expected message to carry the cause, got %q", resp.Error.Message)
	}
}

func TestContextError(t *testing.T) {
	if err := contextError(context.Background()); err != nil {
		t.Errorf("expected nil for live context, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := contextError(ctx); !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()
	if err := contextError(ctx); !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestInspect(t *testing.T) {
	e := testEngine(t, nil)

	rec, text, err := e.Inspect(context.Background(), addRequest())
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if rec.CurrentScope != "inside function add" {
		t.Errorf("expected scope %q, got %q", "inside function add", rec.CurrentScope)
	}
	if rec.ExpectedIndentation != "  " {
		t.Errorf("expected indentation %q, got %q", "  ", rec.ExpectedIndentation)
	}
	if !strings.Contains(text, "function add(a, b) {\n  <CURSOR>\n}") {
		t.Errorf("prompt should contain the code with the cursor marker:\n%s", text)
	}
}

func TestInspectDetectsLanguage(t *testing.T) {
	e := testEngine(t, nil)

	req := &codelet.Request{
		FileName:  "tool.py",
		Text:      "def run(args):\n    \n",
		Line:      1,
		Character: 4,
	}
	rec, _, err := e.Inspect(context.Background(), req)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if rec.LanguageID != "python" {
		t.Errorf("expected python, got %q", rec.LanguageID)
	}
	if rec.CurrentScope != "inside function run" {
		t.Errorf("expected scope %q, got %q", "inside function run", rec.CurrentScope)
	}
}

func TestInspectClampsPosition(t *testing.T) {
	e := testEngine(t, nil)

	req := addRequest()
	req.Line = 99
	req.Character = 99
	rec, _, err := e.Inspect(context.Background(), req)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if rec.CursorOffset != len(addJS) {
		t.Errorf("expected cursor at end of text (%d), got %d", len(addJS), rec.CursorOffset)
	}
}
