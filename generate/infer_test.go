package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// recorded is the last request seen by a chatServer.
type recorded struct {
	path   string
	header http.Header
	body   map[string]any
}

// chatServer answers chat completion requests with content.
func chatServer(t *testing.T, content string, status int) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		rec.header = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&rec.body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestGeneratorGenerate(t *testing.T) {
	srv, last := chatServer(t, "return 1;", http.StatusOK)
	g := NewGenerator("openai", srv.URL+"/v1", "sk-test", "test-model", 64, 0.2, []string{"\n\n"}, false)

	out, err := g.Generate(context.Background(), "complete this")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "return 1;" {
		t.Errorf("expected %q, got %q", "return 1;", out)
	}
	if last.path != "/v1/chat/completions" {
		t.Errorf("unexpected path %q", last.path)
	}
	if got := last.header.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("unexpected authorization header %q", got)
	}
	if last.header.Get("X-Title") != "" {
		t.Error("attribution headers should only be sent to OpenRouter")
	}
	if last.body["model"] != "test-model" {
		t.Errorf("unexpected model %v", last.body["model"])
	}
	msgs, _ := last.body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", last.body["messages"])
	}
	user, _ := msgs[1].(map[string]any)
	if user["content"] != "complete this" {
		t.Errorf("unexpected user message %v", user)
	}
}

func TestGeneratorOpenRouterAttribution(t *testing.T) {
	srv, last := chatServer(t, "x", http.StatusOK)
	g := NewGenerator("openrouter", srv.URL, "key", "m", 16, 0, nil, true)

	if _, err := g.Generate(context.Background(), "p"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if last.header.Get("X-Title") == "" || last.header.Get("HTTP-Referer") == "" {
		t.Error("expected OpenRouter attribution headers")
	}
}

func TestGeneratorAPIError(t *testing.T) {
	srv, _ := chatServer(t, "", http.StatusInternalServerError)
	g := NewGenerator("openai", srv.URL, "key", "m", 16, 0, nil, false)

	_, err := g.Generate(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "chat completion") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestDefaultBaseURL(t *testing.T) {
	if DefaultBaseURL("ollama") != "http://localhost:11434/v1" {
		t.Errorf("unexpected ollama URL %q", DefaultBaseURL("ollama"))
	}
	if DefaultBaseURL("unknown") != "" {
		t.Error("unknown providers have no default URL")
	}
}
