package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bryanwahyu/docsense/internal/domain/ai"
)

type capturedChat struct {
	Model          string  `json:"model"`
	Temperature    float32 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	MaxCompletion  int     `json:"max_completion_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, captured *capturedChat, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"quota","type":"insufficient_quota"}}`))
			return
		}
		switch r.URL.Path {
		case "/v1/chat/completions":
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
			_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Eine Zusammenfassung."},"finish_reason":"stop"}]}`))
		case "/v1/embeddings":
			_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.25,-0.5,1]}],"model":"text-embedding-3-small"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete_ChatModel(t *testing.T) {
	t.Parallel()

	var got capturedChat
	srv := newServer(t, &got, http.StatusOK)
	c := NewClient("test-key", srv.URL+"/v1", "", "")

	out, err := c.Complete(context.Background(), ai.CompletionRequest{
		System:      "sys",
		Prompt:      "user text",
		JSON:        true,
		Temperature: 0.1,
		MaxTokens:   800,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Eine Zusammenfassung." {
		t.Fatalf("unexpected content %q", out)
	}
	if got.Model != DefaultChatModel || got.MaxTokens != 800 || got.MaxCompletion != 0 {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.Temperature != 0.1 {
		t.Fatalf("expected temperature 0.1, got %v", got.Temperature)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %+v", got.ResponseFormat)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "user text" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestComplete_ReasoningModel(t *testing.T) {
	t.Parallel()

	var got capturedChat
	srv := newServer(t, &got, http.StatusOK)
	c := NewClient("test-key", srv.URL+"/v1", "o3-mini", "")

	if _, err := c.Complete(context.Background(), ai.CompletionRequest{Prompt: "p", MaxTokens: 300, Temperature: 0.1}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.MaxCompletion != 300 || got.MaxTokens != 0 {
		t.Fatalf("expected max_completion_tokens for reasoning model, got %+v", got)
	}
	if len(got.Messages) != 1 || got.ResponseFormat != nil {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestComplete_QuotaExceeded(t *testing.T) {
	t.Parallel()

	srv := newServer(t, nil, http.StatusTooManyRequests)
	c := NewClient("test-key", srv.URL+"/v1", "", "")

	_, err := c.Complete(context.Background(), ai.CompletionRequest{Prompt: "p"})
	if !errors.Is(err, ai.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestEmbed(t *testing.T) {
	t.Parallel()

	srv := newServer(t, nil, http.StatusOK)
	c := NewClient("test-key", srv.URL+"/v1", "", "")

	vec, err := c.Embed(context.Background(), "mietrecht")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[1] != -0.5 {
		t.Fatalf("unexpected vector %v", vec)
	}
}
