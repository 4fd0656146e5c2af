package ai

import "context"

// CompletionRequest satu kali prompt/response ke completion backend
type CompletionRequest struct {
	System      string
	Prompt      string
	JSON        bool // minta response_format json_object
	Temperature float32
	MaxTokens   int
}

// Completer port untuk text completion. A nil Completer means the backend
// is not configured.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Embedder port untuk embedding query semantic search
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
