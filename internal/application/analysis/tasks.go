package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/docsense/internal/domain/ai"
	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

const (
	SummaryInputLimit  = 12000
	SummaryMaxTokens   = 300
	EntitiesInputLimit = 8000
	EntitiesMaxTokens  = 800
	TaskTemperature    = 0.1
	DefaultTaskTimeout = 45 * time.Second
)

// Tasks is the catalog of analysis operations. Each one wraps a single
// completion call and always yields a usable value: on failure the type's
// default is returned together with the error so callers can report it.
//
// A nil Completer means the backend is not configured; the tasks then return
// their defaults without an error.
type Tasks struct {
	Completer ai.Completer
	// MissingKeySummary is returned by Summary when no Completer is configured.
	MissingKeySummary string
	// Timeout bounds every completion call. Zero means DefaultTaskTimeout.
	Timeout time.Duration
}

// Summary returns a factual summary of at most three sentences.
func (t *Tasks) Summary(ctx context.Context, text string) (string, error) {
	if t.Completer == nil {
		return t.MissingKeySummary, nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout())
	defer cancel()

	out, err := t.Completer.Complete(ctx, ai.CompletionRequest{
		System:      SummarySystemPrompt(),
		Prompt:      truncate(text, SummaryInputLimit),
		Temperature: TaskTemperature,
		MaxTokens:   SummaryMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summary completion: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Entities extracts named entities. The result is never nil.
func (t *Tasks) Entities(ctx context.Context, text string) ([]documents.Entity, error) {
	if t.Completer == nil {
		return []documents.Entity{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout())
	defer cancel()

	out, err := t.Completer.Complete(ctx, ai.CompletionRequest{
		Prompt:      EntityPrompt(truncate(text, EntitiesInputLimit)),
		JSON:        true,
		Temperature: TaskTemperature,
		MaxTokens:   EntitiesMaxTokens,
	})
	if err != nil {
		return []documents.Entity{}, fmt.Errorf("entities completion: %w", err)
	}

	entities, err := ParseEntities(out)
	if err != nil {
		return []documents.Entity{}, err
	}
	return entities, nil
}

func (t *Tasks) timeout() time.Duration {
	if t.Timeout <= 0 {
		return DefaultTaskTimeout
	}
	return t.Timeout
}

// ParseEntities decodes the structured entity payload. Malformed JSON yields
// an error and an empty slice; entries without a name or with an unknown type
// are dropped and confidence is clamped to [0,1].
func ParseEntities(raw string) ([]documents.Entity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}

	var payload struct {
		Entities []struct {
			Name       string  `json:"name"`
			Type       string  `json:"type"`
			Context    string  `json:"context"`
			Confidence float64 `json:"confidence"`
		} `json:"entities"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return []documents.Entity{}, fmt.Errorf("decode entities: %w", err)
	}

	out := make([]documents.Entity, 0, len(payload.Entities))
	for _, e := range payload.Entities {
		name := strings.TrimSpace(e.Name)
		typ := documents.EntityType(strings.ToUpper(strings.TrimSpace(e.Type)))
		if name == "" || !typ.Valid() {
			continue
		}
		out = append(out, documents.Entity{
			Name:       name,
			Type:       typ,
			Context:    strings.TrimSpace(e.Context),
			Confidence: clamp01(e.Confidence),
		})
	}
	return out, nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
