package analysis

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

// SummarySystemPrompt asks for a short factual summary.
func SummarySystemPrompt() string {
	return "Write a precise, factual summary of the document (at most 3 sentences). " +
		"Do not add information that is not in the text. Answer in the language of the document."
}

// EntityPrompt builds the single user message for entity extraction.
// The model must answer with one JSON object only.
func EntityPrompt(text string) string {
	categories := make([]string, 0, len(documents.EntityTypes))
	for _, t := range documents.EntityTypes {
		categories = append(categories, string(t))
	}

	return fmt.Sprintf(`Extract the entities mentioned in the text. Categories: %s.
Return one JSON object only (no markdown, no commentary) following this schema:
{"entities":[{"name":"","type":"","context":"","confidence":0.0}]}
- type must be one of the categories above.
- context is the short phrase the entity appears in.
- confidence is a number between 0 and 1.

Text:
%s`, strings.Join(categories, ", "), text)
}
