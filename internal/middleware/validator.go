package middleware

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

const maxDocumentIDLength = 255

// ValidateDocumentID checks the external document id of an analysis request
func ValidateDocumentID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("document_id is required")
	}
	if len(id) > maxDocumentIDLength {
		return fmt.Errorf("document_id too long (max %d chars)", maxDocumentIDLength)
	}
	return nil
}

// NormalizeAnalysisTypes lowercases and de-duplicates the requested types in
// request order. Unknown types are kept and simply match no task. A nil slice
// (field omitted) means the default types; an explicit empty list stays empty.
func NormalizeAnalysisTypes(in []documents.AnalysisType) []documents.AnalysisType {
	if in == nil {
		return append([]documents.AnalysisType{}, documents.DefaultAnalysisTypes...)
	}
	out := make([]documents.AnalysisType, 0, len(in))
	seen := map[documents.AnalysisType]bool{}
	for _, t := range in {
		t = documents.AnalysisType(strings.ToLower(strings.TrimSpace(string(t))))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SanitizeString removes null bytes and control characters
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateOffset clamps negative offsets to zero
func ValidateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
