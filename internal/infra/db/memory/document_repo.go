// Package memory is an in-process document store for local runs and tests.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

type analysisKey struct {
	documentID string
	version    string
}

// DocumentRepository keeps documents and analyses in maps guarded by a mutex.
type DocumentRepository struct {
	mu        sync.RWMutex
	nextID    int
	byExtID   map[string]*documents.Document
	contents  map[string]string
	analyses  map[analysisKey]documents.StoredAnalysis
	upsertCnt int
}

// NewDocumentRepository returns an empty store.
func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{
		byExtID:  make(map[string]*documents.Document),
		contents: make(map[string]string),
		analyses: make(map[analysisKey]documents.StoredAnalysis),
	}
}

// Seed registers a document and returns its internal id. Seeding an existing
// external id keeps the original internal id.
func (r *DocumentRepository) Seed(doc documents.Document, content string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byExtID[doc.DocumentID]; ok {
		return existing.ID
	}
	r.nextID++
	d := doc
	d.ID = strconv.Itoa(r.nextID)
	r.byExtID[d.DocumentID] = &d
	r.contents[d.ID] = content
	return d.ID
}

func (r *DocumentRepository) FindDocument(_ context.Context, documentID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byExtID[documentID]
	if !ok {
		return "", documents.ErrDocumentNotFound
	}
	return d.ID, nil
}

// UpsertAnalysis replaces the row for (document, version) in one critical section.
func (r *DocumentRepository) UpsertAnalysis(_ context.Context, a *documents.StoredAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := *a
	row.Entities = append([]documents.Entity(nil), a.Entities...)
	r.analyses[analysisKey{documentID: a.DocumentID, version: a.AnalysisVersion}] = row
	r.upsertCnt++
	return nil
}

// Analysis returns the stored row for an internal id and version.
func (r *DocumentRepository) Analysis(internalID, version string) (documents.StoredAnalysis, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyses[analysisKey{documentID: internalID, version: version}]
	return a, ok
}

// AnalysisCount is the number of stored analysis rows.
func (r *DocumentRepository) AnalysisCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.analyses)
}

// Upserts counts UpsertAnalysis calls.
func (r *DocumentRepository) Upserts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.upsertCnt
}

// ListDocuments mirrors the SQL listing: substring search over title,
// content and entity names, ordered by release date (newest first, undated last).
func (r *DocumentRepository) ListDocuments(_ context.Context, q documents.ListQuery) ([]*documents.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := []*documents.Document{}
	for _, d := range r.byExtID {
		if q.DocumentType != "" && d.DocumentType != q.DocumentType {
			continue
		}
		a, hasAnalysis := r.analyses[analysisKey{documentID: d.ID, version: documents.AnalysisVersion}]
		if needle != "" && !r.matches(d, a, needle) {
			continue
		}
		cp := *d
		if hasAnalysis {
			cp.AISummary = a.Summary
		}
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ReleaseDate, out[j].ReleaseDate
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return out[i].ID < out[j].ID
		default:
			return a.After(*b)
		}
	})

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []*documents.Document{}, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *DocumentRepository) matches(d *documents.Document, a documents.StoredAnalysis, needle string) bool {
	if strings.Contains(strings.ToLower(d.Title), needle) ||
		strings.Contains(strings.ToLower(r.contents[d.ID]), needle) {
		return true
	}
	for _, e := range a.Entities {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			return true
		}
	}
	return false
}
