package documents

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	// FindDocument resolves an external document id to the internal id.
	// Returns ErrDocumentNotFound when no row matches.
	FindDocument(ctx context.Context, documentID string) (string, error)
	UpsertAnalysis(ctx context.Context, a *StoredAnalysis) error
	ListDocuments(ctx context.Context, q ListQuery) ([]*Document, error)
}

// Searcher port untuk semantic search (pgvector)
type Searcher interface {
	SearchSimilar(ctx context.Context, vector []float32, limit int) ([]*Document, error)
}

// ArchiveStore port untuk snapshot hasil analisis di object storage
type ArchiveStore interface {
	PutJSON(ctx context.Context, key string, payload []byte) (string, error)
}

// ListQuery filter untuk listing dokumen
type ListQuery struct {
	Search       string
	DocumentType string
	Limit        int
	Offset       int
}
