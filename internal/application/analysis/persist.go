package analysis

import (
	"context"
	"fmt"

	"github.com/bryanwahyu/docsense/internal/application"
	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

// Persister maps an analysis result onto the versioned upsert in the store.
type Persister struct {
	Repo  documents.Repository
	Clock application.Clock
}

// SaveAnalysis resolves documentID and upserts the row keyed by
// (internal id, documents.AnalysisVersion).
//
// It fails with documents.ErrStoreUnavailable when no store is configured and
// with documents.ErrDocumentNotFound when the document was never seeded; in the
// latter case nothing is written.
func (p *Persister) SaveAnalysis(ctx context.Context, documentID, summary string, entities []documents.Entity, modelUsed string, processingTimeMS int64) error {
	if p == nil || p.Repo == nil {
		return documents.ErrStoreUnavailable
	}

	internalID, err := p.Repo.FindDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("find document %q: %w", documentID, err)
	}

	if entities == nil {
		entities = []documents.Entity{}
	}
	if processingTimeMS < 0 {
		processingTimeMS = 0
	}

	var clock application.Clock = application.SystemClock{}
	if p.Clock != nil {
		clock = p.Clock
	}

	row := &documents.StoredAnalysis{
		DocumentID:       internalID,
		AnalysisVersion:  documents.AnalysisVersion,
		Summary:          summary,
		Entities:         entities,
		ModelUsed:        modelUsed,
		ProcessingTimeMS: processingTimeMS,
		UpdatedAt:        clock.Now().UTC(),
	}
	if err := p.Repo.UpsertAnalysis(ctx, row); err != nil {
		return fmt.Errorf("upsert analysis %q: %w", documentID, err)
	}
	return nil
}
