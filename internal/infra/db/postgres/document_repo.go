package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

type DocumentRepository struct {
	db *sql.DB
}

var (
	_ documents.Repository = (*DocumentRepository)(nil)
	_ documents.Searcher   = (*DocumentRepository)(nil)
)

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// FindDocument maps the external document_id to documents.id
func (r *DocumentRepository) FindDocument(ctx context.Context, documentID string) (string, error) {
	const q = `SELECT id FROM documents WHERE document_id=$1 LIMIT 1;`

	var id string
	if err := r.db.QueryRowContext(ctx, q, documentID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", documents.ErrDocumentNotFound
		}
		return "", fmt.Errorf("query document: %w", err)
	}
	return id, nil
}

// UpsertAnalysis insert/update document_analyses by (document_id, analysis_version).
// A single statement, so concurrent writers for the same key resolve last-writer-wins.
func (r *DocumentRepository) UpsertAnalysis(ctx context.Context, a *documents.StoredAnalysis) error {
	const q = `
INSERT INTO document_analyses
  (document_id, analysis_version, summary, key_entities, model_used, processing_time_ms, updated_at)
VALUES ($1,$2,$3,$4::jsonb,$5,$6,$7)
ON CONFLICT (document_id, analysis_version) DO UPDATE SET
  summary = EXCLUDED.summary,
  key_entities = EXCLUDED.key_entities,
  model_used = EXCLUDED.model_used,
  processing_time_ms = EXCLUDED.processing_time_ms,
  updated_at = EXCLUDED.updated_at;`

	entities := a.Entities
	if entities == nil {
		entities = []documents.Entity{}
	}
	payload, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}
	version := a.AnalysisVersion
	if version == "" {
		version = documents.AnalysisVersion
	}
	updated := a.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, q,
		a.DocumentID, version, a.Summary, string(payload), a.ModelUsed, a.ProcessingTimeMS, updated,
	); err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}

// ListDocuments returns documents newest first with the current-version summary.
// Search matches title, content and extracted entity names.
func (r *DocumentRepository) ListDocuments(ctx context.Context, lq documents.ListQuery) ([]*documents.Document, error) {
	qb := psql.
		Select(
			"d.id", "d.document_id", "COALESCE(d.title,'')", "COALESCE(d.document_type,'')",
			"d.release_date", "COALESCE(d.source_url,'')", "COALESCE(da.summary,'')",
		).
		From("documents d").
		LeftJoin("document_analyses da ON d.id = da.document_id AND da.analysis_version = ?", documents.AnalysisVersion)

	if lq.Search != "" {
		pat := likePattern(lq.Search)
		qb = qb.Where(sq.Or{
			sq.ILike{"d.title": pat},
			sq.ILike{"d.content": pat},
			sq.Expr(`EXISTS (SELECT 1 FROM jsonb_array_elements(COALESCE(da.key_entities,'[]'::jsonb)) entity WHERE (entity->>'name') ILIKE ?)`, pat),
		})
	}
	if lq.DocumentType != "" {
		qb = qb.Where(sq.Eq{"d.document_type": lq.DocumentType})
	}

	limit, offset := normalizePage(lq.Limit, lq.Offset)
	qb = qb.OrderBy("d.release_date DESC NULLS LAST", "d.id").Limit(limit).Offset(offset)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := []*documents.Document{}
	for rows.Next() {
		var (
			d        documents.Document
			released sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.DocumentID, &d.Title, &d.DocumentType, &released, &d.SourceURL, &d.AISummary); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if released.Valid {
			t := released.Time
			d.ReleaseDate = &t
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// SearchSimilar orders documents by cosine distance to vector (pgvector).
func (r *DocumentRepository) SearchSimilar(ctx context.Context, vector []float32, limit int) ([]*documents.Document, error) {
	const q = `
SELECT id, document_id, COALESCE(title,''), release_date,
       1 - (content_vector <=> $1::vector) AS similarity
FROM documents
WHERE content_vector IS NOT NULL
ORDER BY content_vector <=> $1::vector
LIMIT $2;`

	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, q, vectorLiteral(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	defer rows.Close()

	out := []*documents.Document{}
	for rows.Next() {
		var (
			d        documents.Document
			released sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.DocumentID, &d.Title, &released, &d.Similarity); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if released.Valid {
			t := released.Time
			d.ReleaseDate = &t
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func normalizePage(limit, offset int) (uint64, uint64) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return uint64(limit), uint64(offset)
}
