package mysql

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

var _ documents.Repository = (*DocumentRepository)(nil)

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) FindDocument(ctx context.Context, documentID string) (string, error) {
	const q = `SELECT id FROM documents WHERE document_id=? LIMIT 1;`

	var id string
	if err := r.db.QueryRowContext(ctx, q, documentID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", documents.ErrDocumentNotFound
		}
		return "", fmt.Errorf("query document: %w", err)
	}
	return id, nil
}

// UpsertAnalysis relies on a UNIQUE KEY (document_id, analysis_version)
func (r *DocumentRepository) UpsertAnalysis(ctx context.Context, a *documents.StoredAnalysis) error {
	const q = `
INSERT INTO document_analyses
  (document_id, analysis_version, summary, key_entities, model_used, processing_time_ms, updated_at)
VALUES (?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  summary=VALUES(summary), key_entities=VALUES(key_entities), model_used=VALUES(model_used),
  processing_time_ms=VALUES(processing_time_ms), updated_at=VALUES(updated_at);
`
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

func (r *DocumentRepository) ListDocuments(ctx context.Context, lq documents.ListQuery) ([]*documents.Document, error) {
	qb := sq.
		Select(
			"d.id", "d.document_id", "COALESCE(d.title,'')", "COALESCE(d.document_type,'')",
			"d.release_date", "COALESCE(d.source_url,'')", "COALESCE(da.summary,'')",
		).
		From("documents d").
		LeftJoin("document_analyses da ON d.id = da.document_id AND da.analysis_version = ?", documents.AnalysisVersion)

	if lq.Search != "" {
		pat := likePattern(lq.Search)
		qb = qb.Where(sq.Or{
			sq.Like{"d.title": pat},
			sq.Like{"d.content": pat},
			sq.Expr("JSON_SEARCH(COALESCE(da.key_entities, JSON_ARRAY()), 'one', ?, NULL, '$[*].name') IS NOT NULL", pat),
		})
	}
	if lq.DocumentType != "" {
		qb = qb.Where(sq.Eq{"d.document_type": lq.DocumentType})
	}

	limit, offset := pageOrDefault(lq.Limit, lq.Offset)
	qb = qb.OrderBy("d.release_date IS NULL", "d.release_date DESC", "d.id").Limit(limit).Offset(offset)

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
