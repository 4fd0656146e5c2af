package memory

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

func TestFindDocument(t *testing.T) {
	t.Parallel()

	repo := NewDocumentRepository()
	id := repo.Seed(documents.Document{DocumentID: "doc-1", Title: "Urteil"}, "text")

	got, err := repo.FindDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("FindDocument returned error: %v", err)
	}
	if got != id {
		t.Fatalf("expected internal id %s, got %s", id, got)
	}

	if _, err := repo.FindDocument(context.Background(), "missing"); !errors.Is(err, documents.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestSeedKeepsInternalID(t *testing.T) {
	t.Parallel()

	repo := NewDocumentRepository()
	first := repo.Seed(documents.Document{DocumentID: "doc-1"}, "")
	second := repo.Seed(documents.Document{DocumentID: "doc-1"}, "")
	if first != second {
		t.Fatalf("expected same id, got %s and %s", first, second)
	}
}

func TestUpsertAnalysisOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewDocumentRepository()
	id := repo.Seed(documents.Document{DocumentID: "doc-1"}, "")

	for _, summary := range []string{"first", "second"} {
		err := repo.UpsertAnalysis(ctx, &documents.StoredAnalysis{
			DocumentID:      id,
			AnalysisVersion: documents.AnalysisVersion,
			Summary:         summary,
		})
		if err != nil {
			t.Fatalf("UpsertAnalysis: %v", err)
		}
	}

	if n := repo.AnalysisCount(); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
	row, ok := repo.Analysis(id, documents.AnalysisVersion)
	if !ok || row.Summary != "second" {
		t.Fatalf("expected overwritten summary, got %+v", row)
	}
}

func TestListDocuments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewDocumentRepository()
	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	a := repo.Seed(documents.Document{DocumentID: "a", Title: "Mietrecht", DocumentType: "ruling", ReleaseDate: &older}, "")
	repo.Seed(documents.Document{DocumentID: "b", Title: "Steuerrecht", DocumentType: "law", ReleaseDate: &newer}, "")
	repo.Seed(documents.Document{DocumentID: "c", Title: "Ohne Datum", DocumentType: "ruling"}, "mentions Mietrecht")

	_ = repo.UpsertAnalysis(ctx, &documents.StoredAnalysis{
		DocumentID:      a,
		AnalysisVersion: documents.AnalysisVersion,
		Summary:         "summary a",
		Entities:        []documents.Entity{{Name: "Bundesgerichtshof", Type: documents.EntityOrganization}},
	})

	all, err := repo.ListDocuments(ctx, documents.ListQuery{})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(all) != 3 || all[0].DocumentID != "b" || all[2].DocumentID != "c" {
		t.Fatalf("unexpected order: %v, %v, %v", all[0].DocumentID, all[1].DocumentID, all[2].DocumentID)
	}
	if all[1].AISummary != "summary a" {
		t.Fatalf("expected summary joined, got %q", all[1].AISummary)
	}

	byEntity, _ := repo.ListDocuments(ctx, documents.ListQuery{Search: "bundesgericht"})
	if len(byEntity) != 1 || byEntity[0].DocumentID != "a" {
		t.Fatalf("expected entity search to find a, got %d results", len(byEntity))
	}

	byContent, _ := repo.ListDocuments(ctx, documents.ListQuery{Search: "mietrecht", DocumentType: "ruling"})
	if len(byContent) != 2 {
		t.Fatalf("expected 2 results, got %d", len(byContent))
	}

	paged, _ := repo.ListDocuments(ctx, documents.ListQuery{Limit: 1, Offset: 1})
	if len(paged) != 1 || paged[0].DocumentID != "a" {
		t.Fatalf("unexpected page: %+v", paged)
	}
}

func TestListDocuments_EmptyIsNotNil(t *testing.T) {
	t.Parallel()

	repo := NewDocumentRepository()
	repo.Seed(documents.Document{DocumentID: "a", Title: "Mietrecht"}, "")

	out, err := repo.ListDocuments(context.Background(), documents.ListQuery{Search: "steuer"})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
	raw, _ := json.Marshal(map[string]any{"documents": out})
	if string(raw) != `{"documents":[]}` {
		t.Fatalf("unexpected json %s", raw)
	}
}

func TestListDocuments_StablePagesForEqualDates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewDocumentRepository()
	same := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for _, ext := range []string{"a", "b", "c", "d", "e"} {
		d := same
		ids = append(ids, repo.Seed(documents.Document{DocumentID: ext, ReleaseDate: &d}, ""))
	}
	sort.Strings(ids)

	for run := 0; run < 20; run++ {
		var got []string
		for offset := 0; offset < len(ids); offset += 2 {
			page, err := repo.ListDocuments(ctx, documents.ListQuery{Limit: 2, Offset: offset})
			if err != nil {
				t.Fatalf("ListDocuments: %v", err)
			}
			for _, d := range page {
				got = append(got, d.ID)
			}
		}
		if !reflect.DeepEqual(got, ids) {
			t.Fatalf("run %d: pages %v, want %v", run, got, ids)
		}
	}
}
