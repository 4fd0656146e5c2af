package documents

import (
	"time"
)

// AnalysisVersion tag yang jadi bagian dari key penyimpanan
const AnalysisVersion = "v2.0"

// AnalysisType enum
type AnalysisType string

const (
	AnalysisSummary  AnalysisType = "summary"
	AnalysisEntities AnalysisType = "entities"
)

// DefaultAnalysisTypes dipakai kalau request tidak menyebutkan analysis_types
var DefaultAnalysisTypes = []AnalysisType{AnalysisSummary, AnalysisEntities}

// EntityType enum
type EntityType string

const (
	EntityPerson         EntityType = "PERSON"
	EntityOrganization   EntityType = "ORGANIZATION"
	EntityLocation       EntityType = "LOCATION"
	EntityDate           EntityType = "DATE"
	EntityLegalReference EntityType = "LEGAL_REFERENCE"
)

// EntityTypes lists every category the extractor may return, in prompt order.
var EntityTypes = []EntityType{
	EntityPerson,
	EntityOrganization,
	EntityLocation,
	EntityDate,
	EntityLegalReference,
}

// Valid reports whether t is one of the known categories.
func (t EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// AnalysisRequest command dari caller
type AnalysisRequest struct {
	DocumentID    string         `json:"document_id"`
	Content       string         `json:"content"`
	Priority      string         `json:"priority"`
	AnalysisTypes []AnalysisType `json:"analysis_types"`
}

// Wants reports whether the request asked for the given analysis.
func (r AnalysisRequest) Wants(t AnalysisType) bool {
	for _, v := range r.AnalysisTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Entity value object
type Entity struct {
	Name       string     `json:"name"`
	Type       EntityType `json:"type"`
	Context    string     `json:"context"`
	Confidence float64    `json:"confidence"`
}

// AnalysisResult hasil gabungan satu kali Analyze
type AnalysisResult struct {
	DocumentID       string   `json:"document_id"`
	Summary          string   `json:"summary"`
	Entities         []Entity `json:"entities"`
	ModelUsed        string   `json:"model_used"`
	ProcessingTimeMS int64    `json:"processing_time_ms"`
}

// StoredAnalysis row di tabel document_analyses
type StoredAnalysis struct {
	DocumentID       string    `json:"document_id"` // internal id dari tabel documents
	AnalysisVersion  string    `json:"analysis_version"`
	Summary          string    `json:"summary"`
	Entities         []Entity  `json:"entities"`
	ModelUsed        string    `json:"model_used"`
	ProcessingTimeMS int64     `json:"processing_time_ms"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Document representasi baris documents untuk listing
type Document struct {
	ID           string     `json:"id"`
	DocumentID   string     `json:"document_id"`
	Title        string     `json:"title"`
	DocumentType string     `json:"document_type,omitempty"`
	ReleaseDate  *time.Time `json:"release_date,omitempty"`
	SourceURL    string     `json:"source_url,omitempty"`
	AISummary    string     `json:"ai_summary,omitempty"`
	Similarity   float64    `json:"similarity,omitempty"`
}
