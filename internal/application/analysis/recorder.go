package analysis

import (
	"time"

	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

// Analysis outcomes reported to the Recorder.
const (
	OutcomeCompleted        = "completed"
	OutcomeDocumentNotFound = "document_not_found"
	OutcomeStoreUnavailable = "store_unavailable"
	OutcomeError            = "error"
)

// Recorder receives operational signals from the orchestrator and the
// dispatcher. Implementations must be safe for concurrent use.
type Recorder interface {
	AnalysisFinished(outcome string, elapsed time.Duration)
	TaskFailed(task documents.AnalysisType)
	QueueDepth(n int)
}

type nopRecorder struct{}

func (nopRecorder) AnalysisFinished(string, time.Duration) {}
func (nopRecorder) TaskFailed(documents.AnalysisType) {}
func (nopRecorder) QueueDepth(int) {}
