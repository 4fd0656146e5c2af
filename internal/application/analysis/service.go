package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bryanwahyu/docsense/internal/application"
	"github.com/bryanwahyu/docsense/internal/application/redaction"
	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

// StatusCompleted is the only status Analyze reports.
const StatusCompleted = "completed"

// ContentNormalizer converts raw content (e.g. scraped HTML) into plain text.
type ContentNormalizer interface {
	Normalize(content string) string
}

// Service implements the document analysis use-case.
// Service is designed to be used concurrently and is thread-safe.
type Service struct {
	Tasks     *Tasks
	Store     *Persister
	Redactor  *redaction.Redactor
	Plaintext ContentNormalizer      // optional, runs before redaction
	Archive   documents.ArchiveStore // optional
	Clock     application.Clock
	Metrics   Recorder
	ModelUsed string
	Logger    *slog.Logger
}

// Completion is returned by Analyze once the result has been persisted.
type Completion struct {
	Status           string                   `json:"status"`
	DocumentID       string                   `json:"document_id"`
	ProcessingTimeMS int64                    `json:"processing_time_ms"`
	Result           documents.AnalysisResult `json:"-"`
}

// Analyze redacts the content, runs the requested tasks concurrently, waits
// for all of them and persists the merged result.
//
// Task failures degrade to default values and are never returned. The only
// errors are persistence errors (documents.ErrDocumentNotFound,
// documents.ErrStoreUnavailable or a wrapped store error).
func (s *Service) Analyze(ctx context.Context, req documents.AnalysisRequest) (Completion, error) {
	clock := s.clock()
	start := clock.Now()

	content := req.Content
	if s.Plaintext != nil {
		content = s.Plaintext.Normalize(content)
	}
	cleaned := s.Redactor.Redact(content)

	var (
		wg       sync.WaitGroup
		summary  string
		entities = []documents.Entity{}
	)

	if req.Wants(documents.AnalysisSummary) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.recoverTask(documents.AnalysisSummary, req.DocumentID)
			v, err := s.tasks().Summary(ctx, cleaned)
			if err != nil {
				s.taskFailed(documents.AnalysisSummary, req.DocumentID, err)
				v = ""
			}
			summary = v
		}()
	}
	if req.Wants(documents.AnalysisEntities) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.recoverTask(documents.AnalysisEntities, req.DocumentID)
			v, err := s.tasks().Entities(ctx, cleaned)
			if err != nil {
				s.taskFailed(documents.AnalysisEntities, req.DocumentID, err)
				v = []documents.Entity{}
			}
			if v != nil {
				entities = v
			}
		}()
	}

	// fan-in: persistence only after every task has resolved
	wg.Wait()

	ms := application.ElapsedMS(clock, start)
	result := documents.AnalysisResult{
		DocumentID:       req.DocumentID,
		Summary:          summary,
		Entities:         entities,
		ModelUsed:        s.ModelUsed,
		ProcessingTimeMS: ms,
	}
	out := Completion{
		Status:           StatusCompleted,
		DocumentID:       req.DocumentID,
		ProcessingTimeMS: ms,
		Result:           result,
	}

	if err := s.Store.SaveAnalysis(ctx, result.DocumentID, result.Summary, result.Entities, result.ModelUsed, result.ProcessingTimeMS); err != nil {
		s.metrics().AnalysisFinished(outcomeOf(err), time.Duration(ms)*time.Millisecond)
		out.Status = ""
		return out, err
	}
	s.metrics().AnalysisFinished(OutcomeCompleted, time.Duration(ms)*time.Millisecond)

	s.archive(ctx, result)
	return out, nil
}

// archive writes a JSON snapshot of result. Failures are only logged.
func (s *Service) archive(ctx context.Context, result documents.AnalysisResult) {
	if s.Archive == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger().Warn("archive marshal failed", "document_id", result.DocumentID, "error", err)
		return
	}
	key := fmt.Sprintf("analyses/%s/%s.json", result.DocumentID, documents.AnalysisVersion)
	if _, err := s.Archive.PutJSON(ctx, key, payload); err != nil {
		s.logger().Warn("archive upload failed", "document_id", result.DocumentID, "key", key, "error", err)
	}
}

func (s *Service) taskFailed(task documents.AnalysisType, documentID string, err error) {
	s.metrics().TaskFailed(task)
	s.logger().Warn("analysis task failed", "task", task, "document_id", documentID, "error", err)
}

// recoverTask turns a panicking task into a regular task failure, the task's
// variable keeps its default.
func (s *Service) recoverTask(task documents.AnalysisType, documentID string) {
	if r := recover(); r != nil {
		s.taskFailed(task, documentID, fmt.Errorf("panic: %v", r))
	}
}

func (s *Service) tasks() *Tasks {
	if s.Tasks == nil {
		return &Tasks{}
	}
	return s.Tasks
}

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

func (s *Service) metrics() Recorder {
	if s.Metrics == nil {
		return nopRecorder{}
	}
	return s.Metrics
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, documents.ErrDocumentNotFound):
		return OutcomeDocumentNotFound
	case errors.Is(err, documents.ErrStoreUnavailable):
		return OutcomeStoreUnavailable
	default:
		return OutcomeError
	}
}
