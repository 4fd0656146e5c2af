package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/bryanwahyu/docsense/internal/domain/ai"
	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

// fakeCompleter answers summary and entity requests separately and records
// every request it receives.
type fakeCompleter struct {
	mu          sync.Mutex
	summary     string
	summaryErr  error
	entities    string
	entitiesErr error
	block       bool
	requests    []ai.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if req.JSON {
		return f.entities, f.entitiesErr
	}
	return f.summary, f.summaryErr
}

func (f *fakeCompleter) seen() []ai.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ai.CompletionRequest(nil), f.requests...)
}

// stepClock advances by step on every call to Now.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

type recordedAnalysis struct {
	outcome string
	elapsed time.Duration
}

type fakeRecorder struct {
	mu       sync.Mutex
	finished []recordedAnalysis
	failed   []documents.AnalysisType
	depths   []int
}

func (r *fakeRecorder) AnalysisFinished(outcome string, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, recordedAnalysis{outcome: outcome, elapsed: elapsed})
}

func (r *fakeRecorder) TaskFailed(task documents.AnalysisType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, task)
}

func (r *fakeRecorder) QueueDepth(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depths = append(r.depths, n)
}

type fakeArchive struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (a *fakeArchive) PutJSON(_ context.Context, key string, _ []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
	return "mem://" + key, a.err
}
