package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/bryanwahyu/docsense/internal/application"
	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

const (
	StatusQueued         = "queued"
	EstimatedTime        = "10-60 seconds"
	DefaultWorkers       = 4
	DefaultQueueCapacity = 64
)

var (
	// ErrQueueFull is returned by Submit when every queue slot is taken.
	ErrQueueFull = errors.New("analysis queue is full")
	// ErrDispatcherClosed is returned by Submit after Close.
	ErrDispatcherClosed = errors.New("analysis dispatcher closed")
)

// Analyzer is the worker-side entry point, satisfied by *Service.
type Analyzer interface {
	Analyze(ctx context.Context, req documents.AnalysisRequest) (Completion, error)
}

// Ticket is the fire-and-forget acknowledgment handed back to the caller.
type Ticket struct {
	TaskID        string `json:"task_id"`
	Status        string `json:"status"`
	EstimatedTime string `json:"estimated_time"`
}

type job struct {
	taskID string
	req    documents.AnalysisRequest
}

// DispatcherConfig tunes the worker pool.
type DispatcherConfig struct {
	Workers  int
	Capacity int
	Clock    application.Clock
	Metrics  Recorder
	Logger   *slog.Logger
}

// Dispatcher decouples request latency from analysis latency: Submit only
// enqueues, a fixed pool of workers runs Analyze with a background context.
// Nothing reports the outcome back to the submitter.
type Dispatcher struct {
	analyzer Analyzer
	queue    chan job
	clock    application.Clock
	metrics  Recorder
	logger   *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts the workers immediately.
func NewDispatcher(a Analyzer, cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultQueueCapacity
	}
	if cfg.Clock == nil {
		cfg.Clock = application.SystemClock{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	d := &Dispatcher{
		analyzer: a,
		queue:    make(chan job, cfg.Capacity),
		clock:    cfg.Clock,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Submit enqueues req and returns at once.
func (d *Dispatcher) Submit(req documents.AnalysisRequest) (Ticket, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return Ticket{}, ErrDispatcherClosed
	}

	id := fmt.Sprintf("task_%d_%s", d.clock.Now().UnixNano(), uuid.NewString()[:8])
	select {
	case d.queue <- job{taskID: id, req: req}:
	default:
		return Ticket{}, ErrQueueFull
	}
	d.metrics.QueueDepth(len(d.queue))

	return Ticket{TaskID: id, Status: StatusQueued, EstimatedTime: EstimatedTime}, nil
}

// Close stops intake and waits until queued and running analyses finish or
// ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		d.metrics.QueueDepth(len(d.queue))
		d.run(j)
	}
}

func (d *Dispatcher) run(j job) {
	log := d.logger.With("task_id", j.taskID, "document_id", j.req.DocumentID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("analysis panicked", "panic", r)
		}
	}()

	// jalan dengan context.Background() supaya gak ikut cancel request
	res, err := d.analyzer.Analyze(context.Background(), j.req)
	if err != nil {
		log.Error("background analysis failed", "error", err)
		return
	}
	log.Info("analysis finished", "processing_time_ms", res.ProcessingTimeMS)
}
