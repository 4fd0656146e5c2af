package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const (
	checkTimeout  = 2 * time.Second
	healthTimeout = 5 * time.Second
)

// HealthChecker is one dependency checked by /healthz.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function to HealthChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseHealthChecker pings the document store
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

type dependencyReport struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type healthReport struct {
	Status       string                      `json:"status"`
	CheckedAt    time.Time                   `json:"checked_at"`
	Dependencies map[string]dependencyReport `json:"dependencies"`
}

// HealthHandler checks every dependency in parallel, each bounded by its own
// timeout. Any failure turns the answer into 503 "degraded".
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		report := healthReport{
			Status:       "ok",
			CheckedAt:    time.Now().UTC(),
			Dependencies: make(map[string]dependencyReport, len(checkers)),
		}

		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for name, c := range checkers {
			wg.Add(1)
			go func(name string, c HealthChecker) {
				defer wg.Done()
				dep := checkOne(ctx, c)
				mu.Lock()
				report.Dependencies[name] = dep
				if dep.Error != "" {
					report.Status = "degraded"
				}
				mu.Unlock()
			}(name, c)
		}
		wg.Wait()

		code := http.StatusOK
		if report.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	}
}

func checkOne(ctx context.Context, c HealthChecker) dependencyReport {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := c.Check(ctx)
	dep := dependencyReport{Status: "up", LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		dep.Status = "down"
		dep.Error = err.Error()
	}
	return dep
}

// LivenessHandler answers {"ok":true} as long as the process serves requests.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}` + "\n"))
}
