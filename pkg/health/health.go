// Package health runs named dependency checks for the liveness and readiness endpoints.
package health

import (
	"context"
	"sync"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckFunc checks one dependency.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status    Status                 `json:"status"`
	Error     string                 `json:"error,omitempty"`
	LatencyMS int64                  `json:"latency_ms"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func (r CheckResult) WithMetadata(key string, value interface{}) CheckResult {
	meta := make(map[string]interface{}, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		meta[k] = v
	}
	meta[key] = value
	r.Metadata = meta
	return r
}

type HealthResponse struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Checks    map[string]CheckResult `json:"checks"`
}

type check struct {
	name     string
	fn       CheckFunc
	critical bool
}

// HealthChecker aggregates checks. A failing critical check makes the whole
// result unhealthy; a failing non-critical one only degrades it.
type HealthChecker struct {
	checks  []check
	timeout time.Duration
}

func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthChecker{timeout: timeout}
}

func (h *HealthChecker) AddCheck(name string, fn CheckFunc, critical bool) *HealthChecker {
	h.checks = append(h.checks, check{name: name, fn: fn, critical: critical})
	return h
}

// Check runs every check concurrently.
func (h *HealthChecker) Check(ctx context.Context) (Status, map[string]CheckResult) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make(map[string]CheckResult, len(h.checks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	status := StatusHealthy
	for _, c := range h.checks {
		wg.Add(1)
		go func(c check) {
			defer wg.Done()
			start := time.Now()
			err := c.fn(ctx)
			result := CheckResult{Status: StatusHealthy, LatencyMS: time.Since(start).Milliseconds()}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Error = err.Error()
				if c.critical {
					result.Status = StatusUnhealthy
					status = StatusUnhealthy
				} else {
					result.Status = StatusDegraded
					if status == StatusHealthy {
						status = StatusDegraded
					}
				}
			}
			results[c.name] = result
		}(c)
	}
	wg.Wait()
	return status, results
}
