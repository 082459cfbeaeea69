package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

const checkTimeout = 5 * time.Second

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration_ms"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthResponse represents the liveness response
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// PingFunc reports whether a dependency is reachable
type PingFunc func(ctx context.Context) error

type check struct {
	ping     PingFunc
	critical bool
}

// Service runs readiness checks against the API's dependencies
type Service struct {
	startTime time.Time
	version   string
	checks    map[string]check
	log       *zap.Logger
	mu        sync.RWMutex
}

// NewService creates a new health service
func NewService(version string, log *zap.Logger) *Service {
	return &Service{
		startTime: time.Now(),
		version:   version,
		checks:    make(map[string]check),
		log:       log,
	}
}

// Register adds a dependency check. A failing critical check makes the
// service unready; a failing optional one only degrades it.
func (s *Service) Register(name string, critical bool, ping PingFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check{ping: ping, critical: critical}
	s.log.Info("Registered health checker", zap.String("name", name), zap.Bool("critical", critical))
}

// Health performs a basic liveness check
func (s *Service) Health(ctx context.Context) *HealthResponse {
	return &HealthResponse{
		Status:    StatusHealthy,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}
}

// Ready runs every registered check concurrently
func (s *Service) Ready(ctx context.Context) *ReadyResponse {
	s.mu.RLock()
	checks := make(map[string]check, len(s.checks))
	for k, v := range s.checks {
		checks[k] = v
	}
	s.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, c := range checks {
		wg.Add(1)
		go func(name string, c check) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			result := s.run(checkCtx, name, c)

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, c)
	}

	wg.Wait()

	overallStatus := StatusHealthy
	allReady := true
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			overallStatus = StatusUnhealthy
			allReady = false
		case StatusDegraded:
			if overallStatus != StatusUnhealthy {
				overallStatus = StatusDegraded
			}
		}
	}

	return &ReadyResponse{
		Ready:     allReady,
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Checks:    results,
	}
}

func (s *Service) run(ctx context.Context, name string, c check) CheckResult {
	start := time.Now()
	err := c.ping(ctx)

	result := CheckResult{
		Name:      name,
		Status:    StatusHealthy,
		Message:   "connection ok",
		Duration:  time.Since(start),
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		result.Status = StatusDegraded
		if c.critical {
			result.Status = StatusUnhealthy
		}
		result.Message = fmt.Sprintf("ping failed: %v", err)
		s.log.Warn("Health check failed", zap.String("name", name), zap.Error(err))
	}
	return result
}
