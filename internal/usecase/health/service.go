package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates at least one component failed.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks over named components.
type Service struct {
	checks map[string]Pinger
}

// New creates a Service. The history store is checked as "database".
func New(store Pinger) *Service {
	s := &Service{checks: map[string]Pinger{}}
	if store != nil {
		s.checks["database"] = store
	}
	return s
}

// With adds another named component.
func (s *Service) With(name string, p Pinger) *Service {
	s.checks[name] = p
	return s
}

// Check pings every component. Any failure yields Degraded.
func (s *Service) Check(ctx context.Context) Report {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := Healthy
	checks := make(map[string]CheckResult, len(names))
	for _, name := range names {
		if err := s.checks[name].Ping(ctx); err != nil {
			checks[name] = CheckError
			status = Degraded
			continue
		}
		checks[name] = CheckOK
	}
	return Report{Status: status, Checks: checks}
}
