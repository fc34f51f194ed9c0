package refinery

import (
	"context"
	"errors"
	"time"

	healthuc "github.com/servo-app/refinery/internal/usecase/health"
)

var errDegraded = errors.New("degraded")

// HealthStatus is the aggregated client health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component name to "ok" or "error"
}

// Healthy reports whether every component answered.
func (h HealthStatus) Healthy() bool { return h.Status == string(healthuc.Healthy) }

// Health checks the history store.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}
	st := HealthStatus{Status: string(report.Status), Checks: checks}

	var err error
	if !st.Healthy() {
		err = errDegraded
	}
	c.obs.observe("health", start, err)
	return st
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
