package orchestrator

import (
	"context"
	"fmt"
	"net/http"
)

// HealthStatus is the result of a liveness probe. Warning is empty when Up.
type HealthStatus struct {
	Up         bool
	StatusCode int
	Warning    string
}

// CheckHealth probes GET /healthcheck. A failed probe is reported as a
// warning and never blocks submissions.
func (o *Orchestrator) CheckHealth(ctx context.Context) HealthStatus {
	resp, err := o.transport.Get(ctx, HealthPath)
	if err != nil {
		o.logger.Warn().Str("error", err.Error()).Msg("health check failed")
		return HealthStatus{Warning: fmt.Sprintf("optimization service unreachable: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		o.logger.Warn().Int("status", resp.StatusCode).Msg("health check returned non-200")
		return HealthStatus{StatusCode: resp.StatusCode, Warning: fmt.Sprintf("optimization service returned status %d", resp.StatusCode)}
	}
	o.logger.Debug().Msg("health check ok")
	return HealthStatus{Up: true, StatusCode: resp.StatusCode}
}
