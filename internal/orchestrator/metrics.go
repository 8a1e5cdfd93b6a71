package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records submission outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics creates the submission collectors and registers them on reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vire_optimizer",
			Name:      "submissions_total",
			Help:      "Portfolio submissions by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vire_optimizer",
			Name:      "submission_duration_seconds",
			Help:      "Time from request to folded outcome.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	// Every outcome is exported from the start, including ones never seen.
	for k := OutcomeSet; k <= OutcomeContractError; k++ {
		m.submissions.WithLabelValues(k.String())
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.submissions, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(kind OutcomeKind, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(kind.String()).Inc()
	m.duration.Observe(elapsed.Seconds())
}
