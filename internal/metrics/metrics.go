// Package metrics holds the Prometheus collectors for team analysis and
// rule evaluation.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "teamfit"

// Metrics records analysis and evaluation activity. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	analyses     *prometheus.CounterVec
	findings     *prometheus.CounterVec
	skipped      prometheus.Counter
	evaluations  *prometheus.CounterVec
	evalDuration prometheus.Histogram
}

// MustNew constructs Metrics and registers them with reg. Collectors that are
// already registered with the same descriptor are reused, so several
// servers in one process can share a registry. Any other registration error
// panics.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_total",
			Help:      "Team analyses by outcome (scored or insufficient_data).",
		}, []string{"outcome"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Rule findings produced, by severity.",
		}, []string{"severity"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_skipped_total",
			Help:      "Active rules skipped during evaluation because they could not be decoded.",
		}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Stored team evaluations, by source (api or worker).",
		}, []string{"source"}),
		evalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent loading, evaluating and storing one team evaluation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}

	m.analyses = register(reg, m.analyses)
	m.findings = register(reg, m.findings)
	m.skipped = register(reg, m.skipped)
	m.evaluations = register(reg, m.evaluations)
	m.evalDuration = register(reg, m.evalDuration)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveAnalysis counts one analysis. scored is false when the roster had
// too few profiled members.
func (m *Metrics) ObserveAnalysis(scored bool) {
	if m == nil {
		return
	}
	outcome := "scored"
	if !scored {
		outcome = "insufficient_data"
	}
	m.analyses.WithLabelValues(outcome).Inc()
}

// ObserveEvaluation records one stored evaluation.
func (m *Metrics) ObserveEvaluation(source string, severities []string, skipped int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(source).Inc()
	for _, sev := range severities {
		m.findings.WithLabelValues(sev).Inc()
	}
	if skipped > 0 {
		m.skipped.Add(float64(skipped))
	}
	m.evalDuration.Observe(elapsed.Seconds())
}
