// Package metrics counts draft persistence and submission outcomes.
package metrics

import (
	"errors"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/port"
	"github.com/prometheus/client_golang/prometheus"
)

var _ port.DraftMetrics = (*Metrics)(nil)

type Metrics struct {
	draftSaves  *prometheus.CounterVec
	draftClears *prometheus.CounterVec
	submissions *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		draftSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_draft_saves_total",
			Help: "Registration draft merge-saves by result",
		}, []string{"result"}),
		draftClears: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_draft_clears_total",
			Help: "Registration draft clears by result",
		}, []string{"result"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_submissions_total",
			Help: "Registration submissions by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.draftSaves, m.draftClears, m.submissions)
	return m
}

func (m *Metrics) DraftSaved(ok bool) {
	m.draftSaves.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) DraftCleared(ok bool) {
	m.draftClears.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) SubmissionFinished(err error) {
	m.submissions.WithLabelValues(outcome(err)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, domain.ErrRejected):
		return "rejected"
	case errors.Is(err, domain.ErrNetwork):
		return "network_error"
	default:
		return "error"
	}
}
