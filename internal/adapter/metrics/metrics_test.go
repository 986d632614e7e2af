package metrics

import (
	"fmt"
	"testing"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.DraftSaved(true)
	m.DraftSaved(true)
	m.DraftSaved(false)
	m.DraftCleared(false)
	m.SubmissionFinished(nil)
	m.SubmissionFinished(fmt.Errorf("post: %w", domain.ErrRejected))
	m.SubmissionFinished(fmt.Errorf("post: %w", domain.ErrNetwork))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.draftSaves.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.draftSaves.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.draftClears.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("network_error")))
}
