package app

import (
	"context"
	"testing"
	"time"

	"github.com/niksmo/onboarding/config"
	"github.com/niksmo/onboarding/internal/adapter/storage"
	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deadlineRecorder struct {
	deadline time.Time
	ok       bool
}

func (r *deadlineRecorder) Submit(ctx context.Context, _ domain.Submission) error {
	r.deadline, r.ok = ctx.Deadline()
	return nil
}

func TestTimeoutSubmitter(t *testing.T) {
	rec := &deadlineRecorder{}
	s := timeoutSubmitter{rec, time.Minute}

	require.NoError(t, s.Submit(t.Context(), domain.Submission{}))
	assert.True(t, rec.ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), rec.deadline, 5*time.Second)
}

func TestNew(t *testing.T) {
	t.Run("MemoryBackend", func(t *testing.T) {
		cfg, err := config.LoadFile("")
		require.NoError(t, err)
		cfg.Draft.Backend = config.BackendMemory

		a := New(t.Context(), cfg)
		defer a.Close(t.Context())

		assert.IsType(t, &storage.MemoryStorage{}, a.storage)

		tasker, _, products := a.Screens()
		errs, err := tasker.Confirm(t.Context(),
			domain.TaskerDetails{Name: "Asha", Phone: "9876543210"})
		require.NoError(t, err)
		assert.True(t, errs.Valid())
		assert.Equal(t, "Asha", tasker.Resume(t.Context()).Name)
		assert.Equal(t, domain.DefaultQuantity, products.Snapshot().Target)
	})

	t.Run("FileBackendResumesProducts", func(t *testing.T) {
		cfg, err := config.LoadFile("")
		require.NoError(t, err)
		cfg.Draft.FilePath = t.TempDir() + "/draft.json"

		first := New(t.Context(), cfg)
		_, _, products := first.Screens()
		_, err = products.Add(t.Context(), domain.ProductDetails{
			Name: "Soap", MRP: "50", MSP: "45", Image1: "a", Image2: "b",
		})
		require.NoError(t, err)
		first.Close(t.Context())

		second := New(t.Context(), cfg)
		defer second.Close(t.Context())
		_, _, products = second.Screens()
		assert.Len(t, products.Snapshot().Products, 1)
	})
}
