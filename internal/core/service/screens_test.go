package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/service"
	"github.com/niksmo/onboarding/internal/core/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSubmitter struct {
	mock.Mock
}

func (s *MockSubmitter) Submit(ctx context.Context, v domain.Submission) error {
	return s.Called(ctx, v).Error(0)
}

// failingStore accepts nothing, as if the disk were read-only.
type failingStore struct {
	*service.DraftService
}

func (failingStore) MergeSave(context.Context, domain.Draft) bool { return false }

func TestTaskerScreen(t *testing.T) {
	t.Run("ResumeEmpty", func(t *testing.T) {
		s := service.NewTaskerScreen(newDraftService())
		assert.Equal(t, domain.TaskerDetails{}, s.Resume(t.Context()))
	})

	t.Run("InvalidIsNotSaved", func(t *testing.T) {
		store := newDraftService()
		s := service.NewTaskerScreen(store)

		errs, err := s.Confirm(t.Context(), domain.TaskerDetails{Name: "Asha"})
		require.NoError(t, err)
		assert.Equal(t, validate.FieldErrors{"phone": "Phone number is required"}, errs)

		_, ok := store.Load(t.Context())
		assert.False(t, ok)
	})

	t.Run("ConfirmThenResume", func(t *testing.T) {
		s := service.NewTaskerScreen(newDraftService())

		errs, err := s.Confirm(t.Context(), tasker)
		require.NoError(t, err)
		assert.True(t, errs.Valid())
		assert.Equal(t, tasker, s.Resume(t.Context()))
	})

	t.Run("SaveFailure", func(t *testing.T) {
		s := service.NewTaskerScreen(failingStore{newDraftService()})
		_, err := s.Confirm(t.Context(), tasker)
		assert.ErrorIs(t, err, domain.ErrNotSaved)
	})
}

func TestSellerScreen(t *testing.T) {
	t.Run("ConfirmKeepsTasker", func(t *testing.T) {
		store := newDraftService()
		_, err := service.NewTaskerScreen(store).Confirm(t.Context(), tasker)
		require.NoError(t, err)

		s := service.NewSellerScreen(store)
		errs, err := s.Confirm(t.Context(), seller)
		require.NoError(t, err)
		assert.True(t, errs.Valid())

		d, ok := store.Load(t.Context())
		require.True(t, ok)
		assert.Equal(t, tasker, *d.Tasker)
		assert.Equal(t, seller, *d.Seller)
		assert.Equal(t, seller, s.Resume(t.Context()))
	})

	t.Run("InvalidGST", func(t *testing.T) {
		v := seller
		v.GSTNumber = "22AAAAA0000A1Y5"
		errs, err := service.NewSellerScreen(newDraftService()).Confirm(t.Context(), v)
		require.NoError(t, err)
		assert.Equal(t, validate.FieldErrors{"gstNumber": "Invalid GST number"}, errs)
	})
}

func newRegisteredStore(t *testing.T) *service.DraftService {
	t.Helper()
	store := newDraftService()
	require.True(t, store.MergeSave(t.Context(), domain.Draft{
		Tasker: &tasker,
		Seller: &seller,
	}))
	return store
}

func TestProductsScreen(t *testing.T) {
	t.Run("AddInvalid", func(t *testing.T) {
		store := newDraftService()
		s := service.NewProductsScreen(store, new(MockSubmitter), nil)

		candidate := domain.ProductDetails{Name: "Soap"}
		errs, err := s.Add(t.Context(), candidate)
		require.NoError(t, err)
		assert.Len(t, errs, 4)
		assert.Equal(t, candidate, s.Snapshot().Candidate)

		_, ok := store.Load(t.Context())
		assert.False(t, ok, "nothing persisted on validation failure")
	})

	t.Run("AddPersistsWholeList", func(t *testing.T) {
		store := newDraftService()
		s := service.NewProductsScreen(store, new(MockSubmitter), nil)

		_, err := s.Add(t.Context(), soap)
		require.NoError(t, err)
		_, err = s.Add(t.Context(), oil)
		require.NoError(t, err)

		d, ok := store.Load(t.Context())
		require.True(t, ok)
		assert.Equal(t, []domain.ProductDetails{soap, oil}, d.Products)
		assert.Equal(t, domain.ProductDetails{}, s.Snapshot().Candidate)
	})

	t.Run("AddSaveFailureKeepsState", func(t *testing.T) {
		s := service.NewProductsScreen(
			failingStore{newDraftService()}, new(MockSubmitter), nil,
		)

		_, err := s.Add(t.Context(), soap)
		assert.ErrorIs(t, err, domain.ErrNotSaved)

		snap := s.Snapshot()
		assert.Empty(t, snap.Products)
		assert.Equal(t, soap, snap.Candidate)
	})

	t.Run("AddBeyondTarget", func(t *testing.T) {
		s := service.NewProductsScreen(newDraftService(), new(MockSubmitter), nil)
		_, _ = s.Add(t.Context(), soap)
		_, _ = s.Add(t.Context(), oil)

		_, err := s.Add(t.Context(), soap)
		assert.ErrorIs(t, err, domain.ErrTargetReached)
	})

	t.Run("ReachingTargetIsReady", func(t *testing.T) {
		s := service.NewProductsScreen(newDraftService(), new(MockSubmitter), nil)
		assert.Equal(t, service.StateAccumulating, s.State())

		_, _ = s.Add(t.Context(), soap)
		assert.Equal(t, service.StateAccumulating, s.State())

		_, _ = s.Add(t.Context(), oil)
		assert.Equal(t, service.StateReadyToSubmit, s.State())

		snap := s.Snapshot()
		assert.Equal(t, 2, snap.Done)
		assert.Equal(t, 2, snap.Total)
	})

	t.Run("SetTarget", func(t *testing.T) {
		s := service.NewProductsScreen(newDraftService(), new(MockSubmitter), nil)
		_, _ = s.Add(t.Context(), soap)
		_, _ = s.Add(t.Context(), oil)

		require.NoError(t, s.SetTarget("30"))
		assert.Equal(t, service.StateAccumulating, s.State())
		assert.Len(t, s.Snapshot().Products, 2)

		assert.ErrorIs(t, s.SetTarget("3"), domain.ErrInvalidQuantity)
	})

	t.Run("RemoveIsSaved", func(t *testing.T) {
		store := newDraftService()
		s := service.NewProductsScreen(store, new(MockSubmitter), nil)
		_, _ = s.Add(t.Context(), soap)
		_, _ = s.Add(t.Context(), oil)

		require.NoError(t, s.Remove(t.Context(), 0))
		assert.Equal(t, []domain.ProductDetails{oil}, s.Snapshot().Products)

		d, _ := store.Load(t.Context())
		assert.Equal(t, []domain.ProductDetails{oil}, d.Products)

		assert.ErrorIs(t, s.Remove(t.Context(), 5), domain.ErrProductIndex)
	})

	t.Run("RemoveIgnoresSaveFailure", func(t *testing.T) {
		store := newDraftService()
		require.True(t, store.MergeSave(t.Context(), domain.Draft{
			Products: []domain.ProductDetails{soap},
		}))

		s := service.NewProductsScreen(failingStore{store}, new(MockSubmitter), nil)
		s.Resume(t.Context())
		require.Len(t, s.Snapshot().Products, 1)

		require.NoError(t, s.Remove(t.Context(), 0))
		assert.Empty(t, s.Snapshot().Products)
	})

	t.Run("Resume", func(t *testing.T) {
		store := newDraftService()
		require.True(t, store.MergeSave(t.Context(), domain.Draft{
			Products: []domain.ProductDetails{soap},
		}))

		s := service.NewProductsScreen(store, new(MockSubmitter), nil)
		s.Resume(t.Context())
		assert.Equal(t, []domain.ProductDetails{soap}, s.Snapshot().Products)
	})
}

func TestProductsScreenSubmit(t *testing.T) {
	t.Run("BelowTargetSendsNothing", func(t *testing.T) {
		store := newRegisteredStore(t)
		sub := new(MockSubmitter)
		s := service.NewProductsScreen(store, sub, nil)
		_, _ = s.Add(t.Context(), soap)

		before, _ := store.Load(t.Context())

		err := s.Submit(t.Context())
		assert.ErrorIs(t, err, domain.ErrTargetNotReached)
		assert.Equal(t, "Add all 02 products before submitting.", s.Message(err))
		sub.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)

		after, _ := store.Load(t.Context())
		assert.Equal(t, before, after)
	})

	t.Run("MissingSlices", func(t *testing.T) {
		sub := new(MockSubmitter)
		s := service.NewProductsScreen(newDraftService(), sub, nil)
		_, _ = s.Add(t.Context(), soap)
		_, _ = s.Add(t.Context(), oil)

		err := s.Submit(t.Context())
		assert.ErrorIs(t, err, domain.ErrIncompleteDraft)
		assert.Equal(t, "Complete tasker and seller details first.", s.Message(err))
		sub.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		store := newRegisteredStore(t)
		sub := new(MockSubmitter)
		s := service.NewProductsScreen(store, sub, nil)
		_, _ = s.Add(t.Context(), soap)
		_, _ = s.Add(t.Context(), oil)
		require.Equal(t, service.StateReadyToSubmit, s.State())

		wantSeller := seller
		wantSeller.ProductCount = 2
		sub.On("Submit", mock.Anything, domain.Submission{
			TaskerDetails: tasker,
			SellerDetails: wantSeller,
			Products:      []domain.ProductDetails{soap, oil},
		}).Return(nil).Once()

		require.NoError(t, s.Submit(t.Context()))
		sub.AssertExpectations(t)

		_, ok := store.Load(t.Context())
		assert.False(t, ok, "draft is cleared")

		snap := s.Snapshot()
		assert.Empty(t, snap.Products)
		assert.Equal(t, domain.ProductDetails{}, snap.Candidate)
		assert.Equal(t, domain.DefaultQuantity, snap.Target)
		assert.Equal(t, service.StateSubmitted, snap.State)
	})

	t.Run("FailureKeepsEverything", func(t *testing.T) {
		for _, cause := range []error{domain.ErrNetwork, domain.ErrRejected} {
			t.Run(cause.Error(), func(t *testing.T) {
				store := newRegisteredStore(t)
				sub := new(MockSubmitter)
				s := service.NewProductsScreen(store, sub, nil)
				_, _ = s.Add(t.Context(), soap)
				_, _ = s.Add(t.Context(), oil)

				sub.On("Submit", mock.Anything, mock.Anything).
					Return(fmt.Errorf("post: %w", cause)).Once()

				before, _ := store.Load(t.Context())
				err := s.Submit(t.Context())
				assert.ErrorIs(t, err, cause)

				after, ok := store.Load(t.Context())
				require.True(t, ok)
				assert.Equal(t, before, after)
				assert.Len(t, s.Snapshot().Products, 2)
				assert.Equal(t, service.StateReadyToSubmit, s.State())

				sub.On("Submit", mock.Anything, mock.Anything).Return(nil).Once()
				assert.NoError(t, s.Submit(t.Context()), "retry is allowed")
			})
		}
	})

	t.Run("Messages", func(t *testing.T) {
		s := service.NewProductsScreen(newDraftService(), new(MockSubmitter), nil)
		assert.Equal(t, "Network error, try again later.",
			s.Message(fmt.Errorf("x: %w", domain.ErrNetwork)))
		assert.Equal(t, "Failed to submit registration.",
			s.Message(fmt.Errorf("x: %w", domain.ErrRejected)))
		assert.Equal(t, "Registration is too large, use smaller images.",
			s.Message(fmt.Errorf("x: %w", domain.ErrTooLarge)))
		assert.Equal(t, "Registration submitted successfully.", s.Message(nil))
	})

	t.Run("BusyWhileSubmitting", func(t *testing.T) {
		store := newRegisteredStore(t)
		sub := new(MockSubmitter)
		s := service.NewProductsScreen(store, sub, nil)
		_, _ = s.Add(t.Context(), soap)
		_, _ = s.Add(t.Context(), oil)

		entered := make(chan struct{})
		release := make(chan struct{})
		sub.On("Submit", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				close(entered)
				<-release
			}).
			Return(errors.New("post: network")).Once()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Submit(context.Background())
		}()

		<-entered
		assert.Equal(t, service.StateSubmitting, s.State())
		assert.ErrorIs(t, s.Submit(t.Context()), domain.ErrBusy)
		_, err := s.Add(t.Context(), soap)
		assert.ErrorIs(t, err, domain.ErrBusy)

		close(release)
		wg.Wait()
		assert.Equal(t, service.StateReadyToSubmit, s.State())
	})
}
