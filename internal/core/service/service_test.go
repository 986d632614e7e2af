package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/niksmo/onboarding/internal/adapter/storage"
	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDraftStorage struct {
	mock.Mock
}

func (s *MockDraftStorage) Read(ctx context.Context) ([]byte, error) {
	args := s.Called(ctx)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (s *MockDraftStorage) Write(ctx context.Context, data []byte) error {
	return s.Called(ctx, data).Error(0)
}

func (s *MockDraftStorage) Delete(ctx context.Context) error {
	return s.Called(ctx).Error(0)
}

var (
	tasker = domain.TaskerDetails{Name: "Asha", Phone: "9876543210"}
	seller = domain.SellerDetails{
		SellerName:        "Ravi",
		ShopName:          "Ravi Stores",
		ShopImage:         "data:image/jpeg;base64,AAAA",
		GSTNumber:         "22AAAAA0000A1Z5",
		SellerPhoneNumber: "9123456780",
	}
	soap = domain.ProductDetails{
		Name: "Soap", MRP: "40", MSP: "35",
		Image1: "data:image/jpeg;base64,AA", Image2: "data:image/jpeg;base64,BB",
	}
	oil = domain.ProductDetails{
		Name: "Oil", MRP: "120", MSP: "110",
		Image1: "data:image/jpeg;base64,CC", Image2: "data:image/jpeg;base64,DD",
		Image3: "data:image/jpeg;base64,EE",
	}
)

func newDraftService() *service.DraftService {
	return service.NewDraftService(storage.NewMemoryStorage(), nil)
}

func TestDraftService(t *testing.T) {
	t.Run("LoadAbsent", func(t *testing.T) {
		s := newDraftService()
		d, ok := s.Load(t.Context())
		assert.False(t, ok)
		assert.True(t, d.IsEmpty())
	})

	t.Run("DisjointSlicesAreKept", func(t *testing.T) {
		s := newDraftService()
		require.True(t, s.MergeSave(t.Context(), domain.Draft{Tasker: &tasker}))
		require.True(t, s.MergeSave(t.Context(), domain.Draft{Seller: &seller}))

		d, ok := s.Load(t.Context())
		require.True(t, ok)
		assert.Equal(t, tasker, *d.Tasker)
		assert.Equal(t, seller, *d.Seller)
		assert.Nil(t, d.Products)
	})

	t.Run("DisjointOrderIndependent", func(t *testing.T) {
		a := domain.Draft{Tasker: &tasker}
		b := domain.Draft{Products: []domain.ProductDetails{soap}}

		s1 := newDraftService()
		require.True(t, s1.MergeSave(t.Context(), a))
		require.True(t, s1.MergeSave(t.Context(), b))

		s2 := newDraftService()
		require.True(t, s2.MergeSave(t.Context(), b))
		require.True(t, s2.MergeSave(t.Context(), a))

		d1, _ := s1.Load(t.Context())
		d2, _ := s2.Load(t.Context())
		assert.Equal(t, d1, d2)
	})

	t.Run("LaterSliceWinsWholesale", func(t *testing.T) {
		s := newDraftService()
		s1 := seller
		s1.ProductCount = 30
		s2 := domain.SellerDetails{SellerName: "Meena", ShopName: "Meena Mart"}

		require.True(t, s.MergeSave(t.Context(), domain.Draft{Seller: &s1}))
		require.True(t, s.MergeSave(t.Context(), domain.Draft{Seller: &s2}))

		d, ok := s.Load(t.Context())
		require.True(t, ok)
		assert.Equal(t, s2, *d.Seller)
	})

	t.Run("ProductsReplacedAsWholeArray", func(t *testing.T) {
		s := newDraftService()
		require.True(t, s.MergeSave(t.Context(), domain.Draft{
			Products: []domain.ProductDetails{soap, oil},
		}))
		require.True(t, s.MergeSave(t.Context(), domain.Draft{
			Products: []domain.ProductDetails{oil},
		}))

		d, _ := s.Load(t.Context())
		assert.Equal(t, []domain.ProductDetails{oil}, d.Products)
	})

	t.Run("EmptyPartialKeepsDraft", func(t *testing.T) {
		s := newDraftService()
		require.True(t, s.MergeSave(t.Context(), domain.Draft{Tasker: &tasker}))
		require.True(t, s.MergeSave(t.Context(), domain.Draft{}))

		d, _ := s.Load(t.Context())
		assert.Equal(t, tasker, *d.Tasker)
	})

	t.Run("ClearThenSaveHasNoResidue", func(t *testing.T) {
		s := newDraftService()
		require.True(t, s.MergeSave(t.Context(), domain.Draft{
			Seller:   &seller,
			Products: []domain.ProductDetails{soap},
		}))

		assert.True(t, s.Clear(t.Context()))
		_, ok := s.Load(t.Context())
		assert.False(t, ok)

		require.True(t, s.MergeSave(t.Context(), domain.Draft{Tasker: &tasker}))
		d, ok := s.Load(t.Context())
		require.True(t, ok)
		assert.Equal(t, domain.Draft{Tasker: &tasker}, d)
	})

	t.Run("ClearAbsent", func(t *testing.T) {
		assert.False(t, newDraftService().Clear(t.Context()))
	})

	t.Run("WriteFailure", func(t *testing.T) {
		st := new(MockDraftStorage)
		st.On("Read", mock.Anything).Return(nil, domain.ErrDraftNotFound)
		st.On("Write", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		s := service.NewDraftService(st, nil)
		assert.False(t, s.MergeSave(t.Context(), domain.Draft{Tasker: &tasker}))
	})

	t.Run("ReadFailureFailsSave", func(t *testing.T) {
		st := new(MockDraftStorage)
		st.On("Read", mock.Anything).Return(nil, errors.New("permission denied"))

		s := service.NewDraftService(st, nil)
		assert.False(t, s.MergeSave(t.Context(), domain.Draft{Tasker: &tasker}))
		st.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
	})

	t.Run("CorruptDraftLoadsAsAbsent", func(t *testing.T) {
		st := new(MockDraftStorage)
		st.On("Read", mock.Anything).Return([]byte(`{"taskerDetails":`), nil)

		s := service.NewDraftService(st, nil)
		_, ok := s.Load(t.Context())
		assert.False(t, ok)
	})

	t.Run("DeleteFailure", func(t *testing.T) {
		st := new(MockDraftStorage)
		st.On("Delete", mock.Anything).Return(errors.New("busy"))

		s := service.NewDraftService(st, nil)
		assert.False(t, s.Clear(t.Context()))
	})
}
