package service

import (
	"context"
	"fmt"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/port"
	"github.com/niksmo/onboarding/internal/core/validate"
)

// TaskerScreen owns the taskerDetails slice of the draft.
type TaskerScreen struct {
	store port.DraftStore
}

func NewTaskerScreen(store port.DraftStore) TaskerScreen {
	return TaskerScreen{store}
}

// Resume returns the saved details or an empty form.
func (s TaskerScreen) Resume(ctx context.Context) domain.TaskerDetails {
	d, ok := s.store.Load(ctx)
	if !ok || d.Tasker == nil {
		return domain.TaskerDetails{}
	}
	return *d.Tasker
}

// Confirm validates v and saves it. Invalid input is reported through
// the returned field errors and nothing is persisted.
func (s TaskerScreen) Confirm(
	ctx context.Context, v domain.TaskerDetails,
) (validate.FieldErrors, error) {
	const op = "TaskerScreen.Confirm"

	if errs := validate.Tasker(v); !errs.Valid() {
		return errs, nil
	}

	if !s.store.MergeSave(ctx, domain.Draft{Tasker: &v}) {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNotSaved)
	}
	return nil, nil
}

// SellerScreen owns the sellerDetails slice of the draft.
type SellerScreen struct {
	store port.DraftStore
}

func NewSellerScreen(store port.DraftStore) SellerScreen {
	return SellerScreen{store}
}

func (s SellerScreen) Resume(ctx context.Context) domain.SellerDetails {
	d, ok := s.store.Load(ctx)
	if !ok || d.Seller == nil {
		return domain.SellerDetails{}
	}
	return *d.Seller
}

func (s SellerScreen) Confirm(
	ctx context.Context, v domain.SellerDetails,
) (validate.FieldErrors, error) {
	const op = "SellerScreen.Confirm"

	if errs := validate.Seller(v); !errs.Valid() {
		return errs, nil
	}

	if !s.store.MergeSave(ctx, domain.Draft{Seller: &v}) {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNotSaved)
	}
	return nil, nil
}
