package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/port"
	"github.com/niksmo/onboarding/internal/core/validate"
)

type ProductsState int

const (
	StateAccumulating ProductsState = iota
	StateReadyToSubmit
	StateSubmitting
	StateSubmitted
)

func (s ProductsState) String() string {
	switch s {
	case StateAccumulating:
		return "accumulating"
	case StateReadyToSubmit:
		return "ready-to-submit"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// ProductsSnapshot is a consistent view of the product screen.
type ProductsSnapshot struct {
	Products  []domain.ProductDetails
	Candidate domain.ProductDetails
	Target    domain.Quantity
	Done      int
	Total     int
	State     ProductsState
}

// ProductsScreen gathers products in memory, mirrors the list into the
// draft and finally submits the whole registration.
//
// Add, Remove and Submit are mutually exclusive: a call made while
// another one runs fails with [domain.ErrBusy].
type ProductsScreen struct {
	store     port.DraftStore
	submitter port.RegistrationSubmitter
	metrics   port.DraftMetrics

	busy atomic.Bool

	mu         sync.Mutex
	acc        Accumulator
	candidate  domain.ProductDetails
	submitting bool
	submitted  bool
}

func NewProductsScreen(
	store port.DraftStore,
	submitter port.RegistrationSubmitter,
	metrics port.DraftMetrics,
) *ProductsScreen {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ProductsScreen{
		store:     store,
		submitter: submitter,
		metrics:   metrics,
		acc:       NewAccumulator(domain.DefaultQuantity, nil),
	}
}

// Resume replaces the in-memory list with the saved products, if any.
func (s *ProductsScreen) Resume(ctx context.Context) {
	d, ok := s.store.Load(ctx)
	if !ok || d.Products == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.acc = s.acc.WithProducts(d.Products)
}

func (s *ProductsScreen) SetTarget(q domain.Quantity) error {
	const op = "ProductsScreen.SetTarget"

	if _, err := domain.ParseQuantity(string(q)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.acc = s.acc.WithTarget(q)
	return nil
}

// SetCandidate keeps the form being filled in.
func (s *ProductsScreen) SetCandidate(p domain.ProductDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidate = p
}

func (s *ProductsScreen) Snapshot() ProductsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	done, total := s.acc.Progress()
	return ProductsSnapshot{
		Products:  s.acc.Products(),
		Candidate: s.candidate,
		Target:    s.acc.Target(),
		Done:      done,
		Total:     total,
		State:     s.stateLocked(),
	}
}

func (s *ProductsScreen) State() ProductsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *ProductsScreen) stateLocked() ProductsState {
	switch {
	case s.submitting:
		return StateSubmitting
	case s.submitted && s.acc.Len() == 0:
		return StateSubmitted
	case s.acc.Ready():
		return StateReadyToSubmit
	default:
		return StateAccumulating
	}
}

// Add validates p and appends it. The list is saved before it changes
// in memory, so a failed save leaves the screen as it was.
func (s *ProductsScreen) Add(
	ctx context.Context, p domain.ProductDetails,
) (validate.FieldErrors, error) {
	const op = "ProductsScreen.Add"

	if !s.busy.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrBusy)
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	s.candidate = p
	acc := s.acc
	s.mu.Unlock()

	if errs := validate.Product(p); !errs.Valid() {
		return errs, nil
	}

	next, err := acc.Add(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.store.MergeSave(ctx, domain.Draft{Products: next.Products()}) {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNotSaved)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.acc = next.WithTarget(s.acc.Target())
	s.candidate = domain.ProductDetails{}
	s.submitted = false
	return nil, nil
}

// Remove drops the product at index i. The save that follows is not
// awaited for success: a failure is only logged.
func (s *ProductsScreen) Remove(ctx context.Context, i int) error {
	const op = "ProductsScreen.Remove"
	log := slog.With("op", op)

	if !s.busy.CompareAndSwap(false, true) {
		return fmt.Errorf("%s: %w", op, domain.ErrBusy)
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	next, err := s.acc.Remove(i)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	s.acc = next
	s.mu.Unlock()

	if !s.store.MergeSave(ctx, domain.Draft{Products: next.Products()}) {
		log.Warn("product removal was not persisted", "index", i)
	}
	return nil
}

// Submit sends the registration once the target count is reached.
//
// On success the draft is cleared and the list and candidate are reset,
// the target stays. On failure nothing changes so the call can be repeated.
func (s *ProductsScreen) Submit(ctx context.Context) error {
	const op = "ProductsScreen.Submit"
	log := slog.With("op", op)

	if !s.busy.CompareAndSwap(false, true) {
		return fmt.Errorf("%s: %w", op, domain.ErrBusy)
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	acc := s.acc
	if !acc.Ready() {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, domain.ErrTargetNotReached)
	}
	s.submitting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	d, ok := s.store.Load(ctx)
	if !ok || d.Tasker == nil || d.Seller == nil {
		return fmt.Errorf("%s: %w", op, domain.ErrIncompleteDraft)
	}

	seller := *d.Seller
	seller.ProductCount = acc.Len()

	err := s.submitter.Submit(ctx, domain.Submission{
		TaskerDetails: *d.Tasker,
		SellerDetails: seller,
		Products:      acc.Products(),
	})
	s.metrics.SubmissionFinished(err)
	if err != nil {
		log.Error("failed to submit registration", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.store.Clear(ctx) {
		log.Warn("registration submitted but draft was not cleared")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.acc = s.acc.Reset()
	s.candidate = domain.ProductDetails{}
	s.submitted = true

	log.Info("registration submitted", "nProducts", acc.Len())
	return nil
}

// Message turns a screen error into the text shown to the user.
func (s *ProductsScreen) Message(err error) string {
	switch {
	case err == nil:
		return "Registration submitted successfully."
	case errors.Is(err, domain.ErrTargetNotReached):
		s.mu.Lock()
		target := s.acc.Target()
		s.mu.Unlock()
		return fmt.Sprintf("Add all %s products before submitting.", target)
	case errors.Is(err, domain.ErrTargetReached):
		return "All products have been added."
	case errors.Is(err, domain.ErrIncompleteDraft):
		return "Complete tasker and seller details first."
	case errors.Is(err, domain.ErrNetwork):
		return "Network error, try again later."
	case errors.Is(err, domain.ErrTooLarge):
		return "Registration is too large, use smaller images."
	case errors.Is(err, domain.ErrRejected):
		return "Failed to submit registration."
	case errors.Is(err, domain.ErrBusy):
		return "Please wait for the current operation to finish."
	case errors.Is(err, domain.ErrNotSaved):
		return "Could not save progress, try again."
	default:
		return "Something went wrong, try again."
	}
}
