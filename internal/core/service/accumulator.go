package service

import (
	"fmt"
	"slices"

	"github.com/niksmo/onboarding/internal/core/domain"
)

// An Accumulator is the product list gathered before submission.
//
// Transitions return a new value and never touch the receiver.
type Accumulator struct {
	target   domain.Quantity
	products []domain.ProductDetails
}

func NewAccumulator(
	target domain.Quantity, products []domain.ProductDetails,
) Accumulator {
	return Accumulator{target: target, products: slices.Clone(products)}
}

func (a Accumulator) Target() domain.Quantity {
	return a.target
}

func (a Accumulator) Len() int {
	return len(a.products)
}

// Products returns a copy of the list, never nil.
func (a Accumulator) Products() []domain.ProductDetails {
	out := make([]domain.ProductDetails, len(a.products))
	copy(out, a.products)
	return out
}

// Ready reports whether the list holds at least the target count.
func (a Accumulator) Ready() bool {
	return a.Len() >= a.target.Count()
}

// Progress returns the completed count capped at the target.
func (a Accumulator) Progress() (done, target int) {
	target = a.target.Count()
	return min(a.Len(), target), target
}

func (a Accumulator) Add(p domain.ProductDetails) (Accumulator, error) {
	if a.Ready() {
		return a, domain.ErrTargetReached
	}
	next := a.Products()
	next = append(next, p)
	return Accumulator{target: a.target, products: next}, nil
}

func (a Accumulator) Remove(i int) (Accumulator, error) {
	if i < 0 || i >= a.Len() {
		return a, fmt.Errorf("%w: %d", domain.ErrProductIndex, i)
	}
	next := make([]domain.ProductDetails, 0, a.Len()-1)
	next = append(next, a.products[:i]...)
	next = append(next, a.products[i+1:]...)
	return Accumulator{target: a.target, products: next}, nil
}

// WithTarget changes the completion threshold only.
func (a Accumulator) WithTarget(q domain.Quantity) Accumulator {
	return Accumulator{target: q, products: a.products}
}

// WithProducts replaces the list and keeps the target.
func (a Accumulator) WithProducts(ps []domain.ProductDetails) Accumulator {
	return NewAccumulator(a.target, ps)
}

func (a Accumulator) Reset() Accumulator {
	return Accumulator{target: a.target, products: []domain.ProductDetails{}}
}
