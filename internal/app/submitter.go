package app

import (
	"context"
	"time"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/port"
)

// timeoutSubmitter bounds a submitter that has no deadline of its own.
type timeoutSubmitter struct {
	next    port.RegistrationSubmitter
	timeout time.Duration
}

func (s timeoutSubmitter) Submit(ctx context.Context, v domain.Submission) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Submit(ctx, v)
}
