package port

import (
	"context"

	"github.com/niksmo/onboarding/internal/core/domain"
)

// DraftStorage keeps the serialized draft document.
//
// Read and Delete return [domain.ErrDraftNotFound] when nothing is stored.
type DraftStorage interface {
	Read(context.Context) ([]byte, error)
	Write(context.Context, []byte) error
	Delete(context.Context) error
}

type DraftStore interface {
	MergeSave(context.Context, domain.Draft) bool
	Load(context.Context) (domain.Draft, bool)
	Clear(context.Context) bool
}

// RegistrationSubmitter delivers a completed registration.
//
// Failures wrap [domain.ErrNetwork] or [domain.ErrRejected].
type RegistrationSubmitter interface {
	Submit(context.Context, domain.Submission) error
}

type DraftMetrics interface {
	DraftSaved(ok bool)
	DraftCleared(ok bool)
	SubmissionFinished(err error)
}

// RegistrationReceiver handles registrations read back from the broker.
type RegistrationReceiver interface {
	Receive(ctx context.Context, submissionID string, v domain.Submission) error
}
