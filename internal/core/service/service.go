package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/port"
)

var _ port.DraftStore = (*DraftService)(nil)

// DraftService persists the registration draft as a single document.
//
// Its methods never return errors: failures are logged and reported
// as false, a failed read looks exactly like a missing draft.
type DraftService struct {
	mu      sync.Mutex
	storage port.DraftStorage
	metrics port.DraftMetrics
}

func NewDraftService(
	storage port.DraftStorage, metrics port.DraftMetrics,
) *DraftService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &DraftService{storage: storage, metrics: metrics}
}

// MergeSave replaces the slices present in partial and keeps the rest.
func (s *DraftService) MergeSave(ctx context.Context, partial domain.Draft) bool {
	const op = "DraftService.MergeSave"
	log := slog.With("op", op)

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mergeSave(ctx, partial)
	s.metrics.DraftSaved(err == nil)
	if err != nil {
		log.Error("failed to save registration draft", "err", err)
		return false
	}
	log.Debug("registration draft saved")
	return true
}

func (s *DraftService) mergeSave(ctx context.Context, partial domain.Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	current, err := s.read(ctx)
	if err != nil && !errors.Is(err, domain.ErrDraftNotFound) {
		return err
	}

	data, err := json.Marshal(current.Merge(partial))
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	return s.storage.Write(ctx, data)
}

// Load returns the stored draft, ok is false when there is none
// or it could not be read.
func (s *DraftService) Load(ctx context.Context) (d domain.Draft, ok bool) {
	const op = "DraftService.Load"
	log := slog.With("op", op)

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.read(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrDraftNotFound) {
			log.Warn("no registration draft found")
		} else {
			log.Error("failed to read registration draft", "err", err)
		}
		return domain.Draft{}, false
	}
	return d, true
}

func (s *DraftService) read(ctx context.Context) (domain.Draft, error) {
	if err := ctx.Err(); err != nil {
		return domain.Draft{}, err
	}

	data, err := s.storage.Read(ctx)
	if err != nil {
		return domain.Draft{}, err
	}

	var d domain.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return domain.Draft{}, fmt.Errorf("failed to decode draft: %w", err)
	}
	return d, nil
}

// Clear removes the draft, false means nothing was removed.
func (s *DraftService) Clear(ctx context.Context) bool {
	const op = "DraftService.Clear"
	log := slog.With("op", op)

	s.mu.Lock()
	defer s.mu.Unlock()

	err := ctx.Err()
	if err == nil {
		err = s.storage.Delete(ctx)
	}
	s.metrics.DraftCleared(err == nil)

	if err != nil {
		if errors.Is(err, domain.ErrDraftNotFound) {
			log.Warn("no registration draft to clear")
		} else {
			log.Error("failed to clear registration draft", "err", err)
		}
		return false
	}
	log.Info("registration draft cleared")
	return true
}

type nopMetrics struct{}

func (nopMetrics) DraftSaved(bool)          {}
func (nopMetrics) DraftCleared(bool)        {}
func (nopMetrics) SubmissionFinished(error) {}
