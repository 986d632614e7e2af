// Package httpclient posts completed registrations to the registration API.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/port"
)

var _ port.RegistrationSubmitter = (*Submitter)(nil)

const maxResponseSize = 1 << 20

type submitResponse struct {
	Success *bool `json:"success"`
}

// Submitter sends one POST per submission. It never retries.
type Submitter struct {
	cl       *http.Client
	endpoint string
}

func NewSubmitter(endpoint string, timeout time.Duration) Submitter {
	return Submitter{
		cl:       &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

// Submit posts v as JSON. A transport failure or a body that is not JSON
// wraps [domain.ErrNetwork], any JSON body without "success": true wraps
// [domain.ErrRejected].
func (s Submitter) Submit(ctx context.Context, v domain.Submission) error {
	const op = "Submitter.Submit"
	requestID := uuid.NewString()
	log := slog.With("op", op, "requestID", requestID)

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: failed to encode submission: %w", op, err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.endpoint, bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	res, err := s.cl.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrNetwork, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			log.Warn("failed to close response body", "err", err)
		}
	}()

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%s: %w: failed to read response: %w",
			op, domain.ErrNetwork, err)
	}
	if !json.Valid(payload) {
		return fmt.Errorf("%s: %w: response is not JSON, status %d",
			op, domain.ErrNetwork, res.StatusCode)
	}

	// Well formed JSON is the server's answer: anything but
	// "success": true is a rejection.
	var result submitResponse
	err = json.Unmarshal(payload, &result)
	if err != nil || result.Success == nil || !*result.Success {
		log.Warn("registration rejected", "status", res.StatusCode, "err", err)
		return fmt.Errorf("%s: %w: status %d", op, domain.ErrRejected, res.StatusCode)
	}

	log.Info("registration accepted", "nProducts", len(v.Products))
	return nil
}
