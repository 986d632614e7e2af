package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/port"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.RegistrationSubmitter = (*RegistrationProducer)(nil)

// A RegistrationProducer submits [domain.Submission] as one Avro record
// keyed by the seller phone number.
type RegistrationProducer struct {
	cl       ProducerClient
	encoder  Encoder
	maxBytes int32
	opPrefix string
}

func NewRegistrationProducer(
	opts ...ProducerOpt,
) (RegistrationProducer, error) {
	const op = "NewRegistrationProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return RegistrationProducer{}, opErr(err, op)
		}
	}

	return RegistrationProducer{
		cl:       options.cl,
		encoder:  options.encoder,
		maxBytes: options.maxBytes,
		opPrefix: "RegistrationProducer",
	}, nil
}

func (p RegistrationProducer) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

// Submit encodes v and waits for all in-sync replicas to acknowledge it.
func (p RegistrationProducer) Submit(
	ctx context.Context, v domain.Submission,
) error {
	const op = "Submit"
	log := slog.With("op", makeOp(p.opPrefix, op))

	if err := ctx.Err(); err != nil {
		return opErr(fmt.Errorf("%w: %w", domain.ErrNetwork, err), p.opPrefix, op)
	}

	id := uuid.NewString()
	b, err := p.encoder.Encode(registrationToSchemaV1(id, v))
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r := &kgo.Record{
		Key:   []byte(v.SellerDetails.SellerPhoneNumber),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "submission-id", Value: []byte(id)},
		},
	}

	if size := recordSize(r); size > int(p.maxBytes) {
		log.Warn("registration does not fit one message",
			"size", size, "maxBytes", p.maxBytes)
		return opErr(fmt.Errorf("%w: %d bytes, limit %d",
			domain.ErrTooLarge, size, p.maxBytes), p.opPrefix, op)
	}

	res := p.cl.ProduceSync(ctx, r)
	if err := res.FirstErr(); err != nil {
		cause := domain.ErrNetwork
		if errors.Is(err, kerr.MessageTooLarge) ||
			errors.Is(err, kerr.RecordListTooLarge) {
			cause = domain.ErrTooLarge
		}
		return opErr(fmt.Errorf("%w: %w", cause, err), p.opPrefix, op)
	}

	log.Info("registration produced", "submissionID", id, "nProducts", len(v.Products))
	return nil
}

func recordSize(r *kgo.Record) int {
	n := len(r.Key) + len(r.Value) + recordOverhead
	for _, h := range r.Headers {
		n += len(h.Key) + len(h.Value)
	}
	return n
}
