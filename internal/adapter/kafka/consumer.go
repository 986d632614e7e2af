package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/port"
	"github.com/niksmo/onboarding/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	CommitUncommittedOffsets(context.Context) error
	Close()
}

type Decoder interface {
	Decode(data []byte, v any) error
}

type ConsumerOpt func(*consumerOpts) error

type consumerOpts struct {
	cl       ConsumerClient
	decoder  Decoder
	receiver port.RegistrationReceiver
}

// ConsumerClientOpt joins group on topic. Offsets are committed only
// after a batch is handled.
func ConsumerClientOpt(
	seedBrokers []string, topic, group string, extra ...kgo.Opt,
) ConsumerOpt {
	return func(co *consumerOpts) error {
		opts := append([]kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.ConsumeTopics(topic),
			kgo.ConsumerGroup(group),
			kgo.DisableAutoCommit(),
		}, extra...)

		cl, err := kgo.NewClient(opts...)
		if err != nil {
			return err
		}
		co.cl = cl
		return nil
	}
}

func ConsumerRawClientOpt(cl ConsumerClient) ConsumerOpt {
	return func(co *consumerOpts) error {
		if cl == nil {
			return errors.New("client is nil")
		}
		co.cl = cl
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func ConsumerReceiverOpt(r port.RegistrationReceiver) ConsumerOpt {
	return func(co *consumerOpts) error {
		if r == nil {
			return errors.New("receiver is nil")
		}
		co.receiver = r
		return nil
	}
}

func (co *consumerOpts) apply(opts ...ConsumerOpt) error {
	for _, opt := range opts {
		if err := opt(co); err != nil {
			return err
		}
	}
	return nil
}

// A RegistrationConsumer reads registrations back from the topic and
// hands them to a [port.RegistrationReceiver].
//
// Records that fail to decode are logged and skipped. A receiver error
// leaves the batch uncommitted, so it is fetched again.
type RegistrationConsumer struct {
	opPrefix      string
	cl            ConsumerClient
	decoder       Decoder
	receiver      port.RegistrationReceiver
	slowDownTimer *time.Timer
}

func NewRegistrationConsumer(
	opts ...ConsumerOpt,
) (*RegistrationConsumer, error) {
	const op = "NewRegistrationConsumer"

	if len(opts) != 3 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options consumerOpts
	if err := options.apply(opts...); err != nil {
		return nil, opErr(err, op)
	}

	return &RegistrationConsumer{
		opPrefix:      "RegistrationConsumer",
		cl:            options.cl,
		decoder:       options.decoder,
		receiver:      options.receiver,
		slowDownTimer: time.NewTimer(0),
	}, nil
}

// Run polls until ctx is done.
func (c *RegistrationConsumer) Run(ctx context.Context) {
	const op = "Run"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			err := c.consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to consume", "err", err)
				c.slowDown(ctx)
			}
		}
	}
}

func (c *RegistrationConsumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if fetches.Empty() {
		return nil
	}

	if err := c.processFetches(ctx, fetches); err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if err := c.commit(ctx); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c *RegistrationConsumer) pollFetches(
	ctx context.Context,
) (kgo.Fetches, error) {
	const op = "pollFetches"

	fetches := c.cl.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	if err := fetchesErr(fetches); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	return fetches, nil
}

func fetchesErr(fetches kgo.Fetches) error {
	var msgs []string
	fetches.EachError(func(t string, p int32, err error) {
		msgs = append(msgs, fmt.Sprintf("topic %q partition %d: %q", t, p, err))
	})

	if len(msgs) != 0 {
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}

func (c *RegistrationConsumer) processFetches(
	ctx context.Context, fetches kgo.Fetches,
) error {
	const op = "processFetches"
	log := slog.With("op", makeOp(c.opPrefix, op))

	var errs []error
	fetches.EachRecord(func(r *kgo.Record) {
		var s schema.RegistrationV1
		if err := c.decoder.Decode(r.Value, &s); err != nil {
			log.Error("failed to decode value",
				"offset", r.Offset, "partition", r.Partition, "err", err)
			return
		}

		err := c.receiver.Receive(ctx, s.SubmissionID, schemaV1ToRegistration(s))
		if err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

func (c *RegistrationConsumer) slowDown(ctx context.Context) {
	c.slowDownTimer.Reset(1 * time.Second)
	select {
	case <-c.slowDownTimer.C:
	case <-ctx.Done():
	}
}

func (c *RegistrationConsumer) commit(ctx context.Context) error {
	const op = "commit"

	if err := ctx.Err(); err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if err := c.cl.CommitUncommittedOffsets(ctx); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c *RegistrationConsumer) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(c.opPrefix, op))

	c.slowDownTimer.Stop()

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

func schemaV1ToRegistration(s schema.RegistrationV1) domain.Submission {
	v := domain.Submission{
		TaskerDetails: domain.TaskerDetails{
			Name:  s.Tasker.Name,
			Phone: s.Tasker.Phone,
		},
		SellerDetails: domain.SellerDetails{
			SellerName:        s.Seller.SellerName,
			ShopName:          s.Seller.ShopName,
			ShopImage:         s.Seller.ShopImage,
			GSTNumber:         s.Seller.GSTNumber,
			SellerPhoneNumber: s.Seller.SellerPhoneNumber,
			ProductCount:      s.Seller.ProductCount,
		},
		Products: make([]domain.ProductDetails, len(s.Products)),
	}
	for i, p := range s.Products {
		v.Products[i] = domain.ProductDetails{
			Name:   p.Name,
			MRP:    p.MRP,
			MSP:    p.MSP,
			Image1: p.Image1,
			Image2: p.Image2,
			Image3: p.Image3,
		}
	}
	return v
}
