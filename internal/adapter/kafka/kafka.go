// Package kafka publishes completed registrations to a Kafka topic.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts = errors.New("too few options")
)

// DefaultMaxMessageBytes fits a handful of products with inline photos.
// The kafka default of 1MB does not.
const DefaultMaxMessageBytes = 16 << 20

// recordOverhead covers the batch and record framing around key, value
// and headers.
const recordOverhead = 1 << 10

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl       ProducerClient
	encoder  Encoder
	maxBytes int32
}

// ProducerClientOpt dials seedBrokers. A nil tlsCfg means plaintext.
// maxBytes bounds one produced batch and must not exceed the topic's
// max.message.bytes.
func ProducerClientOpt(
	ctx context.Context,
	seedBrokers []string, topic string, maxBytes int32, tlsCfg *tls.Config,
) ProducerOpt {
	return func(opts *producerOpts) error {
		if maxBytes <= 0 {
			return fmt.Errorf("invalid max message bytes %d", maxBytes)
		}

		cl, err := kgo.NewClient(
			producerClientOpts(seedBrokers, topic, maxBytes, tlsCfg)...,
		)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		opts.maxBytes = maxBytes
		return nil
	}
}

func producerClientOpts(
	seedBrokers []string, topic string, maxBytes int32, tlsCfg *tls.Config,
) []kgo.Opt {
	kopts := []kgo.Opt{
		kgo.SeedBrokers(seedBrokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchMaxBytes(maxBytes),
	}
	if tlsCfg != nil {
		kopts = append(kopts, kgo.DialTLSConfig(tlsCfg))
	}
	return kopts
}

// ProducerRawClientOpt sets an already built client whose batches are
// limited to maxBytes.
func ProducerRawClientOpt(cl ProducerClient, maxBytes int32) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("client is nil")
		}
		if maxBytes <= 0 {
			return fmt.Errorf("invalid max message bytes %d", maxBytes)
		}
		opts.cl = cl
		opts.maxBytes = maxBytes
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func registrationToSchemaV1(
	id string, v domain.Submission,
) (s schema.RegistrationV1) {
	s.SubmissionID = id
	s.Tasker.Name = v.TaskerDetails.Name
	s.Tasker.Phone = v.TaskerDetails.Phone

	s.Seller.SellerName = v.SellerDetails.SellerName
	s.Seller.ShopName = v.SellerDetails.ShopName
	s.Seller.ShopImage = v.SellerDetails.ShopImage
	s.Seller.GSTNumber = v.SellerDetails.GSTNumber
	s.Seller.SellerPhoneNumber = v.SellerDetails.SellerPhoneNumber
	s.Seller.ProductCount = v.SellerDetails.ProductCount

	s.Products = make([]schema.ProductV1, len(v.Products))
	for i, p := range v.Products {
		s.Products[i] = schema.ProductV1{
			Name:   p.Name,
			MRP:    p.MRP,
			MSP:    p.MSP,
			Image1: p.Image1,
			Image2: p.Image2,
			Image3: p.Image3,
		}
	}
	return
}
