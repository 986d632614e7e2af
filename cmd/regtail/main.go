// Command regtail prints registrations published to the Kafka topic, one
// JSON line each, without image payloads.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/niksmo/onboarding/config"
	"github.com/niksmo/onboarding/internal/adapter"
	"github.com/niksmo/onboarding/internal/adapter/kafka"
	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/port"
	"github.com/niksmo/onboarding/pkg/schema"
	"github.com/niksmo/onboarding/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sr"
)

const group = "onboarding-regtail"

func main() {
	sigCtx, stop := sigctx.NotifyContext()
	defer stop()

	cfg := config.Load()
	kcfg := cfg.Submit.Kafka

	var (
		kopts  []kgo.Opt
		sropts = []sr.ClientOpt{sr.URLs(kcfg.SchemaRegistryURLs...)}
	)
	if kcfg.TLS.Enabled() {
		tlsCfg, err := adapter.MakeTLSConfig(
			kcfg.TLS.CAFile, kcfg.TLS.CertFile, kcfg.TLS.KeyFile,
		)
		if err != nil {
			die(err)
		}
		kopts = append(kopts, kgo.DialTLSConfig(tlsCfg))
		sropts = append(sropts, sr.DialTLSConfig(tlsCfg))
	}

	srClient, err := sr.NewClient(sropts...)
	if err != nil {
		die(err)
	}

	serde, err := schema.NewSerdeRegistrationV1(
		sigCtx,
		schema.SubjectOpt(kcfg.Topic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		die(err)
	}

	c, err := kafka.NewRegistrationConsumer(
		kafka.ConsumerClientOpt(kcfg.SeedBrokers, kcfg.Topic, group, kopts...),
		kafka.ConsumerDecoderOpt(serde),
		kafka.ConsumerReceiverOpt(newPrinter(os.Stdout)),
	)
	if err != nil {
		die(err)
	}
	defer c.Close()

	c.Run(sigCtx)
}

var _ port.RegistrationReceiver = (*printer)(nil)

type printer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newPrinter(w io.Writer) *printer {
	return &printer{enc: json.NewEncoder(w)}
}

type line struct {
	SubmissionID string   `json:"submissionId"`
	Tasker       string   `json:"tasker"`
	Seller       string   `json:"seller"`
	Shop         string   `json:"shop"`
	GSTNumber    string   `json:"gstNumber"`
	ProductCount int      `json:"productCount"`
	Products     []string `json:"products"`
}

func (p *printer) Receive(
	_ context.Context, id string, v domain.Submission,
) error {
	l := line{
		SubmissionID: id,
		Tasker:       v.TaskerDetails.Name,
		Seller:       v.SellerDetails.SellerName,
		Shop:         v.SellerDetails.ShopName,
		GSTNumber:    v.SellerDetails.GSTNumber,
		ProductCount: v.SellerDetails.ProductCount,
		Products:     make([]string, len(v.Products)),
	}
	for i, pr := range v.Products {
		l.Products[i] = pr.Name
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc.Encode(l)
}

func die(err error) {
	fmt.Fprintf(os.Stderr, "regtail: %v\n", err)
	os.Exit(2)
}
