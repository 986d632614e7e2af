package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/niksmo/onboarding/config"
	"github.com/niksmo/onboarding/internal/adapter"
	"github.com/niksmo/onboarding/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	partitions        = 3
	replicationFactor = 3
	cleanupPolicy     = "delete"
	minISR            = "2"
	retention         = "604800000" // 7 days
)

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	topic := cfg.Submit.Kafka.Topic
	maxBytes := cfg.Submit.Kafka.MaxMessageBytes

	cl, err := createClient(cfg)
	if err != nil {
		printFail(err)
		return
	}
	defer cl.Close()

	printStart(topic)
	defer printComplete(time.Now())

	if err := makeTopics(sigCtx, cl, maxBytes, topic); err != nil {
		printFail(err)
		return
	}
}

func createClient(cfg config.Config) (*kadm.Client, error) {
	kcfg := cfg.Submit.Kafka
	if len(kcfg.SeedBrokers) == 0 {
		return nil, errors.New("submit.kafka.seed_brokers is empty")
	}

	opts := []kgo.Opt{kgo.SeedBrokers(kcfg.SeedBrokers...)}
	if kcfg.TLS.Enabled() {
		tlsCfg, err := adapter.MakeTLSConfig(
			kcfg.TLS.CAFile, kcfg.TLS.CertFile, kcfg.TLS.KeyFile,
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kgo.DialTLSConfig(tlsCfg))
	}
	return kadm.NewOptClient(opts...)
}

func makeTopics(
	ctx context.Context, cl *kadm.Client, maxBytes int32, topics ...string,
) error {
	responses, err := cl.CreateTopics(
		ctx,
		partitions,
		replicationFactor,
		topicConfig(maxBytes),
		topics...,
	)
	if err != nil {
		return err
	}
	return topicsErr(responses)
}

// topicConfig lets one record carry a registration with inline photos.
func topicConfig(maxBytes int32) map[string]*string {
	return map[string]*string{
		"cleanup.policy":      kadm.StringPtr(cleanupPolicy),
		"min.insync.replicas": kadm.StringPtr(minISR),
		"retention.ms":        kadm.StringPtr(retention),
		"max.message.bytes":   kadm.StringPtr(strconv.Itoa(int(maxBytes))),
	}
}

func topicsErr(responses kadm.CreateTopicResponses) error {
	var errs []error
	for _, res := range responses.Sorted() {
		if res.Err != nil {
			if errors.Is(res.Err, kerr.TopicAlreadyExists) {
				fmt.Printf("topic: %q already exists\n", res.Topic)
			} else {
				errs = append(errs, fmt.Errorf("topic %q: %w", res.Topic, res.Err))
			}
			continue
		}
		fmt.Printf("topic: %q successfully created\n", res.Topic)
	}

	return errors.Join(errs...)
}

func printStart(topic string) {
	fmt.Printf("initializing topics...\n\t- %q\n\n", topic)
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func printFail(err error) {
	fmt.Printf("failed to create topics: \n%s\n", err)
}
