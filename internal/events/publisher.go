// Package events publishes payment notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
)

// PaymentGenerated is emitted once per stored BR Code.
type PaymentGenerated struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
	BRCode string `json:"br_code"`
}

type Config struct {
	Brokers []string
	Topic   string
}

type Publisher struct {
	Client  *kgo.Client
	Topic   string
	metrics *kprom.Metrics
}

// NewPublisher creates a producer for cfg.Topic. The client connects lazily,
// so an unreachable broker surfaces on the first Publish.
func NewPublisher(cfg Config, namespace string) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	metrics := kprom.NewMetrics(namespace)
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.AllowAutoTopicCreation(),
		kgo.WithHooks(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}

	return &Publisher{Client: client, Topic: cfg.Topic, metrics: metrics}, nil
}

// Publish writes e keyed by its id and waits for the broker ack.
func (p *Publisher) Publish(ctx context.Context, e PaymentGenerated) error {
	rec, err := NewRecord(p.Topic, e)
	if err != nil {
		return err
	}
	if err := p.Client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("producing %s: %w", e.ID, err)
	}
	return nil
}

// MetricsHandler exposes the producer metrics in Prometheus text format.
func (p *Publisher) MetricsHandler() http.Handler {
	return p.metrics.Handler()
}

func (p *Publisher) Close() {
	p.Client.Close()
}

// NewRecord encodes e as a JSON record for topic.
func NewRecord(topic string, e PaymentGenerated) (*kgo.Record, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding event: %w", err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(e.ID),
		Value: value,
	}, nil
}
