package kafka

import (
	"encoding/json"

	"github.com/IBM/sarama"

	"github.com/Astemirdum/book-inventory/pkg/circuit_breaker"
)

const BookEventsTopic = "book-events"

type Config struct {
	Addrs []string `yaml:"addrs" envconfig:"KAFKA_ADDRS"`
	Topic string   `yaml:"topic" envconfig:"KAFKA_TOPIC"`

	Breaker circuit_breaker.Config `yaml:"breaker"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) != 0
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

type Enqueuer interface {
	Enqueue(key string, v any) error
	Close() error
}

// NewEnqueuer returns a no-op enqueuer when no brokers are configured.
func NewEnqueuer(cfg Config) (Enqueuer, error) {
	if !cfg.Enabled() {
		return nopEnqueuer{}, nil
	}
	producer, err := NewProducer(cfg)
	if err != nil {
		return nil, err
	}
	return NewProducerEnqueuer(producer, cfg), nil
}

// NewProducerEnqueuer sends through a circuit breaker; while it is open
// Enqueue returns circuit_breaker.ErrOpen without touching the producer.
func NewProducerEnqueuer(producer sarama.SyncProducer, cfg Config) Enqueuer {
	topic := cfg.Topic
	if topic == "" {
		topic = BookEventsTopic
	}
	return &enqueuerImpl{
		producer: producer,
		topic:    topic,
		breaker:  circuit_breaker.New(cfg.Breaker),
	}
}

type enqueuerImpl struct {
	producer sarama.SyncProducer
	topic    string
	breaker  circuit_breaker.CircuitBreaker
}

func (q *enqueuerImpl) Enqueue(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: q.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}
	return q.breaker.Call(func() error {
		_, _, err := q.producer.SendMessage(msg)
		return err
	})
}

func (q *enqueuerImpl) Close() error {
	return q.producer.Close()
}

type nopEnqueuer struct{}

func (nopEnqueuer) Enqueue(string, any) error { return nil }

func (nopEnqueuer) Close() error { return nil }
