package kafka

import (
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Producer wraps an async Kafka producer. Publishes never block the request
// path; delivery failures are logged, not returned.
type Producer struct {
	producer sarama.AsyncProducer
	log      *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewProducer connects an async producer to the given brokers.
func NewProducer(brokers []string, log *zap.Logger) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Flush.Frequency = 500 * time.Millisecond
	cfg.Producer.Return.Successes = false
	cfg.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: create producer: %w", err)
	}

	p := &Producer{
		producer: producer,
		log:      log,
		done:     make(chan struct{}),
	}

	p.wg.Add(1)
	go p.drainErrors()

	return p, nil
}

func (p *Producer) drainErrors() {
	defer p.wg.Done()
	for {
		select {
		case err, ok := <-p.producer.Errors():
			if !ok {
				return
			}
			p.log.Error("kafka publish failed",
				zap.String("topic", err.Msg.Topic),
				zap.Error(err.Err),
			)
		case <-p.done:
			return
		}
	}
}

// Publish enqueues a message keyed for partition affinity.
func (p *Producer) Publish(topic, key string, payload []byte) {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(payload),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	select {
	case p.producer.Input() <- msg:
	case <-p.done:
		p.log.Warn("kafka publish dropped, producer closed", zap.String("topic", topic))
	}
}

// Close flushes pending messages and shuts the producer down.
func (p *Producer) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.producer.Close()
		p.wg.Wait()
	})
	return err
}
