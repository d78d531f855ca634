package events

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Each message is flushed on its own; callers block on the write. kafka-go batches for one
// second when BatchTimeout is unset.
const (
	flushInterval = 5 * time.Millisecond
	writeTimeout  = 2 * time.Second
)

// Producer hands messages to one kafka.Writer per topic, created on first use.
type Producer struct {
	addr net.Addr

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	closed  bool
}

// ErrProducerClosed is returned by WriteMessages after Close.
var ErrProducerClosed = errors.New("producer closed")

// NewProducer builds a Producer for the given brokers.
func NewProducer(brokers []string) *Producer {
	return &Producer{
		addr:    kafka.TCP(brokers...),
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages synchronously delivers msgs to topic.
func (p *Producer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	writer, err := p.writer(topic)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, msgs...)
}

func (p *Producer) writer(topic string) (*kafka.Writer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrProducerClosed
	}
	w, ok := p.writers[topic]
	if !ok {
		w = newTopicWriter(p.addr, topic)
		p.writers[topic] = w
	}
	return w, nil
}

func newTopicWriter(addr net.Addr, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   addr,
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              1,
		BatchTimeout:           flushInterval,
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// Close flushes and closes every writer. Later writes fail with ErrProducerClosed.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	errs := make([]error, 0, len(p.writers))
	for _, w := range p.writers {
		errs = append(errs, w.Close())
	}
	p.writers = nil
	return errors.Join(errs...)
}
