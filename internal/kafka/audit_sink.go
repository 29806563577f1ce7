package kafka

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Domenick1991/applane/internal/domain"
)

// Publisher is the part of Producer used by AuditSink.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// AuditSink publishes every domain event to Kafka. Record only queues the
// event; a background goroutine publishes it. Events are dropped with a
// warning when the queue is full or the sink is closed, and publishing
// failures are logged and never reach the caller.
type AuditSink struct {
	publisher Publisher
	topic     string
	timeout   time.Duration
	size      int

	mu     sync.RWMutex
	closed bool
	queue  chan AuditEvent
	done   chan struct{}
}

var _ domain.EventSink = (*AuditSink)(nil)

type AuditSinkOption func(*AuditSink)

func WithPublishTimeout(timeout time.Duration) AuditSinkOption {
	return func(s *AuditSink) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithBufferSize sets how many events may wait for publishing.
func WithBufferSize(size int) AuditSinkOption {
	return func(s *AuditSink) {
		if size > 0 {
			s.size = size
		}
	}
}

func NewAuditSink(publisher Publisher, topic string, opts ...AuditSinkOption) *AuditSink {
	s := &AuditSink{
		publisher: publisher,
		topic:     topic,
		timeout:   5 * time.Second,
		size:      256,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = make(chan AuditEvent, s.size)

	go s.run()
	return s
}

func (s *AuditSink) Record(e domain.Event) {
	ev := NewAuditEvent(e)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		log.Printf("WARNING: audit sink closed, dropping %s event", ev.Type)
		return
	}
	select {
	case s.queue <- ev:
	default:
		log.Printf("WARNING: audit queue full, dropping %s event", ev.Type)
	}
}

// Close stops accepting events and waits until the queued ones are published.
func (s *AuditSink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	<-s.done
	return nil
}

func (s *AuditSink) run() {
	defer close(s.done)
	for ev := range s.queue {
		s.publish(ev)
	}
}

func (s *AuditSink) publish(ev AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, s.topic, ev.Key(), ev); err != nil {
		log.Printf("WARNING: failed to publish %s event: %v", ev.Type, err)
	}
}
