package audit

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/Domenick1991/applane/internal/domain"
)

// EventLog is an append-only, in-memory record of domain events.
type EventLog struct {
	mu     sync.Mutex
	events []domain.Event
}

var _ domain.EventSink = (*EventLog)(nil)

func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) Record(e domain.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

// Events returns a copy of the recorded events in insertion order.
func (l *EventLog) Events() []domain.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// WriteTo prints every event followed by a blank line.
func (l *EventLog) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range l.Events() {
		n, err := fmt.Fprintf(w, "%s\n\n", e)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (l *EventLog) String() string {
	var b strings.Builder
	_, _ = l.WriteTo(&b)
	return b.String()
}

// LogSink writes each event to the standard logger.
type LogSink struct{}

var _ domain.EventSink = LogSink{}

func (LogSink) Record(e domain.Event) {
	log.Printf("[%s] %s", e.Type, e.Description)
}

// Multi fans an event out to every non-nil sink in order.
func Multi(sinks ...domain.EventSink) domain.EventSink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multiSink []domain.EventSink

func (m multiSink) Record(e domain.Event) {
	for _, s := range m {
		s.Record(e)
	}
}

// Nop returns a sink that drops every event.
func Nop() domain.EventSink {
	return nopSink{}
}

type nopSink struct{}

func (nopSink) Record(domain.Event) {}
