package state

import (
	"sync"

	"github.com/Domenick1991/applane/internal/audit"
	"github.com/Domenick1991/applane/internal/domain"
)

// Registry owns the in-process Account and FlightSchedule. All access goes
// through View or Update, which serialise writers against every other caller.
type Registry struct {
	mu       sync.RWMutex
	sink     domain.EventSink
	account  *domain.Account
	schedule *domain.FlightSchedule
}

// NewRegistry starts with empty registries that report to sink. A nil sink
// discards events.
func NewRegistry(sink domain.EventSink) *Registry {
	if sink == nil {
		sink = audit.Nop()
	}
	return &Registry{
		sink:     sink,
		account:  domain.NewAccount(domain.WithAccountEvents(sink)),
		schedule: domain.NewFlightSchedule(domain.WithScheduleEvents(sink)),
	}
}

// Sink is the event sink new registries should be created with.
func (r *Registry) Sink() domain.EventSink {
	return r.sink
}

// View runs fn under the read lock. fn must not mutate either registry.
func (r *Registry) View(fn func(*domain.Account, *domain.FlightSchedule) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(r.account, r.schedule)
}

// Update runs fn under the write lock.
func (r *Registry) Update(fn func(*domain.Account, *domain.FlightSchedule) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.account, r.schedule)
}

// Replace swaps in freshly loaded registries. Nil arguments keep the current
// value.
func (r *Registry) Replace(account *domain.Account, schedule *domain.FlightSchedule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account != nil {
		r.account = account
	}
	if schedule != nil {
		r.schedule = schedule
	}
}
