package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventPassengerAdded    EventType = "passenger_added"
	EventPassengerLoaded   EventType = "passenger_loaded"
	EventPassengerRemoved  EventType = "passenger_removed"
	EventPassengerReplaced EventType = "passenger_replaced"
	EventEmailChanged      EventType = "email_changed"
	EventFlightAdded       EventType = "flight_added"
	EventFlightLoaded      EventType = "flight_loaded"
	EventFlightBooked      EventType = "flight_booked"
	EventFlightCancelled   EventType = "flight_cancelled"
)

// Event describes one mutation of the booking state. FlightID and SeatClass
// are zero when the mutation does not concern a flight.
type Event struct {
	Type        EventType
	Time        time.Time
	Description string
	Email       string
	FlightID    uuid.UUID
	SeatClass   SeatClass
}

func (e Event) String() string {
	return e.Time.Format(time.ANSIC) + "\n" + e.Description
}

// EventSink receives every mutation performed by Account, Passenger and
// FlightSchedule. Implementations must not call back into the domain.
type EventSink interface {
	Record(Event)
}

type nopSink struct{}

func (nopSink) Record(Event) {}

func sinkOrNop(s EventSink) EventSink {
	if s == nil {
		return nopSink{}
	}
	return s
}

func newEvent(typ EventType, description string) Event {
	return Event{Type: typ, Time: time.Now(), Description: description}
}

// AddOption tags an insertion into a registry.
type AddOption func(*addOptions)

type addOptions struct {
	fromSnapshot bool
}

// FromSnapshot marks the insertion as hydration from storage rather than a
// user action. Only the recorded event differs.
func FromSnapshot() AddOption {
	return func(o *addOptions) {
		o.fromSnapshot = true
	}
}

func collectAddOptions(opts []AddOption) addOptions {
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
