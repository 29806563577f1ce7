package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// FlightSchedule lists every known flight in insertion order. It does not
// reject duplicates.
type FlightSchedule struct {
	flights []*Flight
	sink    EventSink
}

type ScheduleOption func(*FlightSchedule)

func WithScheduleEvents(sink EventSink) ScheduleOption {
	return func(s *FlightSchedule) {
		s.sink = sinkOrNop(sink)
	}
}

func NewFlightSchedule(opts ...ScheduleOption) *FlightSchedule {
	s := &FlightSchedule{sink: nopSink{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightSchedule) AddFlight(f *Flight, opts ...AddOption) {
	if f == nil {
		return
	}
	s.flights = append(s.flights, f)

	o := collectAddOptions(opts)
	var ev Event
	if o.fromSnapshot {
		ev = newEvent(EventFlightLoaded, fmt.Sprintf("Loaded flight %s from file.", f.Designator()))
	} else {
		ev = newEvent(EventFlightAdded, fmt.Sprintf("Added flight %s to flight schedule.", f.Designator()))
	}
	ev.FlightID = f.ID()
	s.sink.Record(ev)
}

// FlightsByDestination returns, in schedule order, every flight whose start
// and end locations equal start and end ignoring case.
func (s *FlightSchedule) FlightsByDestination(start, end string) []*Flight {
	var out []*Flight
	for _, f := range s.flights {
		if strings.EqualFold(f.StartLocation, start) && strings.EqualFold(f.EndLocation, end) {
			out = append(out, f)
		}
	}
	return out
}

// FlightByID returns the first scheduled flight with the given id.
func (s *FlightSchedule) FlightByID(id uuid.UUID) (*Flight, error) {
	for _, f := range s.flights {
		if f.ID() == id {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFlightNotFound, id)
}

// Flights returns the scheduled flights in insertion order. The slice is a
// copy; the flights are shared.
func (s *FlightSchedule) Flights() []*Flight {
	out := make([]*Flight, len(s.flights))
	copy(out, s.flights)
	return out
}

func (s *FlightSchedule) Len() int {
	return len(s.flights)
}
