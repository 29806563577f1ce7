package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []Event
}

func (s *recordingSink) Record(ev Event) {
	s.events = append(s.events, ev)
}

func (s *recordingSink) types() []EventType {
	out := make([]EventType, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}

func newTestFlight(t *testing.T, start, end string, economy, business, first int) *Flight {
	t.Helper()
	departure := time.Date(2023, time.March, 4, 9, 30, 0, 0, time.UTC)
	f, err := NewFlight(FlightParams{
		AirlineCode:   "AC",
		FlightNumber:  123,
		DepartureTime: departure,
		ArrivalTime:   departure.Add(90 * time.Minute),
		StartLocation: start,
		EndLocation:   end,
		MaxSeats:      economy + business + first,
		Seats:         SeatCounts{Economy: economy, Business: business, FirstClass: first},
	})
	require.NoError(t, err)
	return f
}

func newTestPassenger(email string) *Passenger {
	return NewPassenger(email, Profile{
		FirstName:   "Christie",
		LastName:    "Leung",
		Password:    "play",
		DateOfBirth: time.Date(2002, time.May, 16, 0, 0, 0, 0, time.UTC),
		Phone:       "604-123-4567",
	})
}
