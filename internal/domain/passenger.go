package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile is the user-editable part of a passenger. The email is not part of
// it: it is the Account key and changes only through Account.ChangeEmail.
type Profile struct {
	FirstName   string
	MiddleName  string
	LastName    string
	Password    string
	DateOfBirth time.Time
	Phone       string
}

// Passenger owns a ledger of booked flights keyed by flight id, so a
// passenger holds at most one booking per flight.
type Passenger struct {
	Profile

	id       uuid.UUID
	email    string
	bookings map[uuid.UUID]BookedFlight
	sink     EventSink
}

func NewPassenger(email string, profile Profile) *Passenger {
	p, _ := RestorePassenger(uuid.New(), email, profile)
	return p
}

// RestorePassenger rebuilds a passenger with a known identity and an empty
// ledger.
func RestorePassenger(id uuid.UUID, email string, profile Profile) (*Passenger, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: passenger id is required", ErrInvalidInput)
	}
	return &Passenger{
		Profile:  profile,
		id:       id,
		email:    email,
		bookings: make(map[uuid.UUID]BookedFlight),
		sink:     nopSink{},
	}, nil
}

func (p *Passenger) ID() uuid.UUID {
	return p.id
}

func (p *Passenger) Email() string {
	return p.email
}

func (p *Passenger) FullName() string {
	return p.FirstName + " " + p.LastName
}

// AddBookedFlight books a seat of class seat on f and records it in the
// ledger. An existing booking for the same flight is replaced and its seat is
// given back, so the ledger size does not grow.
func (p *Passenger) AddBookedFlight(f *Flight, seat SeatClass) error {
	booked, err := NewBookedFlight(seat, f)
	if err != nil {
		return err
	}

	previous, rebooking := p.bookings[f.ID()]
	if rebooking {
		if err := previous.flight.Release(previous.seat); err != nil {
			return err
		}
	}
	if err := f.Book(seat); err != nil {
		if rebooking {
			_ = previous.flight.Book(previous.seat)
		}
		return err
	}

	p.bookings[f.ID()] = booked
	ev := newEvent(EventFlightBooked, fmt.Sprintf("Added Flight %s to Passenger %s's booked flights.", f.Designator(), p.FullName()))
	ev.Email = p.email
	ev.FlightID = f.ID()
	ev.SeatClass = seat
	p.sink.Record(ev)
	return nil
}

// LoadBookedFlight inserts b without touching flight inventory. It is used
// when hydrating a passenger from a snapshot, where counters already account
// for the booking.
func (p *Passenger) LoadBookedFlight(b BookedFlight) error {
	if b.flight == nil || !b.seat.Valid() {
		return fmt.Errorf("%w: incomplete booked flight", ErrInvalidInput)
	}
	p.bookings[b.flight.ID()] = b
	return nil
}

// RemoveBookedFlight cancels the booking for flightID and gives the seat back
// to the flight.
func (p *Passenger) RemoveBookedFlight(flightID uuid.UUID) (BookedFlight, error) {
	booked, ok := p.bookings[flightID]
	if !ok {
		return BookedFlight{}, fmt.Errorf("%w: flight %s", ErrBookingNotFound, flightID)
	}
	if err := booked.flight.Release(booked.seat); err != nil {
		return BookedFlight{}, err
	}
	delete(p.bookings, flightID)

	ev := newEvent(EventFlightCancelled, fmt.Sprintf("Removed Flight %s from Passenger %s's booked flights.", booked.flight.Designator(), p.FullName()))
	ev.Email = p.email
	ev.FlightID = flightID
	ev.SeatClass = booked.seat
	p.sink.Record(ev)
	return booked, nil
}

func (p *Passenger) HasFlight(f *Flight) bool {
	if f == nil {
		return false
	}
	_, ok := p.bookings[f.ID()]
	return ok
}

func (p *Passenger) Booking(flightID uuid.UUID) (BookedFlight, bool) {
	b, ok := p.bookings[flightID]
	return b, ok
}

func (p *Passenger) BookingCount() int {
	return len(p.bookings)
}

// BookedFlights returns a snapshot of the ledger ordered by departure time,
// then flight id.
func (p *Passenger) BookedFlights() []BookedFlight {
	out := make([]BookedFlight, 0, len(p.bookings))
	for _, b := range p.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		fi, fj := out[i].flight, out[j].flight
		if !fi.DepartureTime.Equal(fj.DepartureTime) {
			return fi.DepartureTime.Before(fj.DepartureTime)
		}
		return fi.ID().String() < fj.ID().String()
	})
	return out
}

// relink points the booking for f.ID() at f. It reports whether the pointer
// changed.
func (p *Passenger) relink(f *Flight) bool {
	b, ok := p.bookings[f.ID()]
	if !ok || b.flight == f {
		return false
	}
	b.flight = f
	p.bookings[f.ID()] = b
	return true
}

func (p *Passenger) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Passenger %s:\n", p.id)
	fmt.Fprintf(&b, "Name: %s %s %s\n", p.FirstName, p.MiddleName, p.LastName)
	fmt.Fprintf(&b, "Date Of Birth: %s\n", p.DateOfBirth.Format(DateLayout))
	fmt.Fprintf(&b, "Email Address: %s\n", p.email)
	fmt.Fprintf(&b, "Phone Number: %s", p.Phone)
	return b.String()
}
