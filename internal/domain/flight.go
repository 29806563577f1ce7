package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	UnassignedGate          = -1
	UnassignedAirplaneModel = "TBD"

	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"

	shortDateTimeLayout = "06-01-02 15:04"
)

// SeatCounts holds one counter per seat class.
type SeatCounts struct {
	Economy    int
	Business   int
	FirstClass int
}

func (s SeatCounts) Total() int {
	return s.Economy + s.Business + s.FirstClass
}

// Of returns the counter for c, or 0 for an invalid class.
func (s SeatCounts) Of(c SeatClass) int {
	switch c {
	case SeatClassEconomy:
		return s.Economy
	case SeatClassBusiness:
		return s.Business
	case SeatClassFirst:
		return s.FirstClass
	}
	return 0
}

func (s SeatCounts) validate() error {
	if s.Economy < 0 || s.Business < 0 || s.FirstClass < 0 {
		return fmt.Errorf("%w: seat counters must not be negative", ErrInvalidInput)
	}
	return nil
}

// Fares holds one price per seat class. Zero until set.
type Fares struct {
	Economy    float64
	Business   float64
	FirstClass float64
}

func (f Fares) Of(c SeatClass) float64 {
	switch c {
	case SeatClassEconomy:
		return f.Economy
	case SeatClassBusiness:
		return f.Business
	case SeatClassFirst:
		return f.FirstClass
	}
	return 0
}

type FlightParams struct {
	AirlineCode   string
	FlightNumber  int
	DepartureTime time.Time
	ArrivalTime   time.Time
	StartLocation string
	EndLocation   string
	MaxSeats      int
	Seats         SeatCounts
}

// Flight is the inventory record of one scheduled flight. Remaining seat
// counters are only changed through Book and Release and never go below zero.
// Release is not capped at the initial allotment.
type Flight struct {
	id            uuid.UUID
	AirlineCode   string
	FlightNumber  int
	GateNumber    int
	AirplaneModel string
	DepartureTime time.Time
	ArrivalTime   time.Time
	StartLocation string
	EndLocation   string
	MaxSeats      int
	Fares         Fares

	seats SeatCounts
}

// NewFlight creates a flight with a fresh identity, an unassigned gate and an
// unassigned airplane model.
func NewFlight(p FlightParams) (*Flight, error) {
	return RestoreFlight(uuid.New(), p)
}

// RestoreFlight rebuilds a flight with a known identity, as read from a
// snapshot.
func RestoreFlight(id uuid.UUID, p FlightParams) (*Flight, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: flight id is required", ErrInvalidInput)
	}
	if err := p.Seats.validate(); err != nil {
		return nil, err
	}
	return &Flight{
		id:            id,
		AirlineCode:   p.AirlineCode,
		FlightNumber:  p.FlightNumber,
		GateNumber:    UnassignedGate,
		AirplaneModel: UnassignedAirplaneModel,
		DepartureTime: p.DepartureTime,
		ArrivalTime:   p.ArrivalTime,
		StartLocation: p.StartLocation,
		EndLocation:   p.EndLocation,
		MaxSeats:      p.MaxSeats,
		seats:         p.Seats,
	}, nil
}

func (f *Flight) ID() uuid.UUID {
	return f.id
}

// Seats returns a copy of the remaining seat counters.
func (f *Flight) Seats() SeatCounts {
	return f.seats
}

func (f *Flight) Remaining(c SeatClass) int {
	return f.seats.Of(c)
}

func (f *Flight) RemainingTotal() int {
	return f.seats.Total()
}

func (f *Flight) Price(c SeatClass) float64 {
	return f.Fares.Of(c)
}

// IsFull reports whether no seat of any class is left.
func (f *Flight) IsFull() bool {
	return f.seats.Total() == 0
}

// Book takes one seat of class c.
func (f *Flight) Book(c SeatClass) error {
	counter, err := f.counter(c)
	if err != nil {
		return err
	}
	if *counter <= 0 {
		return fmt.Errorf("%w: %s on flight %s", ErrNoSeatsAvailable, c, f.Designator())
	}
	*counter--
	return nil
}

// Release gives one seat of class c back.
func (f *Flight) Release(c SeatClass) error {
	counter, err := f.counter(c)
	if err != nil {
		return err
	}
	*counter++
	return nil
}

func (f *Flight) counter(c SeatClass) (*int, error) {
	switch c {
	case SeatClassEconomy:
		return &f.seats.Economy, nil
	case SeatClassBusiness:
		return &f.seats.Business, nil
	case SeatClassFirst:
		return &f.seats.FirstClass, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidSeatClass, int(c))
}

// Designator is the airline code followed by the flight number, e.g. AC123.
func (f *Flight) Designator() string {
	return fmt.Sprintf("%s%d", f.AirlineCode, f.FlightNumber)
}

// PublicInfo is the summary shown in search results: route, times and the
// combined number of remaining seats.
func (f *Flight) PublicInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Flight %s\n", f.Designator())
	fmt.Fprintf(&b, "Departure: %s [%s]\n", f.StartLocation, f.DepartureTime.Format(shortDateTimeLayout))
	fmt.Fprintf(&b, "Arrival: %s [%s]\n", f.EndLocation, f.ArrivalTime.Format(shortDateTimeLayout))
	fmt.Fprintf(&b, "Remaining Seats: %d", f.seats.Total())
	return b.String()
}

// String renders the full detail view.
func (f *Flight) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Flight %s (%s)\n", f.Designator(), f.id)
	fmt.Fprintf(&b, "Departure: %s [%s]\n", f.StartLocation, f.DepartureTime.Format(shortDateTimeLayout))
	fmt.Fprintf(&b, "Arrival: %s [%s]\n", f.EndLocation, f.ArrivalTime.Format(shortDateTimeLayout))
	fmt.Fprintf(&b, "Airplane Model: %s\n", f.AirplaneModel)
	fmt.Fprintf(&b, "Maximum Seats: %d\n", f.MaxSeats)
	fmt.Fprintf(&b, "Available Economy Seats: %d\n", f.seats.Economy)
	fmt.Fprintf(&b, "Available Business Seats: %d\n", f.seats.Business)
	fmt.Fprintf(&b, "Available First Class Seats: %d", f.seats.FirstClass)
	return b.String()
}
