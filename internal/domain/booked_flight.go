package domain

// BookedFlight ties a seat class to a flight held by a passenger. The flight
// is shared with the schedule, not copied.
type BookedFlight struct {
	seat   SeatClass
	flight *Flight
}

func NewBookedFlight(seat SeatClass, flight *Flight) (BookedFlight, error) {
	if !seat.Valid() {
		return BookedFlight{}, ErrInvalidSeatClass
	}
	if flight == nil {
		return BookedFlight{}, ErrFlightNotFound
	}
	return BookedFlight{seat: seat, flight: flight}, nil
}

func (b BookedFlight) Seat() SeatClass {
	return b.seat
}

func (b BookedFlight) Flight() *Flight {
	return b.flight
}

// Price is the fare paid for the booked class.
func (b BookedFlight) Price() float64 {
	return b.flight.Price(b.seat)
}
