package persistence

// Snapshot documents. Every field is a pointer so that a missing key can be
// told apart from a zero value while decoding.

type accountsDocument struct {
	Accounts *[]passengerDocument `json:"accounts"`
}

type passengerDocument struct {
	UUID          *string                 `json:"uuid"`
	FirstName     *string                 `json:"first name"`
	MiddleName    *string                 `json:"middle name"`
	LastName      *string                 `json:"last name"`
	Email         *string                 `json:"email"`
	Password      *string                 `json:"password"`
	DateOfBirth   *string                 `json:"date of birth"`
	Phone         *string                 `json:"phone"`
	BookedFlights *[]bookedFlightDocument `json:"booked flights"`
}

type bookedFlightDocument struct {
	UUID   *string         `json:"uuid"`
	Seat   *int            `json:"seat"`
	Flight *flightDocument `json:"flight"`
}

type flightsDocument struct {
	Flights *[]flightDocument `json:"flights"`
}

type flightDocument struct {
	UUID                     *string  `json:"uuid"`
	Airline                  *string  `json:"airline"`
	FlightNumber             *int     `json:"flight number"`
	GateNumber               *int     `json:"gate number"`
	AirplaneModel            *string  `json:"airplane model"`
	Departure                *string  `json:"departure"`
	Arrival                  *string  `json:"arrival"`
	StartLocation            *string  `json:"start location"`
	Destination              *string  `json:"destination"`
	MaxSeats                 *int     `json:"max seats"`
	RemainingEconomySeats    *int     `json:"remaining economy seats"`
	RemainingBusinessSeats   *int     `json:"remaining business seats"`
	RemainingFirstClassSeats *int     `json:"remaining first class seats"`
	EconomyPrice             *float64 `json:"economy price"`
	BusinessPrice            *float64 `json:"business price"`
	FirstClassPrice          *float64 `json:"first class price"`
}

func ptr[T any](v T) *T {
	return &v
}
