package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/applane/internal/domain"
	"github.com/google/uuid"
)

const (
	AccountsDocument = "accounts"
	FlightsDocument  = "flights"

	indent = "    "
)

// EncodeAccounts renders every passenger of a, ordered by email, with each
// booked flight fully nested.
func EncodeAccounts(a *domain.Account) ([]byte, error) {
	passengers := a.Passengers()
	docs := make([]passengerDocument, 0, len(passengers))
	for _, p := range passengers {
		docs = append(docs, encodePassenger(p))
	}
	return json.MarshalIndent(accountsDocument{Accounts: &docs}, "", indent)
}

// EncodeSchedule renders the flights of s in schedule order.
func EncodeSchedule(s *domain.FlightSchedule) ([]byte, error) {
	flights := s.Flights()
	docs := make([]flightDocument, 0, len(flights))
	for _, f := range flights {
		docs = append(docs, encodeFlight(f))
	}
	return json.MarshalIndent(flightsDocument{Flights: &docs}, "", indent)
}

func encodePassenger(p *domain.Passenger) passengerDocument {
	booked := p.BookedFlights()
	bookedDocs := make([]bookedFlightDocument, 0, len(booked))
	for _, b := range booked {
		bookedDocs = append(bookedDocs, bookedFlightDocument{
			UUID:   ptr(b.Flight().ID().String()),
			Seat:   ptr(int(b.Seat())),
			Flight: ptr(encodeFlight(b.Flight())),
		})
	}

	return passengerDocument{
		UUID:          ptr(p.ID().String()),
		FirstName:     ptr(p.FirstName),
		MiddleName:    ptr(p.MiddleName),
		LastName:      ptr(p.LastName),
		Email:         ptr(p.Email()),
		Password:      ptr(p.Password),
		DateOfBirth:   ptr(p.DateOfBirth.Format(domain.DateLayout)),
		Phone:         ptr(p.Phone),
		BookedFlights: &bookedDocs,
	}
}

func encodeFlight(f *domain.Flight) flightDocument {
	seats := f.Seats()
	return flightDocument{
		UUID:                     ptr(f.ID().String()),
		Airline:                  ptr(f.AirlineCode),
		FlightNumber:             ptr(f.FlightNumber),
		GateNumber:               ptr(f.GateNumber),
		AirplaneModel:            ptr(f.AirplaneModel),
		Departure:                ptr(f.DepartureTime.Format(domain.DateTimeLayout)),
		Arrival:                  ptr(f.ArrivalTime.Format(domain.DateTimeLayout)),
		StartLocation:            ptr(f.StartLocation),
		Destination:              ptr(f.EndLocation),
		MaxSeats:                 ptr(f.MaxSeats),
		RemainingEconomySeats:    ptr(seats.Economy),
		RemainingBusinessSeats:   ptr(seats.Business),
		RemainingFirstClassSeats: ptr(seats.FirstClass),
		EconomyPrice:             ptr(f.Fares.Economy),
		BusinessPrice:            ptr(f.Fares.Business),
		FirstClassPrice:          ptr(f.Fares.FirstClass),
	}
}

// DecodeAccounts parses an accounts document. Either every passenger is
// parsed and added to a new Account, or an error is returned and nothing is
// added. Booked flights get their own Flight objects; see domain.Reconcile.
func DecodeAccounts(data []byte, opts ...domain.AccountOption) (*domain.Account, error) {
	var doc accountsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Document: AccountsDocument, Err: err}
	}
	if doc.Accounts == nil {
		return nil, missing(AccountsDocument, "accounts")
	}

	d := decoder{document: AccountsDocument}
	passengers := make([]*domain.Passenger, 0, len(*doc.Accounts))
	for i, pd := range *doc.Accounts {
		p, err := d.passenger(fmt.Sprintf("accounts[%d]", i), pd)
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}

	account := domain.NewAccount(opts...)
	for i, p := range passengers {
		if err := account.AddPassenger(p, domain.FromSnapshot()); err != nil {
			return nil, &ParseError{Document: AccountsDocument, Field: fmt.Sprintf("accounts[%d].email", i), Err: err}
		}
	}
	return account, nil
}

// DecodeSchedule parses a flights document into a new FlightSchedule. It is
// all-or-nothing like DecodeAccounts.
func DecodeSchedule(data []byte, opts ...domain.ScheduleOption) (*domain.FlightSchedule, error) {
	var doc flightsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Document: FlightsDocument, Err: err}
	}
	if doc.Flights == nil {
		return nil, missing(FlightsDocument, "flights")
	}

	d := decoder{document: FlightsDocument}
	flights := make([]*domain.Flight, 0, len(*doc.Flights))
	for i, fd := range *doc.Flights {
		f, err := d.flight(fmt.Sprintf("flights[%d]", i), fd)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}

	schedule := domain.NewFlightSchedule(opts...)
	for _, f := range flights {
		schedule.AddFlight(f, domain.FromSnapshot())
	}
	return schedule, nil
}

type decoder struct {
	document string
}

func (d decoder) passenger(path string, pd passengerDocument) (*domain.Passenger, error) {
	id, err := d.uuid(path+".uuid", pd.UUID)
	if err != nil {
		return nil, err
	}

	var profile domain.Profile
	var email string
	fields := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"first name", pd.FirstName, &profile.FirstName},
		{"middle name", pd.MiddleName, &profile.MiddleName},
		{"last name", pd.LastName, &profile.LastName},
		{"email", pd.Email, &email},
		{"password", pd.Password, &profile.Password},
		{"phone", pd.Phone, &profile.Phone},
	}
	for _, f := range fields {
		if f.src == nil {
			return nil, missing(d.document, path+"."+f.name)
		}
		*f.dst = *f.src
	}

	if profile.DateOfBirth, err = d.time(path+".date of birth", pd.DateOfBirth, domain.DateLayout); err != nil {
		return nil, err
	}
	if pd.BookedFlights == nil {
		return nil, missing(d.document, path+".booked flights")
	}

	p, err := domain.RestorePassenger(id, email, profile)
	if err != nil {
		return nil, d.invalid(path+".uuid", err)
	}
	for i, bd := range *pd.BookedFlights {
		booked, err := d.bookedFlight(fmt.Sprintf("%s.booked flights[%d]", path, i), bd)
		if err != nil {
			return nil, err
		}
		if err := p.LoadBookedFlight(booked); err != nil {
			return nil, d.invalid(fmt.Sprintf("%s.booked flights[%d]", path, i), err)
		}
	}
	return p, nil
}

func (d decoder) bookedFlight(path string, bd bookedFlightDocument) (domain.BookedFlight, error) {
	id, err := d.uuid(path+".uuid", bd.UUID)
	if err != nil {
		return domain.BookedFlight{}, err
	}
	if bd.Seat == nil {
		return domain.BookedFlight{}, missing(d.document, path+".seat")
	}
	seat, err := domain.ParseSeatClass(*bd.Seat)
	if err != nil {
		return domain.BookedFlight{}, d.invalid(path+".seat", err)
	}
	if bd.Flight == nil {
		return domain.BookedFlight{}, missing(d.document, path+".flight")
	}
	f, err := d.flight(path+".flight", *bd.Flight)
	if err != nil {
		return domain.BookedFlight{}, err
	}
	if f.ID() != id {
		return domain.BookedFlight{}, d.invalid(path+".uuid", fmt.Errorf("booked flight id %s does not match nested flight %s", id, f.ID()))
	}

	booked, err := domain.NewBookedFlight(seat, f)
	if err != nil {
		return domain.BookedFlight{}, d.invalid(path, err)
	}
	return booked, nil
}

func (d decoder) flight(path string, fd flightDocument) (*domain.Flight, error) {
	id, err := d.uuid(path+".uuid", fd.UUID)
	if err != nil {
		return nil, err
	}

	var airline, model, start, destination string
	strs := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"airline", fd.Airline, &airline},
		{"airplane model", fd.AirplaneModel, &model},
		{"start location", fd.StartLocation, &start},
		{"destination", fd.Destination, &destination},
	}
	for _, s := range strs {
		if s.src == nil {
			return nil, missing(d.document, path+"."+s.name)
		}
		*s.dst = *s.src
	}

	var flightNumber, gate, maxSeats int
	var seats domain.SeatCounts
	ints := []struct {
		name string
		src  *int
		dst  *int
	}{
		{"flight number", fd.FlightNumber, &flightNumber},
		{"gate number", fd.GateNumber, &gate},
		{"max seats", fd.MaxSeats, &maxSeats},
		{"remaining economy seats", fd.RemainingEconomySeats, &seats.Economy},
		{"remaining business seats", fd.RemainingBusinessSeats, &seats.Business},
		{"remaining first class seats", fd.RemainingFirstClassSeats, &seats.FirstClass},
	}
	for _, n := range ints {
		if n.src == nil {
			return nil, missing(d.document, path+"."+n.name)
		}
		*n.dst = *n.src
	}

	var fares domain.Fares
	prices := []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"economy price", fd.EconomyPrice, &fares.Economy},
		{"business price", fd.BusinessPrice, &fares.Business},
		{"first class price", fd.FirstClassPrice, &fares.FirstClass},
	}
	for _, pr := range prices {
		if pr.src == nil {
			return nil, missing(d.document, path+"."+pr.name)
		}
		*pr.dst = *pr.src
	}

	departure, err := d.time(path+".departure", fd.Departure, domain.DateTimeLayout)
	if err != nil {
		return nil, err
	}
	arrival, err := d.time(path+".arrival", fd.Arrival, domain.DateTimeLayout)
	if err != nil {
		return nil, err
	}

	f, err := domain.RestoreFlight(id, domain.FlightParams{
		AirlineCode:   airline,
		FlightNumber:  flightNumber,
		DepartureTime: departure,
		ArrivalTime:   arrival,
		StartLocation: start,
		EndLocation:   destination,
		MaxSeats:      maxSeats,
		Seats:         seats,
	})
	if err != nil {
		return nil, d.invalid(path, err)
	}
	f.GateNumber = gate
	f.AirplaneModel = model
	f.Fares = fares
	return f, nil
}

func (d decoder) uuid(field string, v *string) (uuid.UUID, error) {
	if v == nil {
		return uuid.Nil, missing(d.document, field)
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		return uuid.Nil, d.invalid(field, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, d.invalid(field, errors.New("nil uuid"))
	}
	return id, nil
}

func (d decoder) time(field string, v *string, layout string) (time.Time, error) {
	if v == nil {
		return time.Time{}, missing(d.document, field)
	}
	t, err := time.Parse(layout, *v)
	if err != nil {
		return time.Time{}, d.invalid(field, err)
	}
	return t, nil
}

func (d decoder) invalid(field string, err error) error {
	return &ParseError{Document: d.document, Field: field, Err: err}
}

func missing(document, field string) error {
	return &ParseError{Document: document, Field: field, Err: ErrMissingField}
}
