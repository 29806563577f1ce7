package flights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/applane/internal/domain"
	"github.com/Domenick1991/applane/internal/state"
	"github.com/google/uuid"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error)
	Search(ctx context.Context, start, end string) ([]domain.Flight, error)
	SearchAvailable(ctx context.Context, email, start, end string) ([]domain.Flight, error)
	AddFlight(ctx context.Context, input AddFlightInput) (*domain.Flight, error)
}

// FlightService answers schedule queries. Returned flights are copies taken
// under the registry lock, so callers never share inventory counters.
type FlightService struct {
	registry *state.Registry
}

type AddFlightInput struct {
	AirlineCode   string
	FlightNumber  int
	GateNumber    *int
	AirplaneModel string
	Departure     string
	Arrival       string
	StartLocation string
	EndLocation   string
	MaxSeats      int
	Seats         domain.SeatCounts
	Fares         domain.Fares
}

func NewFlightService(registry *state.Registry) *FlightService {
	return &FlightService{registry: registry}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.Flight
	err := s.registry.View(func(_ *domain.Account, schedule *domain.FlightSchedule) error {
		out = copyFlights(schedule.Flights())
		return nil
	})
	return out, err
}

func (s *FlightService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *domain.Flight
	err := s.registry.View(func(_ *domain.Account, schedule *domain.FlightSchedule) error {
		f, err := schedule.FlightByID(id)
		if err != nil {
			return err
		}
		c := *f
		out = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns every flight on the route, in schedule order.
func (s *FlightService) Search(ctx context.Context, start, end string) ([]domain.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.Flight
	err := s.registry.View(func(_ *domain.Account, schedule *domain.FlightSchedule) error {
		out = copyFlights(schedule.FlightsByDestination(start, end))
		return nil
	})
	return out, err
}

// SearchAvailable is Search restricted to flights the passenger could still
// book: not full and not already held by them.
func (s *FlightService) SearchAvailable(ctx context.Context, email, start, end string) ([]domain.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.Flight
	err := s.registry.View(func(account *domain.Account, schedule *domain.FlightSchedule) error {
		p, err := account.Passenger(email)
		if err != nil {
			return err
		}
		for _, f := range schedule.FlightsByDestination(start, end) {
			if f.IsFull() || p.HasFlight(f) {
				continue
			}
			out = append(out, *f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FlightService) AddFlight(ctx context.Context, input AddFlightInput) (*domain.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := newFlight(input)
	if err != nil {
		return nil, err
	}

	err = s.registry.Update(func(_ *domain.Account, schedule *domain.FlightSchedule) error {
		schedule.AddFlight(f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c := *f
	return &c, nil
}

func newFlight(input AddFlightInput) (*domain.Flight, error) {
	required := map[string]string{
		"airline":        input.AirlineCode,
		"start location": input.StartLocation,
		"destination":    input.EndLocation,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, name)
		}
	}
	if input.FlightNumber <= 0 {
		return nil, fmt.Errorf("%w: flight number must be positive", domain.ErrInvalidInput)
	}

	departure, err := time.Parse(domain.DateTimeLayout, input.Departure)
	if err != nil {
		return nil, fmt.Errorf("%w: departure: %v", domain.ErrInvalidInput, err)
	}
	arrival, err := time.Parse(domain.DateTimeLayout, input.Arrival)
	if err != nil {
		return nil, fmt.Errorf("%w: arrival: %v", domain.ErrInvalidInput, err)
	}
	if arrival.Before(departure) {
		return nil, fmt.Errorf("%w: arrival is before departure", domain.ErrInvalidInput)
	}

	f, err := domain.NewFlight(domain.FlightParams{
		AirlineCode:   input.AirlineCode,
		FlightNumber:  input.FlightNumber,
		DepartureTime: departure,
		ArrivalTime:   arrival,
		StartLocation: input.StartLocation,
		EndLocation:   input.EndLocation,
		MaxSeats:      input.MaxSeats,
		Seats:         input.Seats,
	})
	if err != nil {
		return nil, err
	}
	if input.GateNumber != nil {
		f.GateNumber = *input.GateNumber
	}
	if input.AirplaneModel != "" {
		f.AirplaneModel = input.AirplaneModel
	}
	f.Fares = input.Fares
	return f, nil
}

func copyFlights(flights []*domain.Flight) []domain.Flight {
	out := make([]domain.Flight, 0, len(flights))
	for _, f := range flights {
		out = append(out, *f)
	}
	return out
}

var _ FlightUseCase = (*FlightService)(nil)
