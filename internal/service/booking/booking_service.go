package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/applane/internal/domain"
	"github.com/Domenick1991/applane/internal/persistence"
	"github.com/Domenick1991/applane/internal/state"
	"github.com/google/uuid"
)

// ErrWriteLocked is returned by Save when another process is writing the
// snapshots.
var ErrWriteLocked = errors.New("snapshots are being written by another process")

// ErrDamagedSnapshot is returned by Save when a document failed to load and
// was left untouched.
var ErrDamagedSnapshot = errors.New("snapshot failed to load and was not overwritten")

const writeLockName = "snapshots"

type BookingUseCase interface {
	SignUp(ctx context.Context, input SignUpInput) (PassengerInfo, error)
	Login(ctx context.Context, email, password string) (PassengerInfo, error)
	BookFlight(ctx context.Context, email string, flightID uuid.UUID, seat domain.SeatClass) (BookingInfo, error)
	CancelBooking(ctx context.Context, email string, flightID uuid.UUID) (BookingInfo, error)
	Bookings(ctx context.Context, email string) ([]BookingInfo, error)
	UpdateProfile(ctx context.Context, email string, input ProfileUpdate) (PassengerInfo, error)
	ChangeEmail(ctx context.Context, oldEmail, newEmail string) error
	DeleteAccount(ctx context.Context, email string) (int, error)
}

// Store loads both snapshot documents and saves each one.
type Store interface {
	Load(ctx context.Context, sink domain.EventSink) (persistence.LoadResult, error)
	SaveAccounts(ctx context.Context, a *domain.Account) error
	SaveSchedule(ctx context.Context, s *domain.FlightSchedule) error
}

// Locker guards Save across processes.
type Locker interface {
	AcquireWriteLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	ReleaseWriteLock(ctx context.Context, name, token string) error
}

type BookingService struct {
	registry *state.Registry
	store    Store
	locker   Locker
	lockTTL  time.Duration

	mu              sync.Mutex
	accountsDamaged bool
	scheduleDamaged bool
}

type BookingServiceOption func(*BookingService)

func WithWriteLock(locker Locker, ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func NewBookingService(registry *state.Registry, store Store, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		registry: registry,
		store:    store,
		lockTTL:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type SignUpInput struct {
	FirstName   string
	MiddleName  string
	LastName    string
	Email       string
	Password    string
	DateOfBirth string
	Phone       string
}

// ProfileUpdate carries the profile fields to change. Nil fields are kept.
type ProfileUpdate struct {
	FirstName   *string
	MiddleName  *string
	LastName    *string
	Password    *string
	DateOfBirth *string
	Phone       *string
}

type PassengerInfo struct {
	ID       uuid.UUID
	Email    string
	Profile  domain.Profile
	Bookings int
	Details  string
}

type BookingInfo struct {
	Flight domain.Flight
	Seat   domain.SeatClass
	Price  float64
}

func (s *BookingService) SignUp(ctx context.Context, input SignUpInput) (PassengerInfo, error) {
	if err := ctx.Err(); err != nil {
		return PassengerInfo{}, err
	}
	input.Email = strings.TrimSpace(input.Email)
	profile, err := validateSignUp(input)
	if err != nil {
		return PassengerInfo{}, err
	}

	var info PassengerInfo
	err = s.registry.Update(func(account *domain.Account, _ *domain.FlightSchedule) error {
		if account.Has(input.Email) {
			return fmt.Errorf("%w: %s", domain.ErrEmailTaken, input.Email)
		}
		p := domain.NewPassenger(input.Email, profile)
		if err := account.AddPassenger(p); err != nil {
			return err
		}
		info = passengerInfo(p)
		return nil
	})
	return info, err
}

func (s *BookingService) Login(ctx context.Context, email, password string) (PassengerInfo, error) {
	if err := ctx.Err(); err != nil {
		return PassengerInfo{}, err
	}
	var info PassengerInfo
	err := s.registry.View(func(account *domain.Account, _ *domain.FlightSchedule) error {
		p, err := account.Authenticate(email, password)
		if err != nil {
			return err
		}
		info = passengerInfo(p)
		return nil
	})
	return info, err
}

// BookFlight books one seat of class seat on the scheduled flight. A flight
// the passenger already holds is refused with domain.ErrAlreadyBooked.
func (s *BookingService) BookFlight(ctx context.Context, email string, flightID uuid.UUID, seat domain.SeatClass) (BookingInfo, error) {
	if err := ctx.Err(); err != nil {
		return BookingInfo{}, err
	}
	if !seat.Valid() {
		return BookingInfo{}, fmt.Errorf("%w: %d", domain.ErrInvalidSeatClass, int(seat))
	}

	var info BookingInfo
	err := s.registry.Update(func(account *domain.Account, schedule *domain.FlightSchedule) error {
		p, err := account.Passenger(email)
		if err != nil {
			return err
		}
		f, err := schedule.FlightByID(flightID)
		if err != nil {
			return err
		}
		if p.HasFlight(f) {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyBooked, f.Designator())
		}
		if err := p.AddBookedFlight(f, seat); err != nil {
			return err
		}
		b, _ := p.Booking(flightID)
		info = bookingInfo(b)
		return nil
	})
	if err != nil {
		return BookingInfo{}, err
	}
	log.Printf("Booked %s seat on flight %s for %s", seat, flightID, email)
	return info, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, email string, flightID uuid.UUID) (BookingInfo, error) {
	if err := ctx.Err(); err != nil {
		return BookingInfo{}, err
	}
	var info BookingInfo
	err := s.registry.Update(func(account *domain.Account, _ *domain.FlightSchedule) error {
		p, err := account.Passenger(email)
		if err != nil {
			return err
		}
		b, err := p.RemoveBookedFlight(flightID)
		if err != nil {
			return err
		}
		info = bookingInfo(b)
		return nil
	})
	if err != nil {
		return BookingInfo{}, err
	}
	log.Printf("Cancelled booking on flight %s for %s", flightID, email)
	return info, nil
}

// Bookings lists the passenger's booked flights ordered by departure.
func (s *BookingService) Bookings(ctx context.Context, email string) ([]BookingInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []BookingInfo
	err := s.registry.View(func(account *domain.Account, _ *domain.FlightSchedule) error {
		p, err := account.Passenger(email)
		if err != nil {
			return err
		}
		for _, b := range p.BookedFlights() {
			out = append(out, bookingInfo(b))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BookingService) UpdateProfile(ctx context.Context, email string, input ProfileUpdate) (PassengerInfo, error) {
	if err := ctx.Err(); err != nil {
		return PassengerInfo{}, err
	}
	var info PassengerInfo
	err := s.registry.Update(func(account *domain.Account, _ *domain.FlightSchedule) error {
		p, err := account.Passenger(email)
		if err != nil {
			return err
		}
		profile, err := applyUpdate(p.Profile, input)
		if err != nil {
			return err
		}
		p.Profile = profile
		if err := account.ReplacePassenger(email, p); err != nil {
			return err
		}
		info = passengerInfo(p)
		return nil
	})
	return info, err
}

func (s *BookingService) ChangeEmail(ctx context.Context, oldEmail, newEmail string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.registry.Update(func(account *domain.Account, _ *domain.FlightSchedule) error {
		return account.ChangeEmail(oldEmail, strings.TrimSpace(newEmail))
	})
}

// DeleteAccount gives every held seat back and removes the passenger. It
// returns the number of released bookings.
func (s *BookingService) DeleteAccount(ctx context.Context, email string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	released := 0
	err := s.registry.Update(func(account *domain.Account, _ *domain.FlightSchedule) error {
		p, err := account.Passenger(email)
		if err != nil {
			return err
		}
		for _, b := range p.BookedFlights() {
			if _, err := p.RemoveBookedFlight(b.Flight().ID()); err != nil {
				return err
			}
			released++
		}
		_, err = account.DeletePassenger(email)
		return err
	})
	if err != nil {
		return released, err
	}
	log.Printf("Deleted account %s, released %d bookings", email, released)
	return released, nil
}

// Load replaces the in-memory state with the stored snapshots. On error the
// documents that failed are replaced by empty registries and the error is
// still returned, so callers may log it and keep going. Documents that exist
// but failed to load are not written by Save.
func (s *BookingService) Load(ctx context.Context) (domain.ReconcileReport, error) {
	result, err := s.store.Load(ctx, s.registry.Sink())
	s.registry.Replace(result.Account, result.Schedule)

	s.mu.Lock()
	s.accountsDamaged = result.AccountsDamaged
	s.scheduleDamaged = result.ScheduleDamaged
	s.mu.Unlock()
	if result.Reconcile.Orphans > 0 {
		log.Printf("WARNING: %d booked flights are not on the schedule", result.Reconcile.Orphans)
	}
	return result.Reconcile, err
}

// Save writes the flights snapshot, then the accounts snapshot, under the
// cross-process write lock when one is configured. A damaged document is
// skipped and reported with ErrDamagedSnapshot after the others are written.
func (s *BookingService) Save(ctx context.Context) error {
	if s.locker != nil {
		token, ok, err := s.locker.AcquireWriteLock(ctx, writeLockName, s.lockTTL)
		if err != nil {
			return fmt.Errorf("acquire write lock: %w", err)
		}
		if !ok {
			return ErrWriteLocked
		}
		defer func() {
			if err := s.locker.ReleaseWriteLock(ctx, writeLockName, token); err != nil {
				log.Printf("WARNING: failed to release write lock: %v", err)
			}
		}()
	}

	s.mu.Lock()
	accountsDamaged, scheduleDamaged := s.accountsDamaged, s.scheduleDamaged
	s.mu.Unlock()

	var skipped []string
	err := s.registry.View(func(account *domain.Account, schedule *domain.FlightSchedule) error {
		if scheduleDamaged {
			skipped = append(skipped, persistence.FlightsDocument)
		} else if err := s.store.SaveSchedule(ctx, schedule); err != nil {
			return err
		}
		if accountsDamaged {
			skipped = append(skipped, persistence.AccountsDocument)
		} else if err := s.store.SaveAccounts(ctx, account); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(skipped) > 0 {
		log.Printf("WARNING: not saving damaged snapshots: %s", strings.Join(skipped, ", "))
		return fmt.Errorf("%w: %s", ErrDamagedSnapshot, strings.Join(skipped, ", "))
	}
	return nil
}

func validateSignUp(input SignUpInput) (domain.Profile, error) {
	required := []struct {
		name  string
		value string
	}{
		{"first name", input.FirstName},
		{"last name", input.LastName},
		{"email", input.Email},
		{"password", input.Password},
		{"phone", input.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return domain.Profile{}, fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, f.name)
		}
	}
	dob, err := parseDateOfBirth(input.DateOfBirth)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{
		FirstName:   input.FirstName,
		MiddleName:  input.MiddleName,
		LastName:    input.LastName,
		Password:    input.Password,
		DateOfBirth: dob,
		Phone:       input.Phone,
	}, nil
}

func applyUpdate(profile domain.Profile, input ProfileUpdate) (domain.Profile, error) {
	set := func(dst *string, src *string, name string, required bool) error {
		if src == nil {
			return nil
		}
		if required && strings.TrimSpace(*src) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, name)
		}
		*dst = *src
		return nil
	}

	if err := set(&profile.FirstName, input.FirstName, "first name", true); err != nil {
		return domain.Profile{}, err
	}
	if err := set(&profile.MiddleName, input.MiddleName, "middle name", false); err != nil {
		return domain.Profile{}, err
	}
	if err := set(&profile.LastName, input.LastName, "last name", true); err != nil {
		return domain.Profile{}, err
	}
	if err := set(&profile.Password, input.Password, "password", true); err != nil {
		return domain.Profile{}, err
	}
	if err := set(&profile.Phone, input.Phone, "phone", true); err != nil {
		return domain.Profile{}, err
	}
	if input.DateOfBirth != nil {
		dob, err := parseDateOfBirth(*input.DateOfBirth)
		if err != nil {
			return domain.Profile{}, err
		}
		profile.DateOfBirth = dob
	}
	return profile, nil
}

func parseDateOfBirth(v string) (time.Time, error) {
	dob, err := time.Parse(domain.DateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date of birth must be yyyy-MM-dd", domain.ErrInvalidInput)
	}
	return dob, nil
}

func passengerInfo(p *domain.Passenger) PassengerInfo {
	return PassengerInfo{
		ID:       p.ID(),
		Email:    p.Email(),
		Profile:  p.Profile,
		Bookings: p.BookingCount(),
		Details:  p.String(),
	}
}

func bookingInfo(b domain.BookedFlight) BookingInfo {
	return BookingInfo{
		Flight: *b.Flight(),
		Seat:   b.Seat(),
		Price:  b.Price(),
	}
}

var _ BookingUseCase = (*BookingService)(nil)
