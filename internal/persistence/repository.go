package persistence

import (
	"context"
	"errors"
	"log"

	"github.com/Domenick1991/applane/internal/domain"
)

// SnapshotStore keeps whole snapshot documents by name. Read returns an error
// wrapping ErrSnapshotNotFound when nothing is stored under name.
type SnapshotStore interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// SnapshotCache is an optional read-through cache in front of the store.
// GetSnapshot returns nil, nil on a miss.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, name string) ([]byte, error)
	SetSnapshot(ctx context.Context, name string, data []byte) error
}

type Repository struct {
	store        SnapshotStore
	cache        SnapshotCache
	accountsName string
	flightsName  string
}

type RepositoryOption func(*Repository)

func WithSnapshotCache(cache SnapshotCache) RepositoryOption {
	return func(r *Repository) {
		r.cache = cache
	}
}

func WithDocumentNames(accounts, flights string) RepositoryOption {
	return func(r *Repository) {
		if accounts != "" {
			r.accountsName = accounts
		}
		if flights != "" {
			r.flightsName = flights
		}
	}
}

func NewRepository(store SnapshotStore, opts ...RepositoryOption) *Repository {
	r := &Repository{
		store:        store,
		accountsName: AccountsDocument + ".json",
		flightsName:  FlightsDocument + ".json",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) LoadAccounts(ctx context.Context, opts ...domain.AccountOption) (*domain.Account, error) {
	data, err := r.read(ctx, r.accountsName)
	if err != nil {
		return nil, err
	}
	return DecodeAccounts(data, opts...)
}

func (r *Repository) LoadSchedule(ctx context.Context, opts ...domain.ScheduleOption) (*domain.FlightSchedule, error) {
	data, err := r.read(ctx, r.flightsName)
	if err != nil {
		return nil, err
	}
	return DecodeSchedule(data, opts...)
}

func (r *Repository) SaveAccounts(ctx context.Context, a *domain.Account) error {
	data, err := EncodeAccounts(a)
	if err != nil {
		return err
	}
	return r.write(ctx, r.accountsName, data)
}

func (r *Repository) SaveSchedule(ctx context.Context, s *domain.FlightSchedule) error {
	data, err := EncodeSchedule(s)
	if err != nil {
		return err
	}
	return r.write(ctx, r.flightsName, data)
}

// LoadResult is the outcome of Load. Account and Schedule are never nil.
// A document is damaged when it exists but could not be read or decoded;
// it must not be overwritten by the empty registry that replaced it.
type LoadResult struct {
	Account         *domain.Account
	Schedule        *domain.FlightSchedule
	Reconcile       domain.ReconcileReport
	AccountsDamaged bool
	ScheduleDamaged bool
}

// Load reads both documents and reconciles booked flights with the schedule.
// A document that fails to load is replaced by an empty registry and its
// error is returned joined with the other one, so callers can keep running.
func (r *Repository) Load(ctx context.Context, sink domain.EventSink) (LoadResult, error) {
	var (
		result LoadResult
		errs   []error
	)

	schedule, err := r.LoadSchedule(ctx, domain.WithScheduleEvents(sink))
	if err != nil {
		errs = append(errs, err)
		result.ScheduleDamaged = damaged(err)
		schedule = domain.NewFlightSchedule(domain.WithScheduleEvents(sink))
	}
	account, err := r.LoadAccounts(ctx, domain.WithAccountEvents(sink))
	if err != nil {
		errs = append(errs, err)
		result.AccountsDamaged = damaged(err)
		account = domain.NewAccount(domain.WithAccountEvents(sink))
	}

	result.Account = account
	result.Schedule = schedule
	result.Reconcile = domain.Reconcile(account, schedule)
	return result, errors.Join(errs...)
}

func damaged(err error) bool {
	return !errors.Is(err, ErrSnapshotNotFound)
}

func (r *Repository) read(ctx context.Context, name string) ([]byte, error) {
	if r.cache != nil {
		cached, err := r.cache.GetSnapshot(ctx, name)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			log.Printf("snapshot cache get %s: %v", name, err)
		}
	}

	data, err := r.store.Read(ctx, name)
	if err != nil {
		return nil, &IOError{Op: "read", Document: name, Err: err}
	}
	if r.cache != nil {
		if err := r.cache.SetSnapshot(ctx, name, data); err != nil {
			log.Printf("snapshot cache set %s: %v", name, err)
		}
	}
	return data, nil
}

func (r *Repository) write(ctx context.Context, name string, data []byte) error {
	if err := r.store.Write(ctx, name, data); err != nil {
		return &IOError{Op: "write", Document: name, Err: err}
	}
	if r.cache != nil {
		if err := r.cache.SetSnapshot(ctx, name, data); err != nil {
			log.Printf("snapshot cache set %s: %v", name, err)
		}
	}
	return nil
}
