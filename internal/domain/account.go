package domain

import (
	"fmt"
	"sort"
)

// CredentialResult is the outcome of Account.MatchPassword.
type CredentialResult int

const (
	CredentialNotFound CredentialResult = iota
	CredentialMismatch
	CredentialMatch
)

func (r CredentialResult) String() string {
	switch r {
	case CredentialMatch:
		return "match"
	case CredentialMismatch:
		return "mismatch"
	default:
		return "not found"
	}
}

// Err maps the result to nil, ErrCredentialMismatch or ErrAccountNotFound.
func (r CredentialResult) Err() error {
	switch r {
	case CredentialMatch:
		return nil
	case CredentialMismatch:
		return ErrCredentialMismatch
	default:
		return ErrAccountNotFound
	}
}

// Account indexes passengers by email. The key is the source of truth for a
// passenger's email; the passenger's own field is kept equal to it.
type Account struct {
	passengers map[string]*Passenger
	sink       EventSink
}

type AccountOption func(*Account)

// WithAccountEvents sets the sink for account mutations. Passengers added to
// the account report their bookings to the same sink.
func WithAccountEvents(sink EventSink) AccountOption {
	return func(a *Account) {
		a.sink = sinkOrNop(sink)
	}
}

func NewAccount(opts ...AccountOption) *Account {
	a := &Account{
		passengers: make(map[string]*Passenger),
		sink:       nopSink{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MatchPassword compares password with the one stored for email. Passwords
// are opaque strings.
func (a *Account) MatchPassword(email, password string) CredentialResult {
	p, ok := a.passengers[email]
	if !ok {
		return CredentialNotFound
	}
	if p.Password != password {
		return CredentialMismatch
	}
	return CredentialMatch
}

// Authenticate returns the passenger for email if password matches.
func (a *Account) Authenticate(email, password string) (*Passenger, error) {
	if err := a.MatchPassword(email, password).Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, email)
	}
	return a.passengers[email], nil
}

func (a *Account) Passenger(email string) (*Passenger, error) {
	p, ok := a.passengers[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, email)
	}
	return p, nil
}

func (a *Account) Has(email string) bool {
	_, ok := a.passengers[email]
	return ok
}

// AddPassenger inserts p under its email, replacing any passenger already
// stored there.
func (a *Account) AddPassenger(p *Passenger, opts ...AddOption) error {
	if p == nil || p.email == "" {
		return fmt.Errorf("%w: passenger with an email is required", ErrInvalidInput)
	}
	p.sink = a.sink
	a.passengers[p.email] = p

	if collectAddOptions(opts).fromSnapshot {
		a.record(EventPassengerLoaded, p, fmt.Sprintf("Loaded passenger %s from file.", p.FullName()))
	} else {
		a.record(EventPassengerAdded, p, fmt.Sprintf("Added passenger %s to accounts database.", p.FullName()))
	}
	return nil
}

// DeletePassenger removes and returns the passenger stored under email. The
// passenger's bookings are left untouched.
func (a *Account) DeletePassenger(email string) (*Passenger, error) {
	p, ok := a.passengers[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, email)
	}
	delete(a.passengers, email)
	p.sink = nopSink{}

	a.record(EventPassengerRemoved, p, fmt.Sprintf("Removed passenger %s from accounts database.", p.FullName()))
	return p, nil
}

// ReplacePassenger stores p under an existing email. The stored passenger
// takes email as its own. A passenger already stored under another email is
// rejected; use ChangeEmail to move it.
func (a *Account) ReplacePassenger(email string, p *Passenger) error {
	if p == nil {
		return fmt.Errorf("%w: passenger is required", ErrInvalidInput)
	}
	old, ok := a.passengers[email]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, email)
	}
	if old != p && a.passengers[p.email] == p {
		return fmt.Errorf("%w: passenger is already stored under %s", ErrInvalidInput, p.email)
	}
	if old != p {
		old.sink = nopSink{}
	}
	p.email = email
	p.sink = a.sink
	a.passengers[email] = p

	a.record(EventPassengerReplaced, p, fmt.Sprintf("Updated passenger %s in accounts database.", p.FullName()))
	return nil
}

// ChangeEmail moves the passenger stored under oldEmail to newEmail in one
// step, keeping key and passenger field in sync.
func (a *Account) ChangeEmail(oldEmail, newEmail string) error {
	if newEmail == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	p, ok := a.passengers[oldEmail]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, oldEmail)
	}
	if oldEmail == newEmail {
		return nil
	}
	if _, taken := a.passengers[newEmail]; taken {
		return fmt.Errorf("%w: %s", ErrEmailTaken, newEmail)
	}

	delete(a.passengers, oldEmail)
	p.email = newEmail
	a.passengers[newEmail] = p

	a.record(EventEmailChanged, p, fmt.Sprintf("Changed email of passenger %s from %s to %s.", p.FullName(), oldEmail, newEmail))
	return nil
}

// Passengers returns every passenger ordered by email.
func (a *Account) Passengers() []*Passenger {
	emails := make([]string, 0, len(a.passengers))
	for email := range a.passengers {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	out := make([]*Passenger, 0, len(emails))
	for _, email := range emails {
		out = append(out, a.passengers[email])
	}
	return out
}

func (a *Account) Len() int {
	return len(a.passengers)
}

func (a *Account) record(typ EventType, p *Passenger, description string) {
	ev := newEvent(typ, description)
	ev.Email = p.email
	a.sink.Record(ev)
}
