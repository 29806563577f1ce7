package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Domenick1991/applane/internal/domain"
	"github.com/Domenick1991/applane/internal/service/booking"
	"github.com/Domenick1991/applane/internal/service/flights"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage")

type app struct {
	flights  flights.FlightUseCase
	bookings booking.BookingUseCase
	out      io.Writer
}

type command struct {
	summary string
	// mutates marks commands whose success must be followed by a save.
	mutates bool
	run     func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"signup":         {"create a passenger account", true, (*app).signUp},
	"login":          {"check credentials and show the passenger", false, (*app).login},
	"flights":        {"list every scheduled flight", false, (*app).listFlights},
	"search":         {"find flights by route", false, (*app).search},
	"add-flight":     {"add a flight to the schedule", true, (*app).addFlight},
	"book":           {"book a seat on a flight", true, (*app).book},
	"cancel":         {"cancel a booking", true, (*app).cancel},
	"bookings":       {"list a passenger's booked flights", false, (*app).listBookings},
	"update-profile": {"edit passenger details", true, (*app).updateProfile},
	"change-email":   {"move an account to a new email", true, (*app).changeEmail},
	"delete-account": {"delete an account and release its seats", true, (*app).deleteAccount},
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: applane [--config path] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %s\n", name, commands[name].summary)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// credentials registers --email and --password on fs.
func credentials(fs *pflag.FlagSet) (email, password *string) {
	return fs.StringP("email", "e", "", "account email"),
		fs.StringP("password", "p", "", "account password")
}

func (a *app) authenticate(ctx context.Context, email, password string) error {
	if email == "" {
		return fmt.Errorf("%w: --email is required", errUsage)
	}
	_, err := a.bookings.Login(ctx, email, password)
	return err
}

func (a *app) signUp(ctx context.Context, args []string) error {
	var input booking.SignUpInput
	fs := newFlagSet("signup")
	fs.StringVar(&input.FirstName, "first", "", "first name")
	fs.StringVar(&input.MiddleName, "middle", "", "middle name")
	fs.StringVar(&input.LastName, "last", "", "last name")
	fs.StringVarP(&input.Email, "email", "e", "", "account email")
	fs.StringVarP(&input.Password, "password", "p", "", "account password")
	fs.StringVar(&input.DateOfBirth, "dob", "", "date of birth, yyyy-MM-dd")
	fs.StringVar(&input.Phone, "phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	info, err := a.bookings.SignUp(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, info.Details)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email, password := credentials(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	info, err := a.bookings.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, info.Details)
	fmt.Fprintf(a.out, "Booked Flights: %d\n", info.Bookings)
	return nil
}

func (a *app) listFlights(ctx context.Context, args []string) error {
	fs := newFlagSet("flights")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	list, err := a.flights.List(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		fmt.Fprintf(a.out, "%s\n\n", list[i].String())
	}
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := newFlagSet("search")
	from := fs.String("from", "", "start location")
	to := fs.String("to", "", "destination")
	email, password := credentials(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *from == "" || *to == "" {
		return fmt.Errorf("%w: --from and --to are required", errUsage)
	}

	var (
		found []domain.Flight
		err   error
	)
	if *email != "" {
		if err := a.authenticate(ctx, *email, *password); err != nil {
			return err
		}
		found, err = a.flights.SearchAvailable(ctx, *email, *from, *to)
	} else {
		found, err = a.flights.Search(ctx, *from, *to)
	}
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintf(a.out, "No flights from %s to %s.\n", *from, *to)
		return nil
	}
	for i := range found {
		fmt.Fprintf(a.out, "%s\nID: %s\n\n", found[i].PublicInfo(), found[i].ID())
	}
	return nil
}

func (a *app) addFlight(ctx context.Context, args []string) error {
	var input flights.AddFlightInput
	fs := newFlagSet("add-flight")
	fs.StringVar(&input.AirlineCode, "airline", "", "airline code")
	fs.IntVar(&input.FlightNumber, "number", 0, "flight number")
	gate := fs.Int("gate", domain.UnassignedGate, "gate number")
	fs.StringVar(&input.AirplaneModel, "model", "", "airplane model")
	fs.StringVar(&input.Departure, "departure", "", "departure time, yyyy-MM-dd HH:mm")
	fs.StringVar(&input.Arrival, "arrival", "", "arrival time, yyyy-MM-dd HH:mm")
	fs.StringVar(&input.StartLocation, "from", "", "start location")
	fs.StringVar(&input.EndLocation, "to", "", "destination")
	fs.IntVar(&input.MaxSeats, "max-seats", 0, "maximum seats")
	fs.IntVar(&input.Seats.Economy, "economy", 0, "economy seats")
	fs.IntVar(&input.Seats.Business, "business", 0, "business seats")
	fs.IntVar(&input.Seats.FirstClass, "first", 0, "first class seats")
	fs.Float64Var(&input.Fares.Economy, "economy-price", 0, "economy fare")
	fs.Float64Var(&input.Fares.Business, "business-price", 0, "business fare")
	fs.Float64Var(&input.Fares.FirstClass, "first-price", 0, "first class fare")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.Changed("gate") {
		input.GateNumber = gate
	}
	if input.MaxSeats == 0 {
		input.MaxSeats = input.Seats.Total()
	}

	f, err := a.flights.AddFlight(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, f.String())
	return nil
}

func parseFlightID(v string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: --flight: %v", errUsage, err)
	}
	return id, nil
}

func (a *app) book(ctx context.Context, args []string) error {
	fs := newFlagSet("book")
	email, password := credentials(fs)
	flight := fs.String("flight", "", "flight id")
	seatName := fs.String("seat", "economy", "seat class: "+seatClassNames())
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	id, err := parseFlightID(*flight)
	if err != nil {
		return err
	}
	seat, err := domain.SeatClassFromName(*seatName)
	if err != nil {
		return err
	}
	if err := a.authenticate(ctx, *email, *password); err != nil {
		return err
	}

	info, err := a.bookings.BookFlight(ctx, *email, id, seat)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Booked %s on %s for %.2f.\n", info.Seat, info.Flight.Designator(), info.Price)
	return nil
}

func (a *app) cancel(ctx context.Context, args []string) error {
	fs := newFlagSet("cancel")
	email, password := credentials(fs)
	flight := fs.String("flight", "", "flight id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	id, err := parseFlightID(*flight)
	if err != nil {
		return err
	}
	if err := a.authenticate(ctx, *email, *password); err != nil {
		return err
	}

	info, err := a.bookings.CancelBooking(ctx, *email, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Cancelled %s on %s.\n", info.Seat, info.Flight.Designator())
	return nil
}

func (a *app) listBookings(ctx context.Context, args []string) error {
	fs := newFlagSet("bookings")
	email, password := credentials(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := a.authenticate(ctx, *email, *password); err != nil {
		return err
	}

	list, err := a.bookings.Bookings(ctx, *email)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No booked flights.")
		return nil
	}
	for _, b := range list {
		fmt.Fprintf(a.out, "%s\nSeat: %s\nPrice: %.2f\n\n", b.Flight.String(), b.Seat, b.Price)
	}
	return nil
}

func (a *app) updateProfile(ctx context.Context, args []string) error {
	fs := newFlagSet("update-profile")
	email, password := credentials(fs)
	first := fs.String("first", "", "first name")
	middle := fs.String("middle", "", "middle name")
	last := fs.String("last", "", "last name")
	newPassword := fs.String("new-password", "", "new password")
	dob := fs.String("dob", "", "date of birth, yyyy-MM-dd")
	phone := fs.String("phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := a.authenticate(ctx, *email, *password); err != nil {
		return err
	}

	changed := func(name string, v *string) *string {
		if fs.Changed(name) {
			return v
		}
		return nil
	}
	info, err := a.bookings.UpdateProfile(ctx, *email, booking.ProfileUpdate{
		FirstName:   changed("first", first),
		MiddleName:  changed("middle", middle),
		LastName:    changed("last", last),
		Password:    changed("new-password", newPassword),
		DateOfBirth: changed("dob", dob),
		Phone:       changed("phone", phone),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, info.Details)
	return nil
}

func (a *app) changeEmail(ctx context.Context, args []string) error {
	fs := newFlagSet("change-email")
	email, password := credentials(fs)
	newEmail := fs.String("new-email", "", "new account email")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := a.authenticate(ctx, *email, *password); err != nil {
		return err
	}

	if err := a.bookings.ChangeEmail(ctx, *email, *newEmail); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Email changed to %s.\n", *newEmail)
	return nil
}

func (a *app) deleteAccount(ctx context.Context, args []string) error {
	fs := newFlagSet("delete-account")
	email, password := credentials(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := a.authenticate(ctx, *email, *password); err != nil {
		return err
	}

	released, err := a.bookings.DeleteAccount(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s, released %d bookings.\n", *email, released)
	return nil
}

// seatClassNames lists the accepted --seat values.
func seatClassNames() string {
	classes := domain.SeatClasses()
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = fmt.Sprintf("%d (%s)", int(c), strings.ToLower(c.String()))
	}
	return strings.Join(names, ", ")
}
