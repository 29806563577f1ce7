package persistence

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/applane/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountsFixture = `{
    "accounts": [
        {
            "uuid": "0b6a2f3e-7c1d-4a8e-9f30-5d2b1c4e6a71",
            "first name": "Christie",
            "middle name": "",
            "last name": "Leung",
            "email": "christie",
            "password": "play",
            "date of birth": "2002-05-16",
            "phone": "604-123-4567",
            "booked flights": [
                {
                    "uuid": "9d1e7c42-3b5a-4f6e-8a2d-1c0b9e8f7a65",
                    "seat": 3,
                    "flight": {
                        "uuid": "9d1e7c42-3b5a-4f6e-8a2d-1c0b9e8f7a65",
                        "airline": "WS",
                        "flight number": 246,
                        "gate number": 12,
                        "airplane model": "Boeing 737",
                        "departure": "2023-03-04 09:30",
                        "arrival": "2023-03-04 11:00",
                        "start location": "YVR",
                        "destination": "YYZ",
                        "max seats": 300,
                        "remaining economy seats": 200,
                        "remaining business seats": 80,
                        "remaining first class seats": 19,
                        "economy price": 199.99,
                        "business price": 799.5,
                        "first class price": 1500
                    }
                }
            ]
        }
    ]
}`

func flightJSON(id, start, end string) string {
	return `{
        "uuid": "` + id + `",
        "airline": "AC",
        "flight number": 123,
        "gate number": -1,
        "airplane model": "TBD",
        "departure": "2023-01-02 15:04",
        "arrival": "2023-01-02 18:30",
        "start location": "` + start + `",
        "destination": "` + end + `",
        "max seats": 10,
        "remaining economy seats": 5,
        "remaining business seats": 3,
        "remaining first class seats": 2,
        "economy price": 0,
        "business price": 0,
        "first class price": 0
    }`
}

func flightsFixture() string {
	return `{"flights": [` +
		flightJSON("3f2b8c1a-6d4e-4b7a-9c5f-0e1d2a3b4c5d", "YVR", "YEG") + `,` +
		flightJSON("7a6b5c4d-3e2f-4a1b-8c9d-0e1f2a3b4c5d", "YVR", "LAX") + `,` +
		flightJSON("1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f", "YVR", "YYZ") + `]}`
}

func TestDecodeAccounts_General(t *testing.T) {
	account, err := DecodeAccounts([]byte(accountsFixture))
	require.NoError(t, err)

	p, err := account.Passenger("christie")
	require.NoError(t, err)
	assert.Equal(t, "0b6a2f3e-7c1d-4a8e-9f30-5d2b1c4e6a71", p.ID().String())
	assert.Equal(t, "Christie", p.FirstName)
	assert.Equal(t, "Leung", p.LastName)
	assert.Equal(t, time.Date(2002, time.May, 16, 0, 0, 0, 0, time.UTC), p.DateOfBirth)

	booked := p.BookedFlights()
	require.Len(t, booked, 1)
	assert.Equal(t, domain.SeatClassFirst, booked[0].Seat())
	f := booked[0].Flight()
	assert.Equal(t, 246, f.FlightNumber)
	assert.Equal(t, 12, f.GateNumber)
	assert.Equal(t, "Boeing 737", f.AirplaneModel)
	assert.Equal(t, domain.SeatCounts{Economy: 200, Business: 80, FirstClass: 19}, f.Seats())
	assert.Equal(t, domain.Fares{Economy: 199.99, Business: 799.5, FirstClass: 1500}, f.Fares)
	assert.Equal(t, time.Date(2023, time.March, 4, 9, 30, 0, 0, time.UTC), f.DepartureTime)
}

func TestDecodeAccounts_Empty(t *testing.T) {
	account, err := DecodeAccounts([]byte(`{"accounts": []}`))

	require.NoError(t, err)
	assert.Equal(t, 0, account.Len())
}

func TestDecodeSchedule_General(t *testing.T) {
	schedule, err := DecodeSchedule([]byte(flightsFixture()))
	require.NoError(t, err)

	assert.Len(t, schedule.FlightsByDestination("YVR", "YEG"), 1)
	assert.Len(t, schedule.FlightsByDestination("YVR", "LAX"), 1)
	assert.Len(t, schedule.FlightsByDestination("YVR", "YYZ"), 1)
	f := schedule.FlightsByDestination("YVR", "LAX")[0]
	assert.Equal(t, "AC", f.AirlineCode)
	assert.Equal(t, 123, f.FlightNumber)
	assert.Equal(t, domain.UnassignedGate, f.GateNumber)
}

func TestRoundTrip_Schedule(t *testing.T) {
	first, err := DecodeSchedule([]byte(flightsFixture()))
	require.NoError(t, err)

	encoded, err := EncodeSchedule(first)
	require.NoError(t, err)
	second, err := DecodeSchedule(encoded)
	require.NoError(t, err)
	reencoded, err := EncodeSchedule(second)
	require.NoError(t, err)

	assert.JSONEq(t, string(encoded), string(reencoded))
	assert.JSONEq(t, flightsFixture(), string(encoded))
}

func TestRoundTrip_Accounts(t *testing.T) {
	first, err := DecodeAccounts([]byte(accountsFixture))
	require.NoError(t, err)

	encoded, err := EncodeAccounts(first)
	require.NoError(t, err)
	second, err := DecodeAccounts(encoded)
	require.NoError(t, err)
	reencoded, err := EncodeAccounts(second)
	require.NoError(t, err)

	assert.Equal(t, string(encoded), string(reencoded))
	assert.JSONEq(t, accountsFixture, string(encoded))
}

func TestRoundTrip_BuiltGraph(t *testing.T) {
	account := domain.NewAccount()
	schedule := domain.NewFlightSchedule()
	departure := time.Date(2024, time.July, 1, 6, 45, 0, 0, time.UTC)
	f, err := domain.NewFlight(domain.FlightParams{
		AirlineCode:   "AC",
		FlightNumber:  101,
		DepartureTime: departure,
		ArrivalTime:   departure.Add(5 * time.Hour),
		StartLocation: "YVR",
		EndLocation:   "YYZ",
		MaxSeats:      300,
		Seats:         domain.SeatCounts{Economy: 200, Business: 80, FirstClass: 20},
	})
	require.NoError(t, err)
	f.Fares = domain.Fares{Economy: 250.25, Business: 900, FirstClass: 2100.5}
	schedule.AddFlight(f)

	for _, email := range []string{"b@example.com", "a@example.com"} {
		p := domain.NewPassenger(email, domain.Profile{FirstName: "A", LastName: "B", Password: "pw", DateOfBirth: departure, Phone: "1"})
		require.NoError(t, account.AddPassenger(p))
		require.NoError(t, p.AddBookedFlight(f, domain.SeatClassBusiness))
	}

	accountsJSON, err := EncodeAccounts(account)
	require.NoError(t, err)
	flightsJSON, err := EncodeSchedule(schedule)
	require.NoError(t, err)

	decodedAccount, err := DecodeAccounts(accountsJSON)
	require.NoError(t, err)
	decodedSchedule, err := DecodeSchedule(flightsJSON)
	require.NoError(t, err)

	again, err := EncodeAccounts(decodedAccount)
	require.NoError(t, err)
	assert.Equal(t, string(accountsJSON), string(again))
	againFlights, err := EncodeSchedule(decodedSchedule)
	require.NoError(t, err)
	assert.Equal(t, string(flightsJSON), string(againFlights))

	var doc map[string][]map[string]any
	require.NoError(t, json.Unmarshal(accountsJSON, &doc))
	assert.Equal(t, "a@example.com", doc["accounts"][0]["email"])
	assert.Equal(t, "2024-07-01", doc["accounts"][0]["date of birth"])
}

func TestDecode_NestedFlightsAreIndependent(t *testing.T) {
	account, err := DecodeAccounts([]byte(accountsFixture))
	require.NoError(t, err)
	schedule, err := DecodeSchedule([]byte(`{"flights": [` + flightJSON("9d1e7c42-3b5a-4f6e-8a2d-1c0b9e8f7a65", "YVR", "YYZ") + `]}`))
	require.NoError(t, err)

	p, err := account.Passenger("christie")
	require.NoError(t, err)
	booked := p.BookedFlights()[0].Flight()
	scheduled := schedule.Flights()[0]

	assert.Equal(t, scheduled.ID(), booked.ID())
	assert.NotSame(t, scheduled, booked)
}

func TestDecodeAccounts_ParseErrors(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(string) string
		wantField string
		wantErr   error
	}{
		{
			name:      "missing email",
			mutate:    func(s string) string { return strings.Replace(s, `"email": "christie",`, "", 1) },
			wantField: "accounts[0].email",
			wantErr:   ErrMissingField,
		},
		{
			name:      "bad date of birth",
			mutate:    func(s string) string { return strings.Replace(s, "2002-05-16", "16/05/2002", 1) },
			wantField: "accounts[0].date of birth",
		},
		{
			name:      "bad passenger uuid",
			mutate:    func(s string) string { return strings.Replace(s, "0b6a2f3e-7c1d-4a8e-9f30-5d2b1c4e6a71", "not-a-uuid", 1) },
			wantField: "accounts[0].uuid",
		},
		{
			name:      "bad seat",
			mutate:    func(s string) string { return strings.Replace(s, `"seat": 3`, `"seat": 4`, 1) },
			wantField: "accounts[0].booked flights[0].seat",
			wantErr:   domain.ErrInvalidSeatClass,
		},
		{
			name:      "bad departure",
			mutate:    func(s string) string { return strings.Replace(s, "2023-03-04 09:30", "2023-03-04T09:30", 1) },
			wantField: "accounts[0].booked flights[0].flight.departure",
		},
		{
			name:      "missing nested flight field",
			mutate:    func(s string) string { return strings.Replace(s, `"max seats": 300,`, "", 1) },
			wantField: "accounts[0].booked flights[0].flight.max seats",
			wantErr:   ErrMissingField,
		},
		{
			name:      "missing accounts key",
			mutate:    func(string) string { return `{"passengers": []}` },
			wantField: "accounts",
			wantErr:   ErrMissingField,
		},
		{
			name:   "syntax error",
			mutate: func(s string) string { return s[:len(s)/2] },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			account, err := DecodeAccounts([]byte(tc.mutate(accountsFixture)))

			assert.Nil(t, account)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected ParseError, got %v", err)
			assert.Equal(t, AccountsDocument, parseErr.Document)
			assert.Equal(t, tc.wantField, parseErr.Field)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestDecodeAccounts_AllOrNothing(t *testing.T) {
	second := strings.Replace(accountsFixture, `"email": "christie",`, "", 1)
	second = strings.Replace(second, "0b6a2f3e-7c1d-4a8e-9f30-5d2b1c4e6a71", "0b6a2f3e-7c1d-4a8e-9f30-5d2b1c4e6a72", 1)
	var good, bad map[string][]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(accountsFixture), &good))
	require.NoError(t, json.Unmarshal([]byte(second), &bad))
	combined, err := json.Marshal(map[string][]json.RawMessage{
		"accounts": {good["accounts"][0], bad["accounts"][0]},
	})
	require.NoError(t, err)

	sink := &countingSink{}
	account, err := DecodeAccounts(combined, domain.WithAccountEvents(sink))

	assert.Nil(t, account)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "accounts[1].email", parseErr.Field)
	assert.Zero(t, sink.count, "no passenger may be loaded from a malformed document")
}

func TestDecodeAccounts_BookedFlightIDMismatch(t *testing.T) {
	doc := strings.Replace(accountsFixture, `"uuid": "9d1e7c42-3b5a-4f6e-8a2d-1c0b9e8f7a65",
                    "seat"`, `"uuid": "11111111-3b5a-4f6e-8a2d-1c0b9e8f7a65",
                    "seat"`, 1)

	_, err := DecodeAccounts([]byte(doc))

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "accounts[0].booked flights[0].uuid", parseErr.Field)
}

func TestDecodeSchedule_ParseErrors(t *testing.T) {
	testCases := []struct {
		name      string
		doc       string
		wantField string
	}{
		{
			name:      "missing flights key",
			doc:       `{}`,
			wantField: "flights",
		},
		{
			name:      "bad arrival",
			doc:       `{"flights": [` + strings.Replace(flightJSON("3f2b8c1a-6d4e-4b7a-9c5f-0e1d2a3b4c5d", "YVR", "YEG"), "2023-01-02 18:30", "18:30", 1) + `]}`,
			wantField: "flights[0].arrival",
		},
		{
			name:      "missing price",
			doc:       `{"flights": [` + strings.Replace(flightJSON("3f2b8c1a-6d4e-4b7a-9c5f-0e1d2a3b4c5d", "YVR", "YEG"), `"economy price": 0,`, "", 1) + `]}`,
			wantField: "flights[0].economy price",
		},
		{
			name:      "negative counter",
			doc:       `{"flights": [` + strings.Replace(flightJSON("3f2b8c1a-6d4e-4b7a-9c5f-0e1d2a3b4c5d", "YVR", "YEG"), `"remaining economy seats": 5`, `"remaining economy seats": -5`, 1) + `]}`,
			wantField: "flights[0]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			schedule, err := DecodeSchedule([]byte(tc.doc))

			assert.Nil(t, schedule)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, FlightsDocument, parseErr.Document)
			assert.Equal(t, tc.wantField, parseErr.Field)
		})
	}
}

type countingSink struct {
	count int
}

func (s *countingSink) Record(domain.Event) {
	s.count++
}
