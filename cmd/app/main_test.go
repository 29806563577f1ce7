package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/Domenick1991/applane/config"
	"github.com/Domenick1991/applane/internal/domain"
	"github.com/Domenick1991/applane/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, printLog bool) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "storage:\n  driver: file\n  dir: " + filepath.Join(dir, "data") + "\n"
	if printLog {
		body += "booking:\n  print_event_log: true\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func runCLI(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(append([]string{"--config", cfg}, args...), &out)
	return out.String(), err
}

var flightIDPattern = regexp.MustCompile(`Flight WS246 \(([0-9a-f-]{36})\)`)

func TestRun_BookingSession(t *testing.T) {
	cfg := writeConfig(t, false)

	_, err := runCLI(t, cfg, "signup", "--first", "Christie", "--last", "Leung", "--email", "christie",
		"--password", "play", "--dob", "2002-05-16", "--phone", "604-123-4567")
	require.NoError(t, err)

	out, err := runCLI(t, cfg, "add-flight", "--airline", "WS", "--number", "246", "--from", "YVR", "--to", "YYZ",
		"--departure", "2023-03-04 09:30", "--arrival", "2023-03-04 11:00", "--economy", "1", "--business", "1",
		"--economy-price", "199.99")
	require.NoError(t, err)
	m := flightIDPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	flightID := m[1]

	out, err = runCLI(t, cfg, "search", "--from", "yvr", "--to", "yyz")
	require.NoError(t, err)
	assert.Contains(t, out, "Remaining Seats: 2")

	out, err = runCLI(t, cfg, "book", "-e", "christie", "-p", "play", "--flight", flightID, "--seat", "economy")
	require.NoError(t, err)
	assert.Contains(t, out, "Booked Economy on WS246 for 199.99.")

	_, err = runCLI(t, cfg, "book", "-e", "christie", "-p", "play", "--flight", flightID, "--seat", "business")
	assert.ErrorIs(t, err, domain.ErrAlreadyBooked)

	out, err = runCLI(t, cfg, "search", "--from", "YVR", "--to", "YYZ", "-e", "christie", "-p", "play")
	require.NoError(t, err)
	assert.Contains(t, out, "No flights from YVR to YYZ.")

	out, err = runCLI(t, cfg, "bookings", "-e", "christie", "-p", "play")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Economy Seats: 0")
	assert.Contains(t, out, "Seat: Economy")

	_, err = runCLI(t, cfg, "change-email", "-e", "christie", "-p", "play", "--new-email", "christie@example.com")
	require.NoError(t, err)

	out, err = runCLI(t, cfg, "delete-account", "-e", "christie@example.com", "-p", "play")
	require.NoError(t, err)
	assert.Contains(t, out, "released 1 bookings")

	out, err = runCLI(t, cfg, "flights")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Economy Seats: 1")

	_, err = runCLI(t, cfg, "login", "-e", "christie@example.com", "-p", "play")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestRun_UpdateProfile(t *testing.T) {
	cfg := writeConfig(t, false)
	_, err := runCLI(t, cfg, "signup", "--first", "Christie", "--last", "Leung", "--email", "christie",
		"--password", "play", "--dob", "2002-05-16", "--phone", "604-123-4567")
	require.NoError(t, err)

	_, err = runCLI(t, cfg, "update-profile", "-e", "christie", "-p", "play", "--phone", "778-000-0000", "--new-password", "work")
	require.NoError(t, err)

	out, err := runCLI(t, cfg, "login", "-e", "christie", "-p", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "Phone Number: 778-000-0000")
	assert.Contains(t, out, "Name: Christie  Leung")

	_, err = runCLI(t, cfg, "login", "-e", "christie", "-p", "play")
	assert.ErrorIs(t, err, domain.ErrCredentialMismatch)
}

func TestRun_PrintsEventLog(t *testing.T) {
	cfg := writeConfig(t, true)

	out, err := runCLI(t, cfg, "signup", "--first", "Christie", "--last", "Leung", "--email", "christie",
		"--password", "play", "--dob", "2002-05-16", "--phone", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Event log:")
	assert.Contains(t, out, "Added passenger Christie Leung to accounts database.")
}

func TestRun_UsageErrors(t *testing.T) {
	cfg := writeConfig(t, false)

	_, err := runCLI(t, cfg, "fly-me-to-the-moon")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, cfg, "book", "-e", "christie", "--flight", "not-a-uuid")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, cfg, "search", "--from", "YVR")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, cfg, "signup", "--unknown-flag")
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_NoCommandPrintsUsage(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, run(nil, &out))

	assert.Contains(t, out.String(), "delete-account")
	assert.Contains(t, out.String(), "usage: applane")
}

func TestRun_MissingConfig(t *testing.T) {
	_, err := runCLI(t, filepath.Join(t.TempDir(), "missing.yaml"), "flights")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, errUsage)
}

func TestRun_KeepsDamagedSnapshot(t *testing.T) {
	cfg := writeConfig(t, false)
	dataDir := filepath.Join(filepath.Dir(cfg), "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	flightsPath := filepath.Join(dataDir, "flights.json")
	damaged := []byte(`{"flights": [`)
	require.NoError(t, os.WriteFile(flightsPath, damaged, 0o644))

	_, err := runCLI(t, cfg, "signup", "--first", "Christie", "--last", "Leung", "--email", "christie",
		"--password", "play", "--dob", "2002-05-16", "--phone", "1")
	assert.ErrorIs(t, err, booking.ErrDamagedSnapshot)

	got, err := os.ReadFile(flightsPath)
	require.NoError(t, err)
	assert.Equal(t, damaged, got)

	out, err := runCLI(t, cfg, "login", "-e", "christie", "-p", "play")
	require.NoError(t, err)
	assert.Contains(t, out, "Christie")
}

func TestRun_LogsEvents(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	body := "storage:\n  dir: " + filepath.Join(dir, "data") + "\nbooking:\n  log_events: true\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	_, err := runCLI(t, cfg, "signup", "--first", "Christie", "--last", "Leung", "--email", "christie",
		"--password", "play", "--dob", "2002-05-16", "--phone", "1")

	require.NoError(t, err)
	assert.Contains(t, logs.String(), "[passenger_added] Added passenger Christie Leung to accounts database.")
}

func TestOpenAuditSink_UnreachableBroker(t *testing.T) {
	cfg := &config.Config{
		Kafka:  config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}, AuditTopic: "applane.audit"},
		Worker: config.WorkerConfig{PublishTimeoutSeconds: 1},
	}

	assert.Nil(t, openAuditSink(context.Background(), cfg))
}

func TestSeatClassNames(t *testing.T) {
	assert.Equal(t, "1 (economy), 2 (business), 3 (first class)", seatClassNames())
}
