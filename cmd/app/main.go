package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/applane/config"
	"github.com/Domenick1991/applane/internal/audit"
	"github.com/Domenick1991/applane/internal/cache"
	"github.com/Domenick1991/applane/internal/domain"
	"github.com/Domenick1991/applane/internal/kafka"
	"github.com/Domenick1991/applane/internal/persistence"
	"github.com/Domenick1991/applane/internal/repository"
	"github.com/Domenick1991/applane/internal/service/booking"
	"github.com/Domenick1991/applane/internal/service/flights"
	"github.com/Domenick1991/applane/internal/state"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "%v\n\n", err)
			printUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatalf("error: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}

	global := pflag.NewFlagSet("applane", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	cfgPath := global.String("config", defaultConfig, "path to the YAML config")
	help := global.BoolP("help", "h", false, "show help")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	rest := global.Args()
	if *help || len(rest) == 0 {
		printUsage(out)
		return nil
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
	}

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := setup(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer env.close()

	return env.execute(ctx, cmd, rest[1:])
}

type environment struct {
	app      *app
	bookings *booking.BookingService
	eventLog *audit.EventLog
	printLog bool
	out      io.Writer
	closers  []func()
}

// setup wires storage, cache, audit sinks and services from cfg, then loads
// the snapshots. A failed load is logged and the session starts from empty
// registries.
func setup(ctx context.Context, cfg *config.Config, out io.Writer) (*environment, error) {
	env := &environment{
		eventLog: audit.NewEventLog(),
		printLog: cfg.Booking.PrintEventLog,
		out:      out,
	}

	store, err := openStore(ctx, cfg, env)
	if err != nil {
		env.close()
		return nil, err
	}

	repoOpts := []persistence.RepositoryOption{
		persistence.WithDocumentNames(cfg.Storage.AccountsDocument, cfg.Storage.FlightsDocument),
	}
	var serviceOpts []booking.BookingServiceOption
	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SnapshotCacheTTL)*time.Second)
		env.closers = append(env.closers, func() { _ = redisCache.Close() })
		repoOpts = append(repoOpts, persistence.WithSnapshotCache(redisCache))
		serviceOpts = append(serviceOpts, booking.WithWriteLock(redisCache, time.Duration(cfg.Booking.WriteLockTTL)*time.Second))
	}

	sinks := []domain.EventSink{env.eventLog}
	if cfg.Booking.LogEvents {
		sinks = append(sinks, audit.LogSink{})
	}
	if cfg.Kafka.Enabled() {
		if sink := openAuditSink(ctx, cfg); sink != nil {
			env.closers = append(env.closers, func() { _ = sink.Close() })
			sinks = append(sinks, sink)
		}
	}

	registry := state.NewRegistry(audit.Multi(sinks...))
	repo := persistence.NewRepository(store, repoOpts...)
	env.bookings = booking.NewBookingService(registry, repo, serviceOpts...)
	env.app = &app{
		flights:  flights.NewFlightService(registry),
		bookings: env.bookings,
		out:      out,
	}

	report, err := env.bookings.Load(ctx)
	if err != nil {
		log.Printf("WARNING: load snapshots: %v", err)
	}
	if report.Relinked > 0 {
		log.Printf("Relinked %d booked flights to the schedule", report.Relinked)
	}
	return env, nil
}

// openAuditSink returns nil when no broker answers, so the session runs
// without publishing.
func openAuditSink(ctx context.Context, cfg *config.Config) *auditSink {
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	timeout := time.Duration(cfg.Worker.PublishTimeoutSeconds) * time.Second

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := producer.CheckConnection(checkCtx); err != nil {
		log.Printf("WARNING: audit events will not be published: %v", err)
		_ = producer.Close()
		return nil
	}
	return &auditSink{
		AuditSink: kafka.NewAuditSink(producer, cfg.Kafka.AuditTopic, kafka.WithPublishTimeout(timeout)),
		producer:  producer,
	}
}

// auditSink closes the producer once the queued events are published.
type auditSink struct {
	*kafka.AuditSink
	producer *kafka.Producer
}

func (s *auditSink) Close() error {
	_ = s.AuditSink.Close()
	return s.producer.Close()
}

func openStore(ctx context.Context, cfg *config.Config, env *environment) (persistence.SnapshotStore, error) {
	switch cfg.Storage.Driver {
	case "file":
		return repository.NewFileSnapshotRepository(cfg.Storage.Dir), nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		env.closers = append(env.closers, pool.Close)
		repo := repository.NewPGSnapshotRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// execute runs cmd and saves when it changed state. The event log is printed
// on the way out, whatever the outcome.
func (e *environment) execute(ctx context.Context, cmd command, args []string) error {
	defer e.printEvents()

	if err := cmd.run(e.app, ctx, args); err != nil {
		return err
	}
	if !cmd.mutates {
		return nil
	}
	if err := e.bookings.Save(ctx); err != nil {
		return fmt.Errorf("save snapshots: %w", err)
	}
	return nil
}

func (e *environment) printEvents() {
	if !e.printLog || e.eventLog.Len() == 0 {
		return
	}
	fmt.Fprintln(e.out)
	fmt.Fprintln(e.out, "Event log:")
	_, _ = e.eventLog.WriteTo(e.out)
}

func (e *environment) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}
