package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/applane/internal/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by PGSnapshotRepository.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGSnapshotRepository stores snapshot documents as rows of the snapshots
// table. The body is kept as raw bytes so documents round-trip unchanged.
type PGSnapshotRepository struct {
	db DB
}

func NewPGSnapshotRepository(db DB) *PGSnapshotRepository {
	return &PGSnapshotRepository{db: db}
}

func (r *PGSnapshotRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		body BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

func (r *PGSnapshotRepository) Read(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	if err := r.db.QueryRow(ctx, `SELECT body FROM snapshots WHERE name=$1`, name).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", persistence.ErrSnapshotNotFound, name)
		}
		return nil, err
	}
	return body, nil
}

// Write replaces the whole document in a single statement.
func (r *PGSnapshotRepository) Write(ctx context.Context, name string, data []byte) error {
	cmd, err := r.db.Exec(ctx, `INSERT INTO snapshots (name, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`, name, data)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("snapshot not written")
	}
	return nil
}

var _ persistence.SnapshotStore = (*PGSnapshotRepository)(nil)
