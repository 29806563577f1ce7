package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Domenick1991/applane/internal/persistence"
)

// FileSnapshotRepository keeps each snapshot document as a file in dir.
// Writes go to a temporary file in the same directory which is then renamed
// over the destination, so a reader never sees a partial document.
type FileSnapshotRepository struct {
	dir string
}

func NewFileSnapshotRepository(dir string) *FileSnapshotRepository {
	return &FileSnapshotRepository{dir: dir}
}

func (r *FileSnapshotRepository) Path(name string) string {
	return filepath.Join(r.dir, name)
}

func (r *FileSnapshotRepository) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", persistence.ErrSnapshotNotFound, r.Path(name))
		}
		return nil, err
	}
	return data, nil
}

func (r *FileSnapshotRepository) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := r.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var _ persistence.SnapshotStore = (*FileSnapshotRepository)(nil)
