package index

import (
	"context"

	"github.com/starford/gistnote/internal/models"
)

// Ledger defines the ledger operations used by the rest of gistnote.
// Consumers should depend on this interface rather than the concrete *DB type.
type Ledger interface {
	RecordPublication(ctx context.Context, p models.Publication) error
	UpsertTracked(ctx context.Context, n models.TrackedNote) error
	DeleteTracked(ctx context.Context, path string) error
	GetTracked(ctx context.Context, path string) (*models.TrackedNote, error)
	ListTracked(ctx context.Context) ([]models.TrackedNote, error)
	ListPublications(ctx context.Context, path string, limit int) ([]models.Publication, error)
	AllChecksums(ctx context.Context) (map[string]string, error)
	Close() error
}

// Verify *DB satisfies Ledger at compile time.
var _ Ledger = (*DB)(nil)
