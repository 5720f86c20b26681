// Package storage provides the data persistence layer for tally.
package storage

import (
	"context"
	"fmt"

	"github.com/harborstreet/tally/internal/model"
)

// BatchResult reports the outcome of a batch commit. Rows are written
// individually, so a batch can partially succeed; callers surface the
// tally to the user instead of treating it as an error.
type BatchResult struct {
	Success int
	Failed  int
}

// Store is the persistence interface shared by both backends. All reads
// and writes go through it so the import pipeline and the CLI never see
// which backend is in play.
type Store interface {
	// LoadAllTransactions returns every committed transaction, used to
	// seed duplicate detection before an import.
	LoadAllTransactions(ctx context.Context) ([]model.Transaction, error)

	// AddTransactionBatch commits transactions one at a time and reports
	// how many landed. It returns an error only when the store itself is
	// unavailable; per-row failures are data, expressed in BatchResult.
	AddTransactionBatch(ctx context.Context, txns []model.Transaction) (BatchResult, error)

	// GetTransactionByID returns a single committed transaction, or
	// common.ErrNotFound when no such record exists.
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)

	// GetCustomPatterns returns the persisted user-authored patterns in
	// insertion order.
	GetCustomPatterns(ctx context.Context) ([]model.CustomPattern, error)

	// ReplaceCustomPatterns overwrites the full pattern list. Callers do
	// read-modify-write; there is no per-pattern mutation.
	ReplaceCustomPatterns(ctx context.Context, patterns []model.CustomPattern) error

	// Migrate brings the backing schema up to date. Idempotent.
	Migrate(ctx context.Context) error

	Close() error
}

// Backend names for Config.Backend.
const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Config selects and configures a storage backend.
type Config struct {
	Backend string

	// SQLite
	DBPath string

	// Firestore
	ProjectID       string
	CredentialsFile string
	CollectionBase  string
}

// New constructs the configured backend. An empty Backend means SQLite.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendSQLite:
		return NewSQLiteStore(cfg.DBPath)
	case BackendFirestore:
		return NewFirestoreStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
