package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/harborstreet/tally/internal/common"
	"github.com/harborstreet/tally/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Migrate brings the schema up to the expected version.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return runMigrations(ctx, s.db)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const txnColumns = `id, date, description, account, amount, balance,
	type, category, subcategory, property, entity, confidence, method, reasoning`

// LoadAllTransactions returns every committed transaction, oldest first.
func (s *SQLiteStore) LoadAllTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+txnColumns+` FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close rows", "error", closeErr)
		}
	}()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

// AddTransactionBatch commits transactions one row at a time. A row that
// fails validation or insertion is counted and skipped; the rest of the
// batch still lands.
func (s *SQLiteStore) AddTransactionBatch(ctx context.Context, txns []model.Transaction) (BatchResult, error) {
	if err := validateContext(ctx); err != nil {
		return BatchResult{}, err
	}
	if err := s.db.PingContext(ctx); err != nil {
		return BatchResult{}, fmt.Errorf("database unavailable: %w", err)
	}

	stmt, err := s.db.PrepareContext(ctx, `INSERT OR REPLACE INTO transactions
		(`+txnColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			slog.Warn("failed to close statement", "error", closeErr)
		}
	}()

	var result BatchResult
	for i := range txns {
		txn := txns[i]
		if err := txn.Validate(); err != nil {
			slog.Warn("skipping invalid transaction", "description", txn.Description, "error", err)
			result.Failed++
			continue
		}
		if txn.ID == "" {
			txn.ID = txn.GenerateHash()
		}
		if _, err := stmt.ExecContext(ctx,
			txn.ID, txn.Date.UTC(), txn.Description, txn.Account, txn.Amount, txn.Balance,
			txn.Type, txn.Category, txn.SubCategory, txn.Property, txn.Entity,
			txn.Confidence, string(txn.Method), txn.Reasoning,
		); err != nil {
			slog.Warn("failed to insert transaction", "id", txn.ID, "error", err)
			result.Failed++
			continue
		}
		result.Success++
	}
	return result, nil
}

// GetTransactionByID returns the committed transaction with the given id.
func (s *SQLiteStore) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetCustomPatterns returns the persisted patterns in insertion order.
func (s *SQLiteStore) GetCustomPatterns(ctx context.Context) ([]model.CustomPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, category, account, property,
		entity, keywords, amount_min, amount_max, created_at
		FROM custom_patterns ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom patterns: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close rows", "error", closeErr)
		}
	}()

	patterns := []model.CustomPattern{}
	for rows.Next() {
		var p model.CustomPattern
		var keywords string
		var amountMin, amountMax sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Account, &p.Property,
			&p.Entity, &keywords, &amountMin, &amountMax, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan custom pattern: %w", err)
		}
		if err := json.Unmarshal([]byte(keywords), &p.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords for pattern %s: %w", p.ID, err)
		}
		if amountMin.Valid {
			v := amountMin.Float64
			p.AmountMin = &v
		}
		if amountMax.Valid {
			v := amountMax.Float64
			p.AmountMax = &v
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate custom patterns: %w", err)
	}
	return patterns, nil
}

// ReplaceCustomPatterns overwrites the stored pattern list atomically.
func (s *SQLiteStore) ReplaceCustomPatterns(ctx context.Context, patterns []model.CustomPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePatterns(patterns); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM custom_patterns`); err != nil {
		return fmt.Errorf("failed to clear custom patterns: %w", err)
	}
	for i, p := range patterns {
		keywords, err := json.Marshal(p.Keywords)
		if err != nil {
			return fmt.Errorf("failed to encode keywords for pattern %s: %w", p.ID, err)
		}
		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO custom_patterns
			(id, position, name, category, account, property, entity, keywords, amount_min, amount_max, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, i, p.Name, p.Category, p.Account, p.Property, p.Entity,
			string(keywords), p.AmountMin, p.AmountMax, createdAt,
		); err != nil {
			return fmt.Errorf("failed to insert pattern %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var txn model.Transaction
	var balance sql.NullFloat64
	var method string
	if err := row.Scan(&txn.ID, &txn.Date, &txn.Description, &txn.Account, &txn.Amount,
		&balance, &txn.Type, &txn.Category, &txn.SubCategory, &txn.Property,
		&txn.Entity, &txn.Confidence, &method, &txn.Reasoning); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, err
		}
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}
	if balance.Valid {
		v := balance.Float64
		txn.Balance = &v
	}
	txn.Method = model.Method(method)
	return txn, nil
}
