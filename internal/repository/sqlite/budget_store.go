package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

// DefaultRetention is how many ledger snapshots are kept
const DefaultRetention = 30

// BudgetStore implements domain.BudgetStore on SQLite. Every save appends a
// snapshot row and the newest row is the current ledger.
type BudgetStore struct {
	db        *sql.DB
	retention int
}

// NewBudgetStore opens the database file, runs migrations and returns the store
func NewBudgetStore(dbPath string, retention int) (*BudgetStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if retention <= 0 {
		retention = DefaultRetention
	}
	return &BudgetStore{db: db, retention: retention}, nil
}

// Close closes the database
func (s *BudgetStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns the newest snapshot or domain.ErrStoreEmpty
func (s *BudgetStore) Load(ctx context.Context) (domain.Ledger, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM ledger_snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStoreEmpty
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var ledger domain.Ledger
	if err := json.Unmarshal([]byte(data), &ledger); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	if ledger == nil {
		ledger = domain.Ledger{}
	}
	return ledger, nil
}

// Save appends a snapshot and prunes rows beyond the retention window
func (s *BudgetStore) Save(ctx context.Context, ledger domain.Ledger) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_snapshots (data) VALUES (?)`, string(data),
	); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM ledger_snapshots
		 WHERE id NOT IN (SELECT id FROM ledger_snapshots ORDER BY id DESC LIMIT ?)`,
		s.retention,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if pruned, _ := res.RowsAffected(); pruned > 0 {
		log.Debug().Int64("pruned", pruned).Msg("Pruned old ledger snapshots")
	}
	return nil
}

// SnapshotCount returns how many snapshots are retained
func (s *BudgetStore) SnapshotCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}
