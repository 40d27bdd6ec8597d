package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ledgerRowID is the key of the single ledger row
const ledgerRowID = 1

const createLedgerTable = `
CREATE TABLE IF NOT EXISTS budget_ledger (
    id SMALLINT PRIMARY KEY,
    data JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// BudgetStore implements domain.BudgetStore using PostgreSQL. The ledger is
// kept as one JSONB document.
type BudgetStore struct {
	pool *pgxpool.Pool
}

// NewBudgetStore creates a new BudgetStore
func NewBudgetStore(pool *pgxpool.Pool) *BudgetStore {
	return &BudgetStore{pool: pool}
}

// EnsureSchema creates the ledger table when missing
func (s *BudgetStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createLedgerTable); err != nil {
		return fmt.Errorf("failed to create ledger table: %w", err)
	}
	return nil
}

// Load retrieves the ledger or domain.ErrStoreEmpty when none was saved
func (s *BudgetStore) Load(ctx context.Context) (domain.Ledger, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM budget_ledger WHERE id = $1`, ledgerRowID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStoreEmpty
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var ledger domain.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	if ledger == nil {
		ledger = domain.Ledger{}
	}
	return ledger, nil
}

// Save upserts the ledger row
func (s *BudgetStore) Save(ctx context.Context, ledger domain.Ledger) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO budget_ledger (id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		ledgerRowID, data,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
