package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/rs/zerolog/log"
)

// BackupAppTag identifies snapshots written by this service
const BackupAppTag = "Arthaku"

// BackupEnvelope is the remote snapshot format: the ledger JSON, base64
// encoded, with a creation time and the writing app
type BackupEnvelope struct {
	Payload   string    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
	App       string    `json:"app"`
}

// BackupReceipt is returned after a successful upload
type BackupReceipt struct {
	Handle    string    `json:"handle"`
	Timestamp time.Time `json:"timestamp"`
	Periods   int       `json:"periods"`
}

// BackupService moves whole-ledger snapshots to and from remote storage and
// local files
type BackupService struct {
	budget *BudgetService
	repo   domain.BackupRepository
	now    func() time.Time
}

// NewBackupService creates a new BackupService. repo may be nil when remote
// backups are not configured.
func NewBackupService(budget *BudgetService, repo domain.BackupRepository) *BackupService {
	return &BackupService{
		budget: budget,
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Backup uploads the current ledger and returns the handle to restore it
func (s *BackupService) Backup(ctx context.Context) (*BackupReceipt, error) {
	if s.repo == nil {
		return nil, domain.ErrBackupUnavailable
	}

	ledger := s.budget.Snapshot()
	raw, err := json.Marshal(ledger)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger: %w", err)
	}

	envelope := BackupEnvelope{
		Payload:   base64.StdEncoding.EncodeToString(raw),
		Timestamp: s.now(),
		App:       BackupAppTag,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	handle, err := s.repo.Put(ctx, data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upload backup")
		return nil, fmt.Errorf("%w: %v", domain.ErrBackupUnavailable, err)
	}

	log.Info().Str("handle", handle).Int("periods", len(ledger)).Msg("Backup uploaded")
	return &BackupReceipt{Handle: handle, Timestamp: envelope.Timestamp, Periods: len(ledger)}, nil
}

// Restore downloads a snapshot and replaces the local ledger with it
func (s *BackupService) Restore(ctx context.Context, handle string) (*MonthView, error) {
	if s.repo == nil {
		return nil, domain.ErrBackupUnavailable
	}

	data, err := s.repo.Get(ctx, handle)
	if err != nil {
		if errors.Is(err, domain.ErrBackupNotFound) {
			return nil, err
		}
		log.Error().Err(err).Str("handle", handle).Msg("Failed to download backup")
		return nil, fmt.Errorf("%w: %v", domain.ErrBackupUnavailable, err)
	}

	ledger, err := DecodeBackup(data)
	if err != nil {
		return nil, err
	}
	return s.budget.ReplaceLedger(ctx, ledger, "backup")
}

// Export returns the ledger as indented JSON for download
func (s *BackupService) Export() ([]byte, error) {
	data, err := json.MarshalIndent(s.budget.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger: %w", err)
	}
	return data, nil
}

// Import replaces the ledger with an exported file
func (s *BackupService) Import(ctx context.Context, data []byte) (*MonthView, error) {
	var ledger domain.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	return s.budget.ReplaceLedger(ctx, ledger, "import")
}

// Reload re-reads the persistent store, replacing the in-memory ledger
func (s *BackupService) Reload(ctx context.Context) (*MonthView, error) {
	return s.budget.Reload(ctx)
}

// DecodeBackup unwraps a backup envelope into a ledger
func DecodeBackup(data []byte) (domain.Ledger, error) {
	var envelope BackupEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	if envelope.Payload == "" {
		return nil, fmt.Errorf("%w: missing payload", domain.ErrInvalidSnapshot)
	}

	raw, err := base64.StdEncoding.DecodeString(envelope.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}

	var ledger domain.Ledger
	if err := json.Unmarshal(raw, &ledger); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	return ledger, nil
}
