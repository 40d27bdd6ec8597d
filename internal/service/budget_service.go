package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/dafibh/arthaku/internal/util"
	"github.com/dafibh/arthaku/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SyncStatus is the outcome of the last save to the persistent store
type SyncStatus struct {
	Saved  bool      `json:"saved"`
	Paused bool      `json:"paused,omitempty"`
	Error  string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}

// UnallocatedEnvelope summarises the unallocated category of a month
type UnallocatedEnvelope struct {
	Category  string `json:"category"`
	Budget    int64  `json:"budget"`
	Actual    int64  `json:"actual"`
	Remaining int64  `json:"remaining"`
}

// MonthView is everything derived from one period for display
type MonthView struct {
	Period      string                `json:"period"`
	Budget      *domain.MonthlyBudget `json:"budget"`
	Aggregation domain.Aggregation    `json:"aggregation"`
	Alerts      []domain.Alert        `json:"alerts"`
	ItemUsage   map[string]float64    `json:"itemUsage"`
	Unallocated *UnallocatedEnvelope  `json:"unallocated,omitempty"`
	Created     bool                  `json:"created"`
	Sync        SyncStatus            `json:"sync"`
}

// NewItemInput holds the fields of an item added by the user
type NewItemInput struct {
	Name     string
	Category string
	Budget   int64
	Actual   int64
}

// ItemPatch holds optional item edits; nil fields are left alone
type ItemPatch struct {
	Name   *string
	Budget *int64
	Actual *int64
}

// SalaryOutcome is the computed pay slip and the period its take-home pay
// was queued for
type SalaryOutcome struct {
	Result domain.SalaryResult `json:"result"`
	Period string              `json:"period"`
}

// BudgetServiceConfig holds tuning for the engine
type BudgetServiceConfig struct {
	IncomeDebounce time.Duration
}

// BudgetService is the monthly budget state engine. It owns the in-memory
// ledger and the session, and is the single writer to both.
type BudgetService struct {
	store    domain.BudgetStore
	months   *MonthService
	feed     *IncomeFeed
	logger   zerolog.Logger
	newID    func() string
	saveWait time.Duration

	mu             sync.Mutex
	ledger         domain.Ledger
	session        *domain.Session
	lastSync       SyncStatus
	storeErr       error
	eventPublisher websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService. Call Start before use.
func NewBudgetService(store domain.BudgetStore, months *MonthService, config BudgetServiceConfig, logger zerolog.Logger) *BudgetService {
	s := &BudgetService{
		store:    store,
		months:   months,
		logger:   logger.With().Str("component", "budget_engine").Logger(),
		newID:    func() string { return "item-" + uuid.New().String() },
		saveWait: 10 * time.Second,
		ledger:   make(domain.Ledger),
		session:  domain.NewSession(util.CurrentPeriodKey()),
	}
	s.feed = NewIncomeFeed(config.IncomeDebounce, s.applyFeedIncome, logger)
	return s
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventPublisher = publisher
}

// publishEvent publishes an event if a publisher is configured
func (s *BudgetService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// Start loads the ledger once and provisions the current period. A store
// failure is not fatal: the engine starts empty, reports the error in its
// sync status and stops saving so the unreadable data is left untouched.
func (s *BudgetService) Start(ctx context.Context) error {
	ledger, err := s.store.Load(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.installLocked(ledger, err); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load ledger, starting empty with saving paused")
	}

	_, err = s.selectLocked(ctx, util.CurrentPeriodKey())
	return err
}

// Reload reads the store again and replaces the in-memory ledger with it.
// It resumes saving after a failed load.
func (s *BudgetService) Reload(ctx context.Context) (*MonthView, error) {
	ledger, err := s.store.Load(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.installLocked(ledger, err); err != nil {
		s.logger.Warn().Err(err).Msg("Ledger reload failed, saving stays paused")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s.feed.Cancel(s.session.ViewedPeriod)
	view, err := s.selectLocked(ctx, s.session.ViewedPeriod)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.LedgerReplaced(map[string]interface{}{
		"source":  "reload",
		"periods": s.ledger.Keys(),
	}))
	return view, nil
}

// installLocked adopts the result of a store load. An empty store counts as
// a successful load. Any other error marks the store untrusted and keeps the
// current ledger.
func (s *BudgetService) installLocked(ledger domain.Ledger, err error) error {
	switch {
	case err == nil:
		if ledger == nil {
			ledger = make(domain.Ledger)
		}
		for key := range ledger {
			if _, _, perr := util.ParsePeriodKey(key); perr != nil {
				s.logger.Warn().Str("period", key).Msg("Dropping unreadable period from loaded ledger")
				delete(ledger, key)
			}
		}
		ledger.Normalize()
		s.ledger = ledger
		s.storeErr = nil
		s.lastSync = SyncStatus{Saved: true, At: time.Now().UTC()}
		s.logger.Info().Int("periods", len(ledger)).Msg("Ledger loaded")
		return nil
	case errors.Is(err, domain.ErrStoreEmpty):
		s.ledger = make(domain.Ledger)
		s.storeErr = nil
		s.lastSync = SyncStatus{}
		s.logger.Info().Msg("No saved ledger, starting fresh")
		return nil
	default:
		s.storeErr = err
		s.lastSync = SyncStatus{Saved: false, Paused: true, Error: err.Error(), At: time.Now().UTC()}
		return err
	}
}

// Close cancels any pending income write
func (s *BudgetService) Close() {
	s.feed.Stop()
}

// ViewedPeriod returns the period the session is looking at
func (s *BudgetService) ViewedPeriod() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.ViewedPeriod
}

// SyncStatus returns the outcome of the last save
func (s *BudgetService) SyncStatus() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}

// CurrentMonth views the current calendar month
func (s *BudgetService) CurrentMonth(ctx context.Context) (*MonthView, error) {
	return s.SelectPeriod(ctx, util.CurrentPeriodKey())
}

// SelectPeriod makes key the viewed period, provisioning it if absent
func (s *BudgetService) SelectPeriod(ctx context.Context, key string) (*MonthView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(ctx, key)
}

func (s *BudgetService) selectLocked(ctx context.Context, key string) (*MonthView, error) {
	if _, _, err := util.ParsePeriodKey(key); err != nil {
		return nil, err
	}

	if prev := s.session.ViewedPeriod; prev != key {
		s.feed.Cancel(prev)
		s.session.ViewedPeriod = key
	}

	b, created, err := s.months.GetOrCreateMonth(s.ledger, key)
	if err != nil {
		return nil, err
	}
	if created {
		s.session.Dismissed.Reset()
		s.logger.Info().Str("period", key).Msg("Provisioned month")
		s.saveLocked(ctx)
		s.publishEvent(websocket.BudgetUpdated(s.viewLocked(key, b, true)).ForPeriod(key))
	}
	return s.viewLocked(key, b, created), nil
}

// SetIncome sets the income of a period
func (s *BudgetService) SetIncome(ctx context.Context, key string, income int64) (*MonthView, error) {
	return s.mutate(ctx, key, func(b *domain.MonthlyBudget) bool {
		before := b.Income
		b.SetIncome(income)
		return b.Income != before
	})
}

// AddCategory appends a category; empty or duplicate names are ignored
func (s *BudgetService) AddCategory(ctx context.Context, key, name string) (*MonthView, error) {
	return s.mutate(ctx, key, func(b *domain.MonthlyBudget) bool {
		return b.AddCategory(name)
	})
}

// RemoveCategory deletes a category and its items
func (s *BudgetService) RemoveCategory(ctx context.Context, key, name string) (*MonthView, error) {
	return s.mutate(ctx, key, func(b *domain.MonthlyBudget) bool {
		return b.RemoveCategory(name)
	})
}

// AddItem creates an item with a fresh id inside an existing category.
// An empty name or unknown category is ignored.
func (s *BudgetService) AddItem(ctx context.Context, key string, in NewItemInput) (*MonthView, error) {
	return s.mutate(ctx, key, func(b *domain.MonthlyBudget) bool {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return false
		}
		return b.AddItem(domain.BudgetItem{
			ID:       s.newID(),
			Name:     name,
			Category: in.Category,
			Budget:   in.Budget,
			Actual:   in.Actual,
		})
	})
}

// UpdateItem applies a rename and/or amount edits to one item
func (s *BudgetService) UpdateItem(ctx context.Context, key, id string, patch ItemPatch) (*MonthView, error) {
	return s.mutate(ctx, key, func(b *domain.MonthlyBudget) bool {
		before, ok := b.Item(id)
		if !ok {
			return false
		}
		if patch.Name != nil {
			if name := strings.TrimSpace(*patch.Name); name != "" {
				b.RenameItem(id, name)
			}
		}
		if patch.Budget != nil {
			b.SetItemAmount(id, domain.ItemFieldBudget, *patch.Budget)
		}
		if patch.Actual != nil {
			b.SetItemAmount(id, domain.ItemFieldActual, *patch.Actual)
		}
		after, _ := b.Item(id)
		return after != before
	})
}

// RemoveItem deletes an item; a missing id is ignored
func (s *BudgetService) RemoveItem(ctx context.Context, key, id string) (*MonthView, error) {
	return s.mutate(ctx, key, func(b *domain.MonthlyBudget) bool {
		return b.RemoveItem(id)
	})
}

// DismissAlert silences a category's alert for one period for the rest of
// the session
func (s *BudgetService) DismissAlert(ctx context.Context, key, category string) (*MonthView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, err := s.selectLocked(ctx, key)
	if err != nil {
		return nil, err
	}
	if s.session.Dismissed.IsDismissed(key, category) {
		return view, nil
	}

	s.session.Dismissed.Dismiss(key, category)
	view = s.viewLocked(key, s.ledger[key], view.Created)
	s.publishEvent(websocket.AlertDismissed(map[string]string{"period": key, "category": category}).ForPeriod(key))
	return view, nil
}

// SubmitSalary computes the pay slip and queues its take-home pay for the
// viewed period's income
func (s *BudgetService) SubmitSalary(in domain.SalaryInputs) SalaryOutcome {
	result := ComputeSalary(in)

	s.mu.Lock()
	period := s.session.ViewedPeriod
	s.mu.Unlock()

	s.feed.Schedule(period, result.TakeHomePay)
	return SalaryOutcome{Result: result, Period: period}
}

// applyFeedIncome is called by the income feed after the quiet window
func (s *BudgetService) applyFeedIncome(period string, income int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if period != s.session.ViewedPeriod {
		s.logger.Debug().
			Str("period", period).
			Str("viewed_period", s.session.ViewedPeriod).
			Msg("Discarding income update for a period no longer viewed")
		return
	}
	b, ok := s.ledger[period]
	if !ok {
		return
	}

	b.SetIncome(income)
	ctx, cancel := context.WithTimeout(context.Background(), s.saveWait)
	defer cancel()
	s.saveLocked(ctx)

	s.logger.Info().Str("period", period).Int64("income", b.Income).Msg("Income synced from payroll")
	s.publishEvent(websocket.IncomeSynced(map[string]interface{}{"period": period, "income": b.Income}).ForPeriod(period))
}

// YearlyRollup summarises a year without provisioning missing months
func (s *BudgetService) YearlyRollup(year string) (domain.YearlyRollup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RollupYear(s.ledger, year)
}

// Snapshot returns a deep copy of the whole ledger
func (s *BudgetService) Snapshot() domain.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone()
}

// MonthSnapshot returns a copy of one period without provisioning or
// changing the viewed period
func (s *BudgetService) MonthSnapshot(key string) (*domain.MonthlyBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.months.GetMonth(s.ledger, key)
	if err != nil {
		return nil, err
	}
	return b.Clone(), nil
}

// ReplaceLedger swaps in a complete ledger, re-provisions the viewed
// period and saves. Nothing from the old ledger is merged. The replacement
// is normalized first and re-enables saving after a failed load.
func (s *BudgetService) ReplaceLedger(ctx context.Context, ledger domain.Ledger, source string) (*MonthView, error) {
	if err := ValidateLedger(ledger); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.feed.Cancel(s.session.ViewedPeriod)
	s.ledger = ledger.Clone()
	s.ledger.Normalize()
	s.storeErr = nil

	key := s.session.ViewedPeriod
	b, created, err := s.months.GetOrCreateMonth(s.ledger, key)
	if err != nil {
		return nil, err
	}
	if created {
		s.session.Dismissed.Reset()
	}
	s.saveLocked(ctx)

	s.logger.Info().
		Str("source", source).
		Int("periods", len(s.ledger)).
		Msg("Ledger replaced")
	s.publishEvent(websocket.LedgerReplaced(map[string]interface{}{
		"source":  source,
		"periods": s.ledger.Keys(),
	}))
	return s.viewLocked(key, b, created), nil
}

// ValidateLedger checks that every key is a period key and every budget is
// present
func ValidateLedger(ledger domain.Ledger) error {
	if ledger == nil {
		return fmt.Errorf("empty ledger: %w", domain.ErrInvalidSnapshot)
	}
	for key, b := range ledger {
		if _, _, err := util.ParsePeriodKey(key); err != nil {
			return fmt.Errorf("%v: %w", err, domain.ErrInvalidSnapshot)
		}
		if b == nil {
			return fmt.Errorf("period %s has no budget: %w", key, domain.ErrInvalidSnapshot)
		}
	}
	return nil
}

// mutate selects key, applies fn and saves when fn reports a change
func (s *BudgetService) mutate(ctx context.Context, key string, fn func(b *domain.MonthlyBudget) bool) (*MonthView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, err := s.selectLocked(ctx, key)
	if err != nil {
		return nil, err
	}

	b := s.ledger[key]
	if !fn(b) {
		return view, nil
	}

	s.saveLocked(ctx)
	view = s.viewLocked(key, b, view.Created)
	s.publishEvent(websocket.BudgetUpdated(view).ForPeriod(key))
	return view, nil
}

// saveLocked writes the latest snapshot. Failure is recorded, not returned.
// Nothing is written while the store is untrusted.
func (s *BudgetService) saveLocked(ctx context.Context) {
	now := time.Now().UTC()
	if s.storeErr != nil {
		s.lastSync = SyncStatus{
			Saved:  false,
			Paused: true,
			Error:  fmt.Sprintf("saving paused until the ledger store loads: %v", s.storeErr),
			At:     now,
		}
		return
	}

	err := s.store.Save(ctx, s.ledger.Clone())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to save ledger")
		s.lastSync = SyncStatus{Saved: false, Error: err.Error(), At: now}
		return
	}
	s.lastSync = SyncStatus{Saved: true, At: now}
}

func (s *BudgetService) viewLocked(key string, b *domain.MonthlyBudget, created bool) *MonthView {
	agg := Aggregate(b)
	view := &MonthView{
		Period:      key,
		Budget:      b.Clone(),
		Aggregation: agg,
		Alerts:      DeriveAlerts(key, b, agg, s.session.Dismissed),
		ItemUsage:   make(map[string]float64, len(b.Items)),
		Created:     created,
		Sync:        s.lastSync,
	}
	for _, item := range b.Items {
		view.ItemUsage[item.ID] = ItemUsage(item)
	}
	for _, c := range b.Categories {
		if c.IsUnallocated() {
			totals := agg.PerCategory[c.Name]
			view.Unallocated = &UnallocatedEnvelope{
				Category:  c.Name,
				Budget:    totals.Budget,
				Actual:    totals.Actual,
				Remaining: totals.Remaining,
			}
			break
		}
	}
	return view
}
