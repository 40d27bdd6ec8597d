package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/dafibh/arthaku/internal/websocket"
	"github.com/google/uuid"
)

// MockBudgetStore is a mock implementation of domain.BudgetStore. It keeps
// the last saved ledger as JSON so tests see exactly what was persisted.
type MockBudgetStore struct {
	mu        sync.Mutex
	data      []byte
	SaveCount int
	LoadCount int
	LoadFn    func(ctx context.Context) (domain.Ledger, error)
	SaveFn    func(ctx context.Context, ledger domain.Ledger) error
}

// NewMockBudgetStore creates a new MockBudgetStore with nothing saved
func NewMockBudgetStore() *MockBudgetStore {
	return &MockBudgetStore{}
}

// Load returns the last saved ledger or domain.ErrStoreEmpty
func (m *MockBudgetStore) Load(ctx context.Context) (domain.Ledger, error) {
	m.mu.Lock()
	m.LoadCount++
	m.mu.Unlock()

	if m.LoadFn != nil {
		return m.LoadFn(ctx)
	}
	return m.Saved()
}

// Save records the ledger
func (m *MockBudgetStore) Save(ctx context.Context, ledger domain.Ledger) error {
	m.mu.Lock()
	m.SaveCount++
	m.mu.Unlock()

	if m.SaveFn != nil {
		return m.SaveFn(ctx, ledger)
	}
	data, err := json.Marshal(ledger)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Saved decodes the last saved ledger
func (m *MockBudgetStore) Saved() (domain.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, domain.ErrStoreEmpty
	}
	var ledger domain.Ledger
	if err := json.Unmarshal(m.data, &ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// Seed stores a ledger as if it had been saved earlier
func (m *MockBudgetStore) Seed(ledger domain.Ledger) {
	data, _ := json.Marshal(ledger)
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
}

// Saves returns how many times Save was called
func (m *MockBudgetStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SaveCount
}

// MockBackupRepository is a mock implementation of domain.BackupRepository
type MockBackupRepository struct {
	mu      sync.Mutex
	Objects map[string][]byte
	PutFn   func(ctx context.Context, snapshot []byte) (string, error)
	GetFn   func(ctx context.Context, handle string) ([]byte, error)
}

// NewMockBackupRepository creates a new MockBackupRepository
func NewMockBackupRepository() *MockBackupRepository {
	return &MockBackupRepository{
		Objects: make(map[string][]byte),
	}
}

// Put stores a snapshot under a fresh handle
func (m *MockBackupRepository) Put(ctx context.Context, snapshot []byte) (string, error) {
	if m.PutFn != nil {
		return m.PutFn(ctx, snapshot)
	}
	handle := uuid.New().String()
	m.mu.Lock()
	m.Objects[handle] = append([]byte(nil), snapshot...)
	m.mu.Unlock()
	return handle, nil
}

// Get returns a stored snapshot
func (m *MockBackupRepository) Get(ctx context.Context, handle string) ([]byte, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, handle)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[handle]
	if !ok {
		return nil, fmt.Errorf("handle %s: %w", handle, domain.ErrBackupNotFound)
	}
	return data, nil
}

// MockAnalyzer is a mock implementation of domain.Analyzer
type MockAnalyzer struct {
	Text      string
	Err       error
	Calls     int
	LastInput *domain.MonthlyBudget
}

// Analyze returns the configured text or error
func (m *MockAnalyzer) Analyze(ctx context.Context, budget *domain.MonthlyBudget) (string, error) {
	m.Calls++
	m.LastInput = budget
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns a copy of the recorded events
func (m *MockEventPublisher) Events() []websocket.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]websocket.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Types returns the recorded event type names in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}
