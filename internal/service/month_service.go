package service

import (
	"fmt"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/dafibh/arthaku/internal/util"
)

// MonthService provisions monthly budgets on first access
type MonthService struct {
	template domain.BudgetTemplate
}

// NewMonthService creates a new MonthService seeded with the default template
func NewMonthService(template domain.BudgetTemplate) *MonthService {
	return &MonthService{template: template}
}

// GetOrCreateMonth returns the budget for key, provisioning it into the ledger
// when absent. created reports whether a new budget was inserted.
func (s *MonthService) GetOrCreateMonth(ledger domain.Ledger, key string) (*domain.MonthlyBudget, bool, error) {
	return ResolveOrCreate(ledger, key, s.template)
}

// GetMonth retrieves a month without creating it
func (s *MonthService) GetMonth(ledger domain.Ledger, key string) (*domain.MonthlyBudget, error) {
	if _, _, err := util.ParsePeriodKey(key); err != nil {
		return nil, err
	}
	b, ok := ledger[key]
	if !ok {
		return nil, fmt.Errorf("period %s: %w", key, domain.ErrNotFound)
	}
	return b, nil
}

// ResolveOrCreate returns ledger[key] unchanged if present. Otherwise it builds
// a budget from the donor period (see FindDonorPeriod), or from the template
// when the ledger is empty, and inserts it under key.
func ResolveOrCreate(ledger domain.Ledger, key string, template domain.BudgetTemplate) (*domain.MonthlyBudget, bool, error) {
	year, err := util.PeriodYear(key)
	if err != nil {
		return nil, false, err
	}
	if ledger == nil {
		return nil, false, fmt.Errorf("nil ledger: %w", domain.ErrInvalidInput)
	}

	if b, ok := ledger[key]; ok {
		return b, false, nil
	}

	var b *domain.MonthlyBudget
	if donorKey, ok := FindDonorPeriod(ledger, key); ok {
		b = inheritFrom(ledger[donorKey], year)
	} else {
		b = template.Instantiate(year)
	}

	ledger[key] = b
	return b, true, nil
}

// FindDonorPeriod picks the period a new month inherits from: the greatest
// existing key below key, or failing that the greatest key overall. The
// fallback can choose a later period than key.
func FindDonorPeriod(ledger domain.Ledger, key string) (string, bool) {
	keys := ledger.Keys()
	if len(keys) == 0 {
		return "", false
	}
	for i := len(keys) - 1; i >= 0; i-- {
		if keys[i] < key && ledger[keys[i]] != nil {
			return keys[i], true
		}
	}
	for i := len(keys) - 1; i >= 0; i-- {
		if ledger[keys[i]] != nil {
			return keys[i], true
		}
	}
	return "", false
}

// inheritFrom copies income, categories and items, resetting every actual
func inheritFrom(donor *domain.MonthlyBudget, year string) *domain.MonthlyBudget {
	b := donor.Clone()
	b.Year = year
	for i := range b.Items {
		b.Items[i].Actual = 0
	}
	return b
}
