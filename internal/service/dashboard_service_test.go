package service

import (
	"errors"
	"testing"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollupYear_SingleMonthOfData(t *testing.T) {
	march := budgetWith(8000000, []string{domain.CategoryDebt},
		domain.BudgetItem{ID: "1", Name: "KPR", Category: domain.CategoryDebt, Budget: 3000000, Actual: 2500000})
	ledger := domain.Ledger{"2024-03": march}

	rollup, err := RollupYear(ledger, "2024")
	require.NoError(t, err)

	require.Len(t, rollup.Months, 12)
	for i, m := range rollup.Months {
		assert.Equal(t, i+1, m.MonthIndex)
		if m.MonthIndex == 3 {
			assert.True(t, m.HasData)
			assert.Equal(t, "2024-03", m.PeriodKey)
			assert.Equal(t, int64(8000000), m.Income)
			assert.Equal(t, int64(3000000), m.Budget)
			assert.Equal(t, int64(2500000), m.Actual)
			assert.Equal(t, int64(5500000), m.Surplus)
			continue
		}
		assert.False(t, m.HasData, "month %d", m.MonthIndex)
		assert.Zero(t, m.Income)
		assert.Zero(t, m.Budget)
		assert.Zero(t, m.Actual)
		assert.Zero(t, m.Surplus)
	}

	assert.Equal(t, int64(8000000), rollup.Totals.Income)
	assert.Equal(t, int64(3000000), rollup.Totals.Budget)
	assert.Equal(t, int64(2500000), rollup.Totals.Actual)
	assert.Equal(t, int64(5500000), rollup.Totals.Surplus)
}

func TestRollupYear_DoesNotProvision(t *testing.T) {
	ledger := domain.Ledger{"2023-12": budgetWith(1, nil)}

	rollup, err := RollupYear(ledger, "2024")
	require.NoError(t, err)

	assert.Len(t, ledger, 1)
	assert.Equal(t, domain.YearlyTotals{}, rollup.Totals)
}

func TestRollupYear_UsesUnallocatedRule(t *testing.T) {
	b := budgetWith(2000000, []string{domain.UnallocatedCategoryName},
		domain.BudgetItem{ID: "m", Name: domain.MasterAllocationItemName, Category: domain.UnallocatedCategoryName, Budget: 1000000, Actual: 999},
		domain.BudgetItem{ID: "s", Name: "Parkir", Category: domain.UnallocatedCategoryName, Actual: 10000},
	)
	ledger := domain.Ledger{"2024-07": b}

	rollup, err := RollupYear(ledger, "2024")
	require.NoError(t, err)

	july := rollup.Months[6]
	assert.Equal(t, int64(1000000), july.Budget)
	assert.Equal(t, int64(10000), july.Actual)
	assert.Equal(t, int64(1990000), july.Surplus)
}

func TestRollupYear_InvalidYear(t *testing.T) {
	_, err := RollupYear(domain.Ledger{}, "24")
	assert.True(t, errors.Is(err, domain.ErrInvalidFormat))
}
