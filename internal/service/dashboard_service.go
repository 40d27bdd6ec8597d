package service

import (
	"github.com/dafibh/arthaku/internal/domain"
	"github.com/dafibh/arthaku/internal/util"
)

// RollupYear builds the 12-month series of a year without provisioning.
// Absent months report HasData=false and zero figures, and still count
// towards the totals.
func RollupYear(ledger domain.Ledger, year string) (domain.YearlyRollup, error) {
	y, err := util.ParseYear(year)
	if err != nil {
		return domain.YearlyRollup{}, err
	}

	rollup := domain.YearlyRollup{
		Year:   year,
		Months: make([]domain.MonthSummary, 0, 12),
	}

	for m := 1; m <= 12; m++ {
		key := util.PeriodKey(y, m)
		summary := domain.MonthSummary{MonthIndex: m, PeriodKey: key}

		if b, ok := ledger[key]; ok && b != nil {
			agg := Aggregate(b)
			summary.HasData = true
			summary.Income = b.Income
			summary.Budget = agg.TotalBudget
			summary.Actual = agg.TotalActual
			summary.Surplus = b.Income - agg.TotalActual
		}

		rollup.Months = append(rollup.Months, summary)
		rollup.Totals.Income += summary.Income
		rollup.Totals.Budget += summary.Budget
		rollup.Totals.Actual += summary.Actual
		rollup.Totals.Surplus += summary.Surplus
	}

	return rollup, nil
}
