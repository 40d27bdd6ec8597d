package service

import (
	"github.com/dafibh/arthaku/internal/domain"
)

// Aggregate rolls a budget up into per-category and grand totals. It is pure
// and must be called on every read.
//
// Standard categories sum their items. The unallocated category takes its
// budget from the master allocation item and its actual from the remaining
// spend items, so the master item's own actual and the spend items' budgets
// never count. Items whose category is missing from the set are grouped
// under their own name so the grand totals still equal the category sums.
func Aggregate(b *domain.MonthlyBudget) domain.Aggregation {
	agg := domain.Aggregation{PerCategory: make(map[string]domain.CategoryTotals)}
	if b == nil {
		return agg
	}

	kinds := make(map[string]domain.CategoryKind, len(b.Categories))
	for _, c := range b.Categories {
		kinds[c.Name] = c.Kind
		agg.PerCategory[c.Name] = domain.CategoryTotals{Name: c.Name, Kind: c.Kind}
	}

	masterSeen := make(map[string]bool)
	for _, item := range b.Items {
		kind, known := kinds[item.Category]
		totals := agg.PerCategory[item.Category]
		if !known {
			totals.Name = item.Category
			totals.Kind = domain.CategoryKindStandard
		}

		if kind == domain.CategoryKindUnallocated && known {
			if item.Name == domain.MasterAllocationItemName && !masterSeen[item.Category] {
				masterSeen[item.Category] = true
				totals.Budget = item.Budget
			} else {
				totals.Actual += item.Actual
			}
		} else {
			totals.Budget += item.Budget
			totals.Actual += item.Actual
		}
		agg.PerCategory[item.Category] = totals
	}

	for name, totals := range agg.PerCategory {
		totals.Remaining = totals.Budget - totals.Actual
		totals.UsageRatio = ratio(totals.Actual, totals.Budget)
		agg.PerCategory[name] = totals

		agg.TotalBudget += totals.Budget
		agg.TotalActual += totals.Actual
	}

	agg.Balance = b.Income - agg.TotalActual
	agg.Utilization = ratio(agg.TotalActual, agg.TotalBudget)
	return agg
}

// ItemUsage returns actual/budget for one item, 0 when nothing is budgeted
func ItemUsage(item domain.BudgetItem) float64 {
	return ratio(item.Actual, item.Budget)
}

// MasterAllocation returns the first master allocation item of the
// unallocated category
func MasterAllocation(b *domain.MonthlyBudget) (domain.BudgetItem, bool) {
	for _, c := range b.Categories {
		if !c.IsUnallocated() {
			continue
		}
		for _, item := range b.Items {
			if item.Category == c.Name && item.Name == domain.MasterAllocationItemName {
				return item, true
			}
		}
	}
	return domain.BudgetItem{}, false
}

func ratio(actual, budget int64) float64 {
	if budget <= 0 {
		return 0
	}
	return float64(actual) / float64(budget)
}
