package service

import (
	"github.com/dafibh/arthaku/internal/domain"
)

// DeriveAlerts returns the threshold crossings of a month in category display
// order, skipping categories dismissed for this period. Thresholds are
// checked in integers so 90% of the budget is a warning exactly.
func DeriveAlerts(periodKey string, b *domain.MonthlyBudget, agg domain.Aggregation, dismissed *domain.DismissedAlerts) []domain.Alert {
	alerts := make([]domain.Alert, 0)
	if b == nil {
		return alerts
	}

	for _, c := range b.Categories {
		totals, ok := agg.PerCategory[c.Name]
		if !ok || totals.Budget <= 0 {
			continue
		}
		severity, crossed := severityFor(totals.Actual, totals.Budget)
		if !crossed || dismissed.IsDismissed(periodKey, c.Name) {
			continue
		}
		alerts = append(alerts, domain.Alert{
			Category: c.Name,
			Ratio:    totals.UsageRatio,
			Severity: severity,
		})
	}
	return alerts
}

// severityFor compares actual against the warning and critical shares of budget
func severityFor(actual, budget int64) (domain.Severity, bool) {
	switch {
	case actual*100 >= budget*domain.CriticalPercent:
		return domain.SeverityCritical, true
	case actual*100 >= budget*domain.WarningPercent:
		return domain.SeverityWarning, true
	default:
		return "", false
	}
}
