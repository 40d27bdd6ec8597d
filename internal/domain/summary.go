package domain

// CategoryTotals are the aggregated figures of one category. Remaining is
// budget minus actual and is derived, never stored.
type CategoryTotals struct {
	Name       string       `json:"name"`
	Kind       CategoryKind `json:"-"`
	Budget     int64        `json:"budget"`
	Actual     int64        `json:"actual"`
	Remaining  int64        `json:"remaining"`
	UsageRatio float64      `json:"usageRatio"`
}

// Aggregation is the derived view of one monthly budget. Utilization is
// totalActual / totalBudget, zero when nothing is budgeted.
type Aggregation struct {
	PerCategory map[string]CategoryTotals `json:"perCategory"`
	TotalBudget int64                     `json:"totalBudget"`
	TotalActual int64                     `json:"totalActual"`
	Balance     int64                     `json:"balance"`
	Utilization float64                   `json:"utilization"`
}

// MonthSummary is one row of a yearly rollup
type MonthSummary struct {
	MonthIndex int    `json:"monthIndex"`
	PeriodKey  string `json:"periodKey"`
	Income     int64  `json:"income"`
	Budget     int64  `json:"budget"`
	Actual     int64  `json:"actual"`
	Surplus    int64  `json:"surplus"`
	HasData    bool   `json:"hasData"`
}

// YearlyTotals sums the monthly rows of a year
type YearlyTotals struct {
	Income  int64 `json:"income"`
	Budget  int64 `json:"budget"`
	Actual  int64 `json:"actual"`
	Surplus int64 `json:"surplus"`
}

// YearlyRollup is the 12-month series for one year
type YearlyRollup struct {
	Year   string         `json:"year"`
	Months []MonthSummary `json:"months"`
	Totals YearlyTotals   `json:"totals"`
}
