package domain

// Severity of a budget alert
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert thresholds, as whole percentages of a category budget
const (
	WarningPercent  = 90
	CriticalPercent = 100
)

// Alert reports a category whose spending has crossed a threshold
type Alert struct {
	Category string   `json:"category"`
	Ratio    float64  `json:"ratio"`
	Severity Severity `json:"severity"`
}

type dismissalKey struct {
	period   string
	category string
}

// DismissedAlerts is the set of (period, category) pairs the user has
// acknowledged during this session. It is never persisted.
type DismissedAlerts struct {
	pairs map[dismissalKey]struct{}
}

// NewDismissedAlerts returns an empty set
func NewDismissedAlerts() *DismissedAlerts {
	return &DismissedAlerts{pairs: make(map[dismissalKey]struct{})}
}

// Dismiss records an acknowledgement
func (d *DismissedAlerts) Dismiss(period, category string) {
	if d.pairs == nil {
		d.pairs = make(map[dismissalKey]struct{})
	}
	d.pairs[dismissalKey{period: period, category: category}] = struct{}{}
}

// IsDismissed reports whether the pair was acknowledged
func (d *DismissedAlerts) IsDismissed(period, category string) bool {
	if d == nil {
		return false
	}
	_, ok := d.pairs[dismissalKey{period: period, category: category}]
	return ok
}

// Reset forgets every acknowledgement
func (d *DismissedAlerts) Reset() {
	d.pairs = make(map[dismissalKey]struct{})
}

// Len returns the number of acknowledged pairs
func (d *DismissedAlerts) Len() int {
	if d == nil {
		return 0
	}
	return len(d.pairs)
}

// Session is the per-process view state threaded through the engine
type Session struct {
	ViewedPeriod string
	Dismissed    *DismissedAlerts
}

// NewSession creates a session viewing the given period
func NewSession(period string) *Session {
	return &Session{
		ViewedPeriod: period,
		Dismissed:    NewDismissedAlerts(),
	}
}
