package domain

// BudgetTemplate is the seed used when a month is provisioned with no
// earlier data to inherit from
type BudgetTemplate struct {
	Income     int64        `json:"income"`
	Categories []Category   `json:"categories"`
	Items      []BudgetItem `json:"items"`
}

// Instantiate builds a fresh budget for the given year from the template
func (t BudgetTemplate) Instantiate(year string) *MonthlyBudget {
	b := &MonthlyBudget{
		Income:     ClampAmount(t.Income),
		Items:      make([]BudgetItem, 0, len(t.Items)),
		Categories: make([]Category, 0, len(t.Categories)),
		Year:       year,
	}
	for _, c := range t.Categories {
		b.AddCategory(c.Name)
	}
	for _, item := range t.Items {
		b.AddItem(item)
	}
	return b
}
