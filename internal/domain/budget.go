package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
)

// BudgetItem is one planned/actual expense line
type BudgetItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Budget   int64  `json:"budget"`
	Actual   int64  `json:"actual"`
}

// MonthlyBudget is the persisted state of one calendar month
type MonthlyBudget struct {
	Income     int64        `json:"income"`
	Items      []BudgetItem `json:"items"`
	Categories []Category   `json:"categories"`
	Year       string       `json:"year"`
}

// ItemField names an editable amount of a budget item
type ItemField string

const (
	ItemFieldBudget ItemField = "budget"
	ItemFieldActual ItemField = "actual"
)

// UnmarshalJSON reads amounts softly so a stored fraction or stray string
// becomes a floored, non-negative whole amount
func (i *BudgetItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		Name     string          `json:"name"`
		Category string          `json:"category"`
		Budget   Amount          `json:"budget"`
		Actual   Amount          `json:"actual"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = BudgetItem{
		ID:       decodeID(raw.ID),
		Name:     raw.Name,
		Category: raw.Category,
		Budget:   raw.Budget.Int64(),
		Actual:   raw.Actual.Int64(),
	}
	return nil
}

// decodeID accepts string ids and the numeric ids older exports carry
func decodeID(data json.RawMessage) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(data))
}

// UnmarshalJSON reads income softly, like item amounts
func (b *MonthlyBudget) UnmarshalJSON(data []byte) error {
	var raw struct {
		Income     Amount       `json:"income"`
		Items      []BudgetItem `json:"items"`
		Categories []Category   `json:"categories"`
		Year       string       `json:"year"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = MonthlyBudget{
		Income:     raw.Income.Int64(),
		Items:      raw.Items,
		Categories: raw.Categories,
		Year:       raw.Year,
	}
	return nil
}

// Normalize restores the invariants on a budget that came from outside the
// engine. Amounts clamp to zero, category names are trimmed with empties and
// duplicates dropped, and items without an id or reusing one are dropped.
// Items whose category is missing are kept; aggregation buckets them under
// their own name.
func (b *MonthlyBudget) Normalize() {
	b.Income = ClampAmount(b.Income)

	categories := b.Categories
	b.Categories = make([]Category, 0, len(categories))
	for _, c := range categories {
		b.AddCategory(c.Name)
	}

	items := b.Items
	b.Items = make([]BudgetItem, 0, len(items))
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			continue
		}
		if _, dup := b.itemIndex(item.ID); dup {
			continue
		}
		item.Category = NormalizeCategoryName(item.Category)
		item.Budget = ClampAmount(item.Budget)
		item.Actual = ClampAmount(item.Actual)
		b.Items = append(b.Items, item)
	}
}

// Category returns the category with the given name
func (b *MonthlyBudget) Category(name string) (Category, bool) {
	for _, c := range b.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// HasCategory reports whether the name is in the category set
func (b *MonthlyBudget) HasCategory(name string) bool {
	_, ok := b.Category(name)
	return ok
}

// AddCategory appends a category. Empty or duplicate names are ignored.
func (b *MonthlyBudget) AddCategory(name string) bool {
	name = NormalizeCategoryName(name)
	if name == "" || b.HasCategory(name) {
		return false
	}
	b.Categories = append(b.Categories, NewCategory(name))
	return true
}

// RemoveCategory deletes a category and every item that references it
func (b *MonthlyBudget) RemoveCategory(name string) bool {
	if !b.HasCategory(name) {
		return false
	}

	categories := make([]Category, 0, len(b.Categories))
	for _, c := range b.Categories {
		if c.Name != name {
			categories = append(categories, c)
		}
	}
	b.Categories = categories

	items := make([]BudgetItem, 0, len(b.Items))
	for _, item := range b.Items {
		if item.Category != name {
			items = append(items, item)
		}
	}
	b.Items = items
	return true
}

// AddItem appends an item to an existing category. Items pointing at an
// unknown category or reusing an id are ignored.
func (b *MonthlyBudget) AddItem(item BudgetItem) bool {
	if item.ID == "" || !b.HasCategory(item.Category) {
		return false
	}
	if _, ok := b.itemIndex(item.ID); ok {
		return false
	}
	item.Budget = ClampAmount(item.Budget)
	item.Actual = ClampAmount(item.Actual)
	b.Items = append(b.Items, item)
	return true
}

// Item returns the item with the given id
func (b *MonthlyBudget) Item(id string) (BudgetItem, bool) {
	if i, ok := b.itemIndex(id); ok {
		return b.Items[i], true
	}
	return BudgetItem{}, false
}

// SetItemAmount updates the budget or actual amount of an item, clamped to zero
func (b *MonthlyBudget) SetItemAmount(id string, field ItemField, value int64) bool {
	i, ok := b.itemIndex(id)
	if !ok {
		return false
	}
	switch field {
	case ItemFieldBudget:
		b.Items[i].Budget = ClampAmount(value)
	case ItemFieldActual:
		b.Items[i].Actual = ClampAmount(value)
	default:
		return false
	}
	return true
}

// RenameItem changes the label of an item
func (b *MonthlyBudget) RenameItem(id, name string) bool {
	i, ok := b.itemIndex(id)
	if !ok {
		return false
	}
	b.Items[i].Name = name
	return true
}

// RemoveItem deletes an item by id
func (b *MonthlyBudget) RemoveItem(id string) bool {
	i, ok := b.itemIndex(id)
	if !ok {
		return false
	}
	b.Items = append(b.Items[:i:i], b.Items[i+1:]...)
	return true
}

// SetIncome sets the month's income, clamped to zero
func (b *MonthlyBudget) SetIncome(income int64) {
	b.Income = ClampAmount(income)
}

// ItemsIn returns the items of one category in insertion order
func (b *MonthlyBudget) ItemsIn(category string) []BudgetItem {
	var items []BudgetItem
	for _, item := range b.Items {
		if item.Category == category {
			items = append(items, item)
		}
	}
	return items
}

// Clone returns a deep copy of the budget
func (b *MonthlyBudget) Clone() *MonthlyBudget {
	if b == nil {
		return nil
	}
	c := &MonthlyBudget{
		Income:     b.Income,
		Year:       b.Year,
		Items:      make([]BudgetItem, len(b.Items)),
		Categories: make([]Category, len(b.Categories)),
	}
	copy(c.Items, b.Items)
	copy(c.Categories, b.Categories)
	return c
}

func (b *MonthlyBudget) itemIndex(id string) (int, bool) {
	for i, item := range b.Items {
		if item.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Ledger is the top-level store: one budget per period key
type Ledger map[string]*MonthlyBudget

// Keys returns the period keys in ascending order
func (l Ledger) Keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Normalize drops nil budgets and normalizes the rest. A missing year is
// taken from the period key.
func (l Ledger) Normalize() {
	for key, b := range l {
		if b == nil {
			delete(l, key)
			continue
		}
		b.Normalize()
		if b.Year == "" && len(key) >= 4 {
			b.Year = key[:4]
		}
	}
}

// Clone returns a deep copy of the ledger
func (l Ledger) Clone() Ledger {
	c := make(Ledger, len(l))
	for k, b := range l {
		c[k] = b.Clone()
	}
	return c
}

// BudgetStore persists the whole ledger as one blob
type BudgetStore interface {
	Load(ctx context.Context) (Ledger, error)
	Save(ctx context.Context, ledger Ledger) error
}

// BackupRepository stores opaque ledger snapshots remotely
type BackupRepository interface {
	Put(ctx context.Context, snapshot []byte) (string, error)
	Get(ctx context.Context, handle string) ([]byte, error)
}

// Analyzer produces a free-text review of one month
type Analyzer interface {
	Analyze(ctx context.Context, budget *MonthlyBudget) (string, error)
}
