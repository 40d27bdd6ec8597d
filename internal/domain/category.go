package domain

import (
	"encoding/json"
	"strings"
)

// CategoryKind distinguishes ordinary categories from the unallocated envelope
type CategoryKind int

const (
	CategoryKindStandard CategoryKind = iota
	CategoryKindUnallocated
)

// Reserved names of the unallocated category and its master allocation item
const (
	UnallocatedCategoryName  = "Lain-lain (Tak Terduga)"
	MasterAllocationItemName = "Pengeluaran Tak Terduga"
)

// Default category names used by the seed template
const (
	CategoryFixedExpense = "Kebutuhan Pokok"
	CategoryDebt         = "Cicilan / Hutang"
	CategorySavings      = "Tabungan / Investasi"
)

func (k CategoryKind) String() string {
	if k == CategoryKindUnallocated {
		return "unallocated"
	}
	return "standard"
}

// Category is a named grouping of budget items. Its kind is fixed when the
// value is created and travels with it.
type Category struct {
	Name string
	Kind CategoryKind
}

// NewCategory creates a category and resolves its kind from the name
func NewCategory(name string) Category {
	kind := CategoryKindStandard
	if name == UnallocatedCategoryName {
		kind = CategoryKindUnallocated
	}
	return Category{Name: name, Kind: kind}
}

// IsUnallocated reports whether the category is the unallocated envelope
func (c Category) IsUnallocated() bool {
	return c.Kind == CategoryKindUnallocated
}

// MarshalJSON persists a category as its plain name
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Name)
}

// UnmarshalJSON reads a plain name and resolves the kind
func (c *Category) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*c = NewCategory(name)
	return nil
}

// NormalizeCategoryName trims surrounding whitespace from a user-supplied name
func NormalizeCategoryName(name string) string {
	return strings.TrimSpace(name)
}
