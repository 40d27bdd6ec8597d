package service

import (
	"github.com/dafibh/arthaku/internal/domain"
)

func testTemplate() domain.BudgetTemplate {
	return domain.BudgetTemplate{
		Income: 15000000,
		Categories: []domain.Category{
			domain.NewCategory(domain.CategoryFixedExpense),
			domain.NewCategory(domain.CategoryDebt),
			domain.NewCategory(domain.UnallocatedCategoryName),
		},
		Items: []domain.BudgetItem{
			{ID: "1", Name: "Listrik Rumah 1", Category: domain.CategoryFixedExpense, Budget: 500000},
			{ID: "17", Name: "Cicilan Rumah/Hutang", Category: domain.CategoryDebt, Budget: 2500000},
			{ID: "20", Name: domain.MasterAllocationItemName, Category: domain.UnallocatedCategoryName, Budget: 1000000},
		},
	}
}

func budgetWith(income int64, categories []string, items ...domain.BudgetItem) *domain.MonthlyBudget {
	b := &domain.MonthlyBudget{
		Income:     income,
		Items:      []domain.BudgetItem{},
		Categories: []domain.Category{},
		Year:       "2024",
	}
	for _, c := range categories {
		b.AddCategory(c)
	}
	for _, item := range items {
		b.AddItem(item)
	}
	return b
}

func int64Ptr(v int64) *int64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
