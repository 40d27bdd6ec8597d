package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/dafibh/arthaku/internal/service"
	"github.com/dafibh/arthaku/internal/testutil"
	"github.com/dafibh/arthaku/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testPeriod = "2024-03"

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

// newTestBudgetService starts an engine on an empty store with the clock
// fixed in March 2024
func newTestBudgetService(t *testing.T) (*service.BudgetService, *testutil.MockBudgetStore) {
	t.Helper()

	orig := util.Now
	util.Now = func() time.Time { return time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { util.Now = orig })

	store := testutil.NewMockBudgetStore()
	svc := service.NewBudgetService(store, service.NewMonthService(testTemplate()), service.BudgetServiceConfig{IncomeDebounce: 20 * time.Millisecond}, zerolog.Nop())
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(svc.Close)
	return svc, store
}

// newContext builds an echo context with optional JSON body and path params
func newContext(e *echo.Echo, method, target, body string, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) service.MonthView {
	t.Helper()
	var view service.MonthView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func itemByName(t *testing.T, b *domain.MonthlyBudget, name string) domain.BudgetItem {
	t.Helper()
	for _, item := range b.Items {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("item %q not found", name)
	return domain.BudgetItem{}
}
