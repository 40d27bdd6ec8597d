package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCurrent_Success(t *testing.T) {
	e := echo.New()
	svc, _ := newTestBudgetService(t)
	handler := NewMonthHandler(svc)

	c, rec := newContext(e, http.MethodGet, "/api/v1/months/current", "", nil)
	require.NoError(t, handler.GetCurrent(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	assert.Equal(t, testPeriod, view.Period)
	assert.Equal(t, int64(15000000), view.Budget.Income)
	assert.Len(t, view.Budget.Categories, 3)
	assert.Equal(t, int64(4000000), view.Aggregation.TotalBudget)
	require.NotNil(t, view.Unallocated)
	assert.Equal(t, int64(1000000), view.Unallocated.Remaining)
	assert.True(t, view.Sync.Saved)
}

func TestGetByPeriod_ProvisionsAndSelects(t *testing.T) {
	e := echo.New()
	svc, store := newTestBudgetService(t)
	handler := NewMonthHandler(svc)

	c, rec := newContext(e, http.MethodGet, "/api/v1/months/2024-04", "", map[string]string{"period": "2024-04"})
	require.NoError(t, handler.GetByPeriod(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	assert.Equal(t, "2024-04", view.Period)
	assert.True(t, view.Created)
	assert.Equal(t, "2024", view.Budget.Year)
	assert.Equal(t, "2024-04", svc.ViewedPeriod())

	saved, err := store.Saved()
	require.NoError(t, err)
	assert.Contains(t, saved, "2024-04")
}

func TestGetByPeriod_InvalidKey(t *testing.T) {
	e := echo.New()
	svc, _ := newTestBudgetService(t)
	handler := NewMonthHandler(svc)

	for _, period := range []string{"2024-13", "2024-3", "march"} {
		t.Run(period, func(t *testing.T) {
			c, rec := newContext(e, http.MethodGet, "/api/v1/months/"+period, "", map[string]string{"period": period})
			require.NoError(t, handler.GetByPeriod(c))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, ErrorTypeValidation, decodeProblem(t, rec).Type)
		})
	}
}

func TestSetIncome(t *testing.T) {
	e := echo.New()
	svc, _ := newTestBudgetService(t)
	handler := NewMonthHandler(svc)

	tests := []struct {
		name     string
		body     string
		expected int64
	}{
		{"number", `{"income": 12500000}`, 12500000},
		{"numeric string", `{"income": "9000000"}`, 9000000},
		{"negative clamps to zero", `{"income": -5}`, 0},
		{"garbage reads as zero", `{"income": "abc"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(e, http.MethodPut, "/api/v1/months/2024-03/income", tt.body, map[string]string{"period": testPeriod})
			require.NoError(t, handler.SetIncome(c))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.expected, decodeView(t, rec).Budget.Income)
		})
	}
}

func TestCategoryLifecycle(t *testing.T) {
	e := echo.New()
	svc, _ := newTestBudgetService(t)
	handler := NewMonthHandler(svc)
	params := map[string]string{"period": testPeriod}

	c, rec := newContext(e, http.MethodPost, "/api/v1/months/2024-03/categories", `{"name": "  Hiburan "}`, params)
	require.NoError(t, handler.AddCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	assert.True(t, view.Budget.HasCategory("Hiburan"))

	// duplicate is a no-op
	c, rec = newContext(e, http.MethodPost, "/api/v1/months/2024-03/categories", `{"name": "Hiburan"}`, params)
	require.NoError(t, handler.AddCategory(c))
	assert.Len(t, decodeView(t, rec).Budget.Categories, 4)

	// removing cascades to the category's items
	c, rec = newContext(e, http.MethodDelete, "/api/v1/months/2024-03/categories/Cicilan%20%2F%20Hutang", "",
		map[string]string{"period": testPeriod, "name": "Cicilan%20%2F%20Hutang"})
	require.NoError(t, handler.RemoveCategory(c))
	view = decodeView(t, rec)
	assert.False(t, view.Budget.HasCategory(domain.CategoryDebt))
	assert.Empty(t, view.Budget.ItemsIn(domain.CategoryDebt))
	assert.Equal(t, int64(1500000), view.Aggregation.TotalBudget)
}

func TestItemLifecycle(t *testing.T) {
	e := echo.New()
	svc, _ := newTestBudgetService(t)
	handler := NewMonthHandler(svc)

	body := `{"name": "Internet", "category": "` + domain.CategoryFixedExpense + `", "budget": "400000"}`
	c, rec := newContext(e, http.MethodPost, "/api/v1/months/2024-03/items", body, map[string]string{"period": testPeriod})
	require.NoError(t, handler.AddItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	item := itemByName(t, decodeView(t, rec).Budget, "Internet")
	assert.Equal(t, int64(400000), item.Budget)
	assert.Contains(t, item.ID, "item-")

	params := map[string]string{"period": testPeriod, "id": item.ID}
	c, rec = newContext(e, http.MethodPatch, "/api/v1/months/2024-03/items/"+item.ID, `{"name": "Internet Rumah", "actual": 450000}`, params)
	require.NoError(t, handler.UpdateItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	updated := itemByName(t, view.Budget, "Internet Rumah")
	assert.Equal(t, int64(400000), updated.Budget)
	assert.Equal(t, int64(450000), updated.Actual)
	assert.InDelta(t, 1.125, view.ItemUsage[item.ID], 1e-9)

	c, rec = newContext(e, http.MethodDelete, "/api/v1/months/2024-03/items/"+item.ID, "", params)
	require.NoError(t, handler.RemoveItem(c))
	view = decodeView(t, rec)
	_, ok := view.Budget.Item(item.ID)
	assert.False(t, ok)
}

func TestAddItem_UnknownCategoryIsIgnored(t *testing.T) {
	e := echo.New()
	svc, store := newTestBudgetService(t)
	handler := NewMonthHandler(svc)
	savesBefore := store.Saves()

	c, rec := newContext(e, http.MethodPost, "/api/v1/months/2024-03/items", `{"name": "Ghost", "category": "Nope"}`, map[string]string{"period": testPeriod})
	require.NoError(t, handler.AddItem(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeView(t, rec).Budget.Items, 3)
	assert.Equal(t, savesBefore, store.Saves())
}

func TestAlertsAndDismiss(t *testing.T) {
	e := echo.New()
	svc, _ := newTestBudgetService(t)
	handler := NewMonthHandler(svc)

	params := map[string]string{"period": testPeriod, "id": "1"}
	c, _ := newContext(e, http.MethodPatch, "/api/v1/months/2024-03/items/1", `{"actual": 600000}`, params)
	require.NoError(t, handler.UpdateItem(c))

	c, rec := newContext(e, http.MethodGet, "/api/v1/months/2024-03/alerts", "", map[string]string{"period": testPeriod})
	require.NoError(t, handler.GetAlerts(c))

	var alerts AlertsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts.Alerts, 1)
	assert.Equal(t, domain.CategoryFixedExpense, alerts.Alerts[0].Category)
	assert.Equal(t, domain.SeverityCritical, alerts.Alerts[0].Severity)

	c, rec = newContext(e, http.MethodPost, "/api/v1/months/2024-03/alerts/x/dismiss", "",
		map[string]string{"period": testPeriod, "category": domain.CategoryFixedExpense})
	require.NoError(t, handler.DismissAlert(c))

	var after AlertsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Empty(t, after.Alerts)
}

func TestPathParam_DecodesEscapes(t *testing.T) {
	e := echo.New()

	c, _ := newContext(e, http.MethodGet, "/", "", map[string]string{"name": "Tabungan%20%2F%20Investasi"})
	assert.Equal(t, "Tabungan / Investasi", pathParam(c, "name"))

	c, _ = newContext(e, http.MethodGet, "/", "", map[string]string{"name": "100%"})
	assert.Equal(t, "100%", pathParam(c, "name"))
}
