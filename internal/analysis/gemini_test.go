package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dafibh/arthaku/internal/config"
	"github.com/dafibh/arthaku/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBudget() *domain.MonthlyBudget {
	return &domain.MonthlyBudget{
		Income: 10_000_000,
		Year:   "2024",
		Categories: []domain.Category{
			domain.NewCategory("Needs"),
		},
		Items: []domain.BudgetItem{
			{ID: "item-1", Name: "Rent", Category: "Needs", Budget: 3_000_000, Actual: 2_500_000},
			{ID: "item-2", Name: "Food", Category: "Needs", Budget: 2_000_000, Actual: 2_100_000},
		},
	}
}

func newTestAnalyzer(t *testing.T, handler http.HandlerFunc) *GeminiAnalyzer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewGeminiAnalyzer(config.GeminiConfig{
		APIKey:   "test-key",
		Model:    "gemini-test",
		BaseURL:  server.URL + "/v1beta/",
		Language: "Bahasa Indonesia",
	}, server.Client())
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testBudget(), "")

	assert.Contains(t, prompt, "- Gaji (Take Home Pay): 10000000")
	assert.Contains(t, prompt, "- Total Anggaran: 5000000")
	assert.Contains(t, prompt, "- Total Pengeluaran Aktual: 4600000")
	assert.Contains(t, prompt, "- Sisa Saldo: 5400000")
	assert.Contains(t, prompt, "Rent: Budget 3000000, Actual 2500000\nFood: Budget 2000000, Actual 2100000")
	assert.Contains(t, prompt, "Tuliskan dalam Bahasa Indonesia yang profesional dan ramah.")
}

func TestGeminiAnalyzer_Analyze(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest

	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Keuangan "},{"text":"sehat."}]},"finishReason":"STOP"}]}`))
	})

	text, err := analyzer.Analyze(context.Background(), testBudget())
	require.NoError(t, err)

	assert.Equal(t, "Keuangan sehat.", text)
	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "Gaji (Take Home Pay): 10000000")
}

func TestGeminiAnalyzer_EmptyCandidates(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	text, err := analyzer.Analyze(context.Background(), testBudget())
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGeminiAnalyzer_ErrorStatus(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota"}}`))
	})

	_, err := analyzer.Analyze(context.Background(), testBudget())
	assert.Error(t, err)
}

func TestGeminiAnalyzer_NilBudget(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := analyzer.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
