package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/dafibh/arthaku/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisService_Analyze(t *testing.T) {
	svc, _ := startedBudgetService(t, testutil.NewMockBudgetStore())
	analyzer := &testutil.MockAnalyzer{Text: "Keuangan Anda sehat."}
	analysis := NewAnalysisService(svc, analyzer)

	result, err := analysis.Analyze(context.Background(), testCurrentPeriod)
	require.NoError(t, err)
	assert.Equal(t, "Keuangan Anda sehat.", result.Text)
	assert.Equal(t, testCurrentPeriod, result.Period)
	require.NotNil(t, analyzer.LastInput)
	assert.Equal(t, int64(15000000), analyzer.LastInput.Income)
}

func TestAnalysisService_EmptyAnswerFallsBack(t *testing.T) {
	svc, _ := startedBudgetService(t, testutil.NewMockBudgetStore())
	analysis := NewAnalysisService(svc, &testutil.MockAnalyzer{Text: "  "})

	result, err := analysis.Analyze(context.Background(), testCurrentPeriod)
	require.NoError(t, err)
	assert.Equal(t, FallbackAnalysis, result.Text)
}

func TestAnalysisService_Failures(t *testing.T) {
	svc, _ := startedBudgetService(t, testutil.NewMockBudgetStore())
	ctx := context.Background()

	failing := NewAnalysisService(svc, &testutil.MockAnalyzer{Err: errors.New("quota")})
	_, err := failing.Analyze(ctx, testCurrentPeriod)
	assert.True(t, errors.Is(err, domain.ErrAnalysisFailed))

	disabled := NewAnalysisService(svc, nil)
	assert.False(t, disabled.Enabled())
	_, err = disabled.Analyze(ctx, testCurrentPeriod)
	assert.True(t, errors.Is(err, domain.ErrAnalysisFailed))

	analyzer := &testutil.MockAnalyzer{Text: "ok"}
	_, err = NewAnalysisService(svc, analyzer).Analyze(ctx, "2030-01")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 0, analyzer.Calls, "missing months are not provisioned for analysis")
}
