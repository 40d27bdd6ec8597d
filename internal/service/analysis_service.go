package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/rs/zerolog/log"
)

// FallbackAnalysis is returned when the analyzer answers with no text
const FallbackAnalysis = "Maaf, AI asisten sedang tidak dapat memberikan analisis."

// AnalysisResult is the review of one month
type AnalysisResult struct {
	Period string `json:"period"`
	Text   string `json:"text"`
}

// AnalysisService asks the analyzer to review a month. It never changes
// engine state.
type AnalysisService struct {
	budget   *BudgetService
	analyzer domain.Analyzer
}

// NewAnalysisService creates a new AnalysisService. analyzer may be nil when
// analysis is not configured.
func NewAnalysisService(budget *BudgetService, analyzer domain.Analyzer) *AnalysisService {
	return &AnalysisService{budget: budget, analyzer: analyzer}
}

// Enabled reports whether an analyzer is configured
func (s *AnalysisService) Enabled() bool {
	return s.analyzer != nil
}

// Analyze reviews the stored budget of a period
func (s *AnalysisService) Analyze(ctx context.Context, period string) (*AnalysisResult, error) {
	if s.analyzer == nil {
		return nil, fmt.Errorf("%w: analysis is not configured", domain.ErrAnalysisFailed)
	}

	b, err := s.budget.MonthSnapshot(period)
	if err != nil {
		return nil, err
	}

	text, err := s.analyzer.Analyze(ctx, b)
	if err != nil {
		log.Error().Err(err).Str("period", period).Msg("Analysis request failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		text = FallbackAnalysis
	}

	return &AnalysisResult{Period: period, Text: text}, nil
}
