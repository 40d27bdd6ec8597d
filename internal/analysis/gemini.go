package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dafibh/arthaku/internal/config"
	"github.com/dafibh/arthaku/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single generateContent call
const DefaultTimeout = 30 * time.Second

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// GeminiAnalyzer implements domain.Analyzer with the Gemini generateContent API
type GeminiAnalyzer struct {
	apiKey   string
	model    string
	baseURL  string
	language string
	client   *http.Client
	logger   zerolog.Logger
}

// NewGeminiAnalyzer creates a new GeminiAnalyzer
func NewGeminiAnalyzer(cfg config.GeminiConfig, client *http.Client) *GeminiAnalyzer {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &GeminiAnalyzer{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		language: cfg.Language,
		client:   client,
		logger:   log.With().Str("component", "gemini").Logger(),
	}
}

// Analyze asks the model for a review of one month. An empty answer is
// returned as "" with no error.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, budget *domain.MonthlyBudget) (string, error) {
	if budget == nil {
		return "", fmt.Errorf("%w: budget is required", domain.ErrInvalidInput)
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: BuildPrompt(budget, a.language)}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		a.baseURL, url.PathEscape(a.model), url.QueryEscape(a.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		a.logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("Gemini returned non-OK status")
		return "", fmt.Errorf("gemini returned status %s", resp.Status)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}

	a.logger.Debug().
		Str("model", a.model).
		Int("candidates", len(out.Candidates)).
		Dur("latency", time.Since(start)).
		Msg("Gemini analysis completed")

	if len(out.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// BuildPrompt renders the month as a prompt. Amounts are whole Rupiah.
func BuildPrompt(budget *domain.MonthlyBudget, language string) string {
	var totalBudget, totalActual int64
	for _, item := range budget.Items {
		totalBudget += item.Budget
		totalActual += item.Actual
	}
	surplus := budget.Income - totalActual

	lines := make([]string, 0, len(budget.Items))
	for _, item := range budget.Items {
		lines = append(lines, fmt.Sprintf("%s: Budget %d, Actual %d", item.Name, item.Budget, item.Actual))
	}

	if language == "" {
		language = "Bahasa Indonesia"
	}

	var sb strings.Builder
	sb.WriteString("Saya memiliki data keuangan bulanan berikut dalam IDR (Rupiah):\n")
	fmt.Fprintf(&sb, "- Gaji (Take Home Pay): %d\n", budget.Income)
	fmt.Fprintf(&sb, "- Total Anggaran: %d\n", totalBudget)
	fmt.Fprintf(&sb, "- Total Pengeluaran Aktual: %d\n", totalActual)
	fmt.Fprintf(&sb, "- Sisa Saldo: %d\n\n", surplus)
	sb.WriteString("Berikut detail item pengeluaran (Nama - Anggaran - Aktual):\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n\nTolong berikan:\n")
	sb.WriteString("1. Analisis singkat kondisi keuangan saya saat ini.\n")
	sb.WriteString("2. 3 rekomendasi praktis untuk mengoptimalkan pengeluaran saya.\n")
	sb.WriteString("3. Analisis apakah tabungan saya sudah cukup proporsional dengan gaji saya.\n\n")
	fmt.Fprintf(&sb, "Tuliskan dalam %s yang profesional dan ramah.\n", language)
	return sb.String()
}
