package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dafibh/arthaku/internal/domain"
)

//go:embed default_template.json
var defaultTemplateJSON []byte

// LoadTemplate reads the month seed from path, or the embedded default when
// path is empty
func LoadTemplate(path string) (domain.BudgetTemplate, error) {
	data := defaultTemplateJSON
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return domain.BudgetTemplate{}, fmt.Errorf("failed to read budget template: %w", err)
		}
	}

	var tmpl domain.BudgetTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return domain.BudgetTemplate{}, fmt.Errorf("failed to parse budget template: %w", err)
	}
	return tmpl, nil
}
