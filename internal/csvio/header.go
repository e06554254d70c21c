package csvio

import (
	"github.com/postloop/postloop/internal/model"
	"github.com/postloop/postloop/internal/schema"
)

// ValidateHeader compares a payload's column names against the schema.
// Missing required columns invalidate the payload; unknown columns are
// reported as extra but tolerated for forward compatibility.
func ValidateHeader(columns []string) model.HeaderReport {
	report := model.HeaderReport{
		Missing: []string{},
		Extra:   []string{},
	}
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		name := schema.Normalize(col)
		if name == "" {
			continue
		}
		seen[name] = true
		if !schema.IsKnownColumn(name) {
			report.Extra = append(report.Extra, name)
		}
	}
	for _, required := range schema.RequiredColumns() {
		if !seen[required] {
			report.Missing = append(report.Missing, required)
		}
	}
	report.Valid = len(seen) > 0 && len(report.Missing) == 0
	return report
}
