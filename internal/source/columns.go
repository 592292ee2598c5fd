// Package source loads the raw spreadsheet extracts and normalizes each into
// keyed records: World Bank income history, Gavi eligibility history, WHO
// coverage, historical HPV first-dose data, DTP comparator coverage, vaccine
// program metadata, and the cervical-cancer crude rate.
//
// Every loader validates its required-column set up front and fails with the
// exact missing column names. Duplicate merge keys are resolved
// keep-first with a logged warning, never silently.
package source

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vaxpanel/internal/model"
)

// normalizeCol lowercases a header cell and strips whitespace, hyphens and
// parentheses so header variants like "Alpha-3 code" and "Alpha3code" match.
func normalizeCol(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ToLower(strings.TrimSpace(s))
	for _, cut := range []string{" ", "-", "(", ")"} {
		s = strings.ReplaceAll(s, cut, "")
	}
	return s
}

// mapColumns builds a normalized column name → index map from a header row.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[normalizeCol(col)] = i
	}
	return m
}

// getCol gets a column value by normalized name, "" when absent or the row
// is short.
func getCol(record []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[normalizeCol(name)]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// requireColumns returns a schema error naming every missing column, or nil.
func requireColumns(label string, colIdx map[string]int, names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := colIdx[normalizeCol(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("%s: missing required columns: %s", label, strings.Join(missing, ", "))
	}
	return nil
}

// parseYear parses a year cell, tolerating float serialization ("2018.0").
func parseYear(s string) (int, bool) {
	s = model.CleanCell(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	y := int(f)
	if float64(y) != f {
		return 0, false
	}
	return y, true
}

// parseFloatCell parses a numeric cell, nil when missing or non-numeric.
func parseFloatCell(s string) *float64 {
	s = model.CleanCell(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// LoadDiag summarizes one source load.
type LoadDiag struct {
	Rows           int `json:"rows"`
	DuplicateKeys  int `json:"duplicate_keys"`
	MissingKeyRows int `json:"missing_key_rows"`
}
