package source

import (
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/fetcher"
	"github.com/sells-group/vaxpanel/internal/model"
)

// LoadHPVHistory reads the historical HPV first-dose extract kept for the
// redundancy comparison against the WHO coverage column. Duplicate
// (country_code, year) keys keep the first occurrence.
func LoadHPVHistory(path string) ([]model.HPVHistRecord, LoadDiag, error) {
	var diag LoadDiag

	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, diag, err
	}
	if len(rows) == 0 {
		return nil, diag, errEmpty("hpv history", path)
	}

	colIdx := mapColumns(rows[0])
	if err := requireColumns("hpv history", colIdx, "CODE", "YEAR", "COVERAGE", "ANTIGEN"); err != nil {
		return nil, diag, err
	}

	var records []model.HPVHistRecord
	seen := map[model.Key]bool{}

	for _, row := range rows[1:] {
		code := model.NormalizeCode(model.CleanCell(getCol(row, colIdx, "CODE")))
		year, ok := parseYear(getCol(row, colIdx, "YEAR"))
		if code == "" || !ok {
			diag.MissingKeyRows++
			continue
		}

		key := model.Key{CountryCode: code, Year: year}
		if seen[key] {
			diag.DuplicateKeys++
			continue
		}
		seen[key] = true

		records = append(records, model.HPVHistRecord{
			CountryCode: code,
			Year:        year,
			OriCov:      getCol(row, colIdx, "COVERAGE"),
			OriAntigen:  getCol(row, colIdx, "ANTIGEN"),
		})
	}

	diag.Rows = len(records)
	if diag.DuplicateKeys > 0 {
		zap.L().Warn("hpv history: duplicate (CODE, YEAR) keys, keeping first", zap.Int("count", diag.DuplicateKeys))
	}
	zap.L().Info("hpv history: loaded", zap.Int("rows", diag.Rows), zap.Int("missing_key_rows", diag.MissingKeyRows))
	return records, diag, nil
}
