package source

import (
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/fetcher"
	"github.com/sells-group/vaxpanel/internal/model"
)

// LoadCoverage reads the WHO HPV first-dose coverage extract. Keys are
// normalized, rows with an unparseable key are dropped (counted), and
// duplicate (CODE, YEAR) keys keep the first occurrence.
func LoadCoverage(path string) ([]model.CoverageRecord, LoadDiag, error) {
	var diag LoadDiag

	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, diag, err
	}
	if len(rows) == 0 {
		return nil, diag, errEmpty("coverage", path)
	}

	colIdx := mapColumns(rows[0])
	if err := requireColumns("coverage", colIdx, "CODE", "YEAR"); err != nil {
		return nil, diag, err
	}

	var records []model.CoverageRecord
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

		records = append(records, model.CoverageRecord{
			CountryCode:  code,
			CountryName:  getCol(row, colIdx, "NAME"),
			Year:         year,
			Region:       getCol(row, colIdx, "REGION"),
			TargetNumber: getCol(row, colIdx, "TARGET_NUMBER"),
			Doses:        getCol(row, colIdx, "DOSES"),
			Coverage:     getCol(row, colIdx, "COVERAGE"),
		})
	}

	diag.Rows = len(records)
	if diag.DuplicateKeys > 0 {
		zap.L().Warn("coverage: duplicate (CODE, YEAR) keys, keeping first", zap.Int("count", diag.DuplicateKeys))
	}
	zap.L().Info("coverage: loaded", zap.Int("rows", diag.Rows), zap.Int("missing_key_rows", diag.MissingKeyRows))
	return records, diag, nil
}
