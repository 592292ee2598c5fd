package source

import (
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/fetcher"
	"github.com/sells-group/vaxpanel/internal/model"
)

// LoadDTP reads a DTP comparator coverage extract. The first- and
// last(third)-dose files share a layout but name their value columns
// differently, so the caller passes the source and coverage column names.
func LoadDTP(path, label, sourceCol, covCol string) ([]model.DTPRecord, LoadDiag, error) {
	var diag LoadDiag

	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, diag, err
	}
	if len(rows) == 0 {
		return nil, diag, errEmpty(label, path)
	}

	colIdx := mapColumns(rows[0])
	if err := requireColumns(label, colIdx, "country_code", "year", sourceCol, covCol); err != nil {
		return nil, diag, err
	}

	var records []model.DTPRecord
	seen := map[model.Key]bool{}

	for _, row := range rows[1:] {
		code := model.NormalizeCode(model.CleanCell(getCol(row, colIdx, "country_code")))
		year, ok := parseYear(getCol(row, colIdx, "year"))
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

		records = append(records, model.DTPRecord{
			CountryCode: code,
			Year:        year,
			Source:      getCol(row, colIdx, sourceCol),
			Coverage:    parseFloatCell(getCol(row, colIdx, covCol)),
		})
	}

	diag.Rows = len(records)
	if diag.DuplicateKeys > 0 {
		zap.L().Warn("dtp: duplicate (country_code, year) keys, keeping first",
			zap.String("file", label), zap.Int("count", diag.DuplicateKeys))
	}
	zap.L().Info("dtp: loaded", zap.String("file", label), zap.Int("rows", diag.Rows))
	return records, diag, nil
}
