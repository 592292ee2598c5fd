package source

import (
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/fetcher"
	"github.com/sells-group/vaxpanel/internal/model"
)

// LoadCervical reads the cervical-cancer crude-rate TSV (single year,
// cross-sectional). Header names vary between exports ("Alpha-3 code" vs
// "Alpha3code"), which the normalized column lookup absorbs.
func LoadCervical(path string) ([]model.CervicalRecord, LoadDiag, error) {
	var diag LoadDiag

	rows, err := fetcher.ReadTSV(path)
	if err != nil {
		return nil, diag, err
	}
	if len(rows) == 0 {
		return nil, diag, errEmpty("cervical", path)
	}

	colIdx := mapColumns(rows[0])
	if err := requireColumns("cervical", colIdx, "Alpha-3 code", "Crude rate"); err != nil {
		return nil, diag, err
	}

	var records []model.CervicalRecord
	seen := map[string]bool{}

	for _, row := range rows[1:] {
		code := model.NormalizeCode(model.CleanCell(getCol(row, colIdx, "Alpha-3 code")))
		if code == "" {
			diag.MissingKeyRows++
			continue
		}
		if seen[code] {
			diag.DuplicateKeys++
			continue
		}

		rate := parseFloatCell(getCol(row, colIdx, "Crude rate"))
		if rate == nil {
			diag.MissingKeyRows++
			continue
		}
		seen[code] = true

		records = append(records, model.CervicalRecord{
			CountryCode: code,
			CrudeRate:   *rate,
		})
	}

	diag.Rows = len(records)
	if diag.DuplicateKeys > 0 {
		zap.L().Warn("cervical: duplicate country_code, keeping first", zap.Int("count", diag.DuplicateKeys))
	}
	zap.L().Info("cervical: loaded", zap.Int("rows", diag.Rows))
	return records, diag, nil
}
