package source

import (
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/fetcher"
	"github.com/sells-group/vaxpanel/internal/model"
)

// metadataColumns is the required column set of the vaccine metadata extract.
var metadataColumns = []string{
	"ISO_3_CODE",
	"HPV_NATIONAL_SCHEDULE",
	"HPV_YEAR_INTRODUCTION",
	"HPV_PRIM_DELIV_STRATEGY",
	"HPV_AGEADMINISTERED",
	"HPV_SEX",
}

// LoadMetadata reads static per-country HPV program metadata. The file is
// expected to hold one row per country; duplicates keep the first occurrence
// with a warning. HPV_INT_DOSES is optional; older extracts lack it and the
// rule engine fills the label in downstream.
func LoadMetadata(path string) ([]model.MetadataRecord, LoadDiag, error) {
	var diag LoadDiag

	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, diag, err
	}
	if len(rows) == 0 {
		return nil, diag, errEmpty("metadata", path)
	}

	colIdx := mapColumns(rows[0])
	if err := requireColumns("metadata", colIdx, metadataColumns...); err != nil {
		return nil, diag, err
	}

	var records []model.MetadataRecord
	seen := map[string]bool{}

	for _, row := range rows[1:] {
		code := model.NormalizeCode(model.CleanCell(getCol(row, colIdx, "ISO_3_CODE")))
		if code == "" {
			diag.MissingKeyRows++
			continue
		}
		if seen[code] {
			diag.DuplicateKeys++
			continue
		}
		seen[code] = true

		records = append(records, model.MetadataRecord{
			CountryCode:      code,
			NationalSchedule: getCol(row, colIdx, "HPV_NATIONAL_SCHEDULE"),
			IntroYear:        getCol(row, colIdx, "HPV_YEAR_INTRODUCTION"),
			DeliveryStrategy: getCol(row, colIdx, "HPV_PRIM_DELIV_STRATEGY"),
			AgeAdministered:  getCol(row, colIdx, "HPV_AGEADMINISTERED"),
			Sex:              getCol(row, colIdx, "HPV_SEX"),
			IntDoses:         getCol(row, colIdx, "HPV_INT_DOSES"),
		})
	}

	diag.Rows = len(records)
	if diag.DuplicateKeys > 0 {
		zap.L().Warn("metadata: duplicate country_code, keeping first", zap.Int("count", diag.DuplicateKeys))
	}
	zap.L().Info("metadata: loaded", zap.Int("rows", diag.Rows))
	return records, diag, nil
}
