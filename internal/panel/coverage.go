package panel

import (
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/model"
)

// MergeDiag is the join-indicator breakdown printed after every outer merge.
// It is the pipeline's primary guard against silent data loss.
type MergeDiag struct {
	LeftOnly  int `json:"left_only"`
	RightOnly int `json:"right_only"`
	Both      int `json:"both"`
	Total     int `json:"total"`
}

// CoverageDiag reports both coverage merges and the redundancy comparison.
type CoverageDiag struct {
	Coverage    MergeDiag `json:"coverage"`
	HPVHistory  MergeDiag `json:"hpv_history"`
	OriCompared int       `json:"ori_compared_rows"`
	OriDropped  bool      `json:"ori_columns_dropped"`
}

// MergeCoverage outer-joins the panel against the WHO coverage extract and
// the historical HPV extract on normalized (country_code, year) keys,
// coalescing the right-hand keys into the panel key. Rows present only on
// the right side become new panel rows with null panel attributes.
//
// After both merges the historical ori_dat_* columns are dropped iff every
// row where both they and the WHO coverage cell are non-missing compares
// equal as strings (numeric comparison would false-negative on float
// formatting).
func MergeCoverage(rows []*model.Row, cov []model.CoverageRecord, hist []model.HPVHistRecord) ([]*model.Row, CoverageDiag) {
	var diag CoverageDiag

	byKey := make(map[model.Key]*model.Row, len(rows))
	for _, row := range rows {
		byKey[row.Key()] = row
	}

	// Step 1: panel ⟗ coverage.
	leftLen := len(rows)
	for _, rec := range cov {
		key := model.Key{CountryCode: rec.CountryCode, Year: rec.Year}
		row, ok := byKey[key]
		if !ok {
			row = &model.Row{CountryCode: rec.CountryCode, Year: rec.Year}
			byKey[key] = row
			rows = append(rows, row)
			diag.Coverage.RightOnly++
		} else {
			diag.Coverage.Both++
		}

		row.WHORegion = rec.Region
		row.VaxTarget = rec.TargetNumber
		row.VaxDoses = rec.Doses
		row.VaxFdCov = rec.Coverage
	}
	diag.Coverage.LeftOnly = leftLen - diag.Coverage.Both
	diag.Coverage.Total = len(rows)

	zap.L().Info("merge: panel + coverage",
		zap.Int("left_only", diag.Coverage.LeftOnly),
		zap.Int("right_only", diag.Coverage.RightOnly),
		zap.Int("both", diag.Coverage.Both),
		zap.Int("total", diag.Coverage.Total),
	)

	// Step 2: (panel+coverage) ⟗ historical HPV.
	leftLen = len(rows)
	for _, rec := range hist {
		key := model.Key{CountryCode: rec.CountryCode, Year: rec.Year}
		row, ok := byKey[key]
		if !ok {
			row = &model.Row{CountryCode: rec.CountryCode, Year: rec.Year}
			byKey[key] = row
			rows = append(rows, row)
			diag.HPVHistory.RightOnly++
		} else {
			diag.HPVHistory.Both++
		}
		row.OriCov = rec.OriCov
		row.OriAntigen = rec.OriAntigen
	}
	diag.HPVHistory.LeftOnly = leftLen - diag.HPVHistory.Both
	diag.HPVHistory.Total = len(rows)

	zap.L().Info("merge: panel + hpv history",
		zap.Int("left_only", diag.HPVHistory.LeftOnly),
		zap.Int("right_only", diag.HPVHistory.RightOnly),
		zap.Int("both", diag.HPVHistory.Both),
		zap.Int("total", diag.HPVHistory.Total),
	)

	// Redundant-column elimination: string equality over the overlap.
	identical := true
	for _, row := range rows {
		ori := model.CleanCell(row.OriCov)
		who := model.CleanCell(row.VaxFdCov)
		if ori == "" || who == "" {
			continue
		}
		diag.OriCompared++
		if ori != who {
			identical = false
		}
	}
	if identical {
		for _, row := range rows {
			row.OriCov = ""
			row.OriAntigen = ""
		}
		diag.OriDropped = true
	}

	zap.L().Info("merge: ori_dat_* redundancy check",
		zap.Int("compared_rows", diag.OriCompared),
		zap.Bool("dropped", diag.OriDropped),
	)

	SortRows(rows)
	return rows, diag
}
