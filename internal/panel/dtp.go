package panel

import (
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/model"
)

// DTPDiag reports one DTP comparator merge.
type DTPDiag struct {
	Rows          int `json:"rows"`
	WithCoverage  int `json:"with_coverage"`
	MissingDTP    int `json:"missing_dtp"`
	CountriesWith int `json:"countries_with_dtp"`
}

// MergeDTPFirst left-joins DTP first-dose coverage onto the panel on
// (country_code, year). Many panel rows map to at most one DTP row; panel
// rows are never dropped.
func MergeDTPFirst(rows []*model.Row, dtp []model.DTPRecord) DTPDiag {
	return mergeDTP(rows, dtp, "dtp_fd", func(row *model.Row, rec model.DTPRecord) {
		row.DTPFdCov = rec.Coverage
		row.DTPFdSource = rec.Source
	}, func(row *model.Row) bool { return row.DTPFdCov != nil })
}

// MergeDTPLast left-joins DTP last(third)-dose coverage onto the panel.
func MergeDTPLast(rows []*model.Row, dtp []model.DTPRecord) DTPDiag {
	return mergeDTP(rows, dtp, "dtp_ld", func(row *model.Row, rec model.DTPRecord) {
		row.DTPLdCov = rec.Coverage
		row.DTPLdSource = rec.Source
	}, func(row *model.Row) bool { return row.DTPLdCov != nil })
}

func mergeDTP(rows []*model.Row, dtp []model.DTPRecord, label string, set func(*model.Row, model.DTPRecord), has func(*model.Row) bool) DTPDiag {
	byKey := make(map[model.Key]model.DTPRecord, len(dtp))
	for _, rec := range dtp {
		key := model.Key{CountryCode: rec.CountryCode, Year: rec.Year}
		if _, ok := byKey[key]; !ok {
			byKey[key] = rec
		}
	}

	diag := DTPDiag{Rows: len(rows)}
	countries := map[string]bool{}
	for _, row := range rows {
		if rec, ok := byKey[row.Key()]; ok {
			set(row, rec)
		}
		if has(row) {
			diag.WithCoverage++
			countries[row.CountryCode] = true
		} else {
			diag.MissingDTP++
		}
	}
	diag.CountriesWith = len(countries)

	zap.L().Info("merge: dtp comparator",
		zap.String("series", label),
		zap.Int("rows", diag.Rows),
		zap.Int("with_coverage", diag.WithCoverage),
		zap.Int("missing", diag.MissingDTP),
		zap.Int("countries", diag.CountriesWith),
	)
	return diag
}
