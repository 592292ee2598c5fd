package panel

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/model"
)

// MetadataDiag reports the country-level joins and the constancy validation.
type MetadataDiag struct {
	RowsWithMeta     int                 `json:"rows_with_meta"`
	RowsWithoutMeta  int                 `json:"rows_without_meta"`
	NonConstant      map[string][]string `json:"non_constant,omitempty"`
	CervicalMatched  int                 `json:"cervical_matched"`
	CervicalMissing  int                 `json:"cervical_missing"`
	LowYearCountries []string            `json:"low_year_countries,omitempty"`
}

// minYearRows is the completeness floor the upstream pipeline checks after
// the metadata merge.
const minYearRows = 15

// MergeMetadata left-joins static per-country program metadata and the
// cross-sectional cervical-cancer crude rate onto the panel on country_code
// only, broadcasting values to every year-row. No panel rows are dropped.
// Metadata that varies within a country is a source data error and is
// reported, not raised.
func MergeMetadata(rows []*model.Row, meta []model.MetadataRecord, cerv []model.CervicalRecord) MetadataDiag {
	diag := MetadataDiag{NonConstant: map[string][]string{}}

	metaByCode := make(map[string]model.MetadataRecord, len(meta))
	for _, rec := range meta {
		if _, ok := metaByCode[rec.CountryCode]; !ok {
			metaByCode[rec.CountryCode] = rec
		}
	}
	cervByCode := make(map[string]float64, len(cerv))
	for _, rec := range cerv {
		if _, ok := cervByCode[rec.CountryCode]; !ok {
			cervByCode[rec.CountryCode] = rec.CrudeRate
		}
	}

	for _, row := range rows {
		if rec, ok := metaByCode[row.CountryCode]; ok {
			row.NationalSchedule = rec.NationalSchedule
			row.FirstIntroRaw = rec.IntroYear
			row.DeliveryStrategy = rec.DeliveryStrategy
			row.AgeAdministered = rec.AgeAdministered
			row.SexAdministered = rec.Sex
			row.DoseLabel = rec.IntDoses
			diag.RowsWithMeta++
		} else {
			diag.RowsWithoutMeta++
		}
		if rate, ok := cervByCode[row.CountryCode]; ok {
			v := rate
			row.CervicalRate = &v
			diag.CervicalMatched++
		} else {
			diag.CervicalMissing++
		}
	}

	applyNameFixes(rows)

	diag.NonConstant = CheckMetadataConstancy(rows)
	diag.LowYearCountries = lowYearCountries(rows, minYearRows)

	zap.L().Info("merge: metadata + covariates",
		zap.Int("rows_with_meta", diag.RowsWithMeta),
		zap.Int("rows_without_meta", diag.RowsWithoutMeta),
		zap.Int("cervical_matched", diag.CervicalMatched),
		zap.Int("cervical_missing", diag.CervicalMissing),
	)
	for col, countries := range diag.NonConstant {
		zap.L().Warn("merge: metadata varies within country",
			zap.String("column", col), zap.Strings("countries", countries))
	}
	if len(diag.LowYearCountries) > 0 {
		zap.L().Warn("merge: countries below year-row floor",
			zap.Int("floor", minYearRows), zap.Strings("countries", diag.LowYearCountries))
	}

	return diag
}

// nameFixes corrects country names the upstream extracts carry wrong.
var nameFixes = map[string]string{
	"COK": "Cook Island",
	"NIU": "NIUE",
}

func applyNameFixes(rows []*model.Row) {
	for _, row := range rows {
		if name, ok := nameFixes[row.CountryCode]; ok {
			row.CountryName = name
		}
	}
}

// CheckMetadataConstancy counts distinct non-missing values per country for
// every static metadata column and returns column → countries with more than
// one. These indicate source data errors, not pipeline bugs.
func CheckMetadataConstancy(rows []*model.Row) map[string][]string {
	cols := map[string]func(*model.Row) string{
		"HPV_NATIONAL_SCHEDULE":   func(r *model.Row) string { return r.NationalSchedule },
		"HPV_YEAR_INTRODUCTION":   func(r *model.Row) string { return r.FirstIntroRaw },
		"HPV_PRIM_DELIV_STRATEGY": func(r *model.Row) string { return r.DeliveryStrategy },
		"HPV_AGEADMINISTERED":     func(r *model.Row) string { return r.AgeAdministered },
		"HPV_SEX":                 func(r *model.Row) string { return r.SexAdministered },
	}

	out := map[string][]string{}
	for col, get := range cols {
		distinct := map[string]map[string]bool{}
		for _, row := range rows {
			v := model.CleanCell(get(row))
			if v == "" {
				continue
			}
			if _, ok := distinct[row.CountryCode]; !ok {
				distinct[row.CountryCode] = map[string]bool{}
			}
			distinct[row.CountryCode][v] = true
		}
		var bad []string
		for code, vals := range distinct {
			if len(vals) > 1 {
				bad = append(bad, code)
			}
		}
		if len(bad) > 0 {
			sort.Strings(bad)
			out[col] = bad
		}
	}
	return out
}

func lowYearCountries(rows []*model.Row, floor int) []string {
	years := map[string]map[int]bool{}
	for _, row := range rows {
		if _, ok := years[row.CountryCode]; !ok {
			years[row.CountryCode] = map[int]bool{}
		}
		years[row.CountryCode][row.Year] = true
	}
	var low []string
	for code, ys := range years {
		if len(ys) < floor {
			low = append(low, code)
		}
	}
	sort.Strings(low)
	return low
}
