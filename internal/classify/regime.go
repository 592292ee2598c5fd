package classify

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/model"
)

// RegimeDiag reports the sample restriction and the regime transitions.
type RegimeDiag struct {
	RowsIn        int            `json:"rows_in"`
	RowsKept      int            `json:"rows_kept"`
	RegimeCounts  map[string]int `json:"regime_counts"`
	Transitions   map[string]int `json:"transitions,omitempty"`
	Switchers2122 []Switcher     `json:"switchers_2021_2022,omitempty"`
}

// Switcher is one country whose regime changed between 2021 and 2022.
type Switcher struct {
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	Regime2021  string `json:"regime_2021"`
	Regime2022  string `json:"regime_2022"`
}

// Restrict keeps only rows with an observed numeric first-dose coverage
// value. Regimes and trajectories are defined on the estimation sample, not
// the full panel.
func Restrict(rows []*model.Row) ([]*model.Row, int) {
	var kept []*model.Row
	for _, row := range rows {
		if _, ok := row.CoverageValue(); ok {
			kept = append(kept, row)
		}
	}
	dropped := len(rows) - len(kept)
	zap.L().Info("classify: sample restricted to observed coverage",
		zap.Int("rows_in", len(rows)), zap.Int("rows_kept", len(kept)), zap.Int("dropped", dropped))
	return kept, dropped
}

// ClassifyRegimes assigns the row-level Gavi regime and reports transition
// diagnostics. Never Gavi when the support label says not supported, the
// MICs approach when the year's gavi_spec carries a MIC transition tag,
// Classic Gavi otherwise.
func ClassifyRegimes(rows []*model.Row) RegimeDiag {
	diag := RegimeDiag{RowsIn: len(rows), RegimeCounts: map[string]int{}}

	for _, row := range rows {
		switch {
		case row.GaviSupported == model.GaviSupportedNo:
			row.Regime = model.RegimeNever
		case model.MICTags[model.CleanCell(row.GaviSpec)]:
			row.Regime = model.RegimeMIC
		default:
			row.Regime = model.RegimeClassic
		}
		diag.RegimeCounts[row.Regime]++
	}
	diag.RowsKept = len(rows)

	diag.Transitions, diag.Switchers2122 = regimeTransitions(rows)

	zap.L().Info("classify: regimes assigned",
		zap.Int("rows", diag.RowsKept),
		zap.Any("counts", diag.RegimeCounts),
		zap.Int("countries_with_transitions", len(diag.Transitions)),
		zap.Int("switchers_2021_2022", len(diag.Switchers2122)),
	)
	return diag
}

// regimeTransitions counts year-over-year regime changes per country over
// the years each country actually has, and lists the 2021 to 2022 switchers.
func regimeTransitions(rows []*model.Row) (map[string]int, []Switcher) {
	byCountry := map[string][]*model.Row{}
	for _, row := range rows {
		byCountry[row.CountryCode] = append(byCountry[row.CountryCode], row)
	}

	changes := map[string]int{}
	var switchers []Switcher
	for code, crows := range byCountry {
		sort.Slice(crows, func(i, j int) bool { return crows[i].Year < crows[j].Year })

		regimeByYear := map[int]*model.Row{}
		prev := ""
		for _, row := range crows {
			if prev != "" && row.Regime != prev {
				changes[code]++
			}
			prev = row.Regime
			regimeByYear[row.Year] = row
		}

		r21, ok21 := regimeByYear[2021]
		r22, ok22 := regimeByYear[2022]
		if ok21 && ok22 && r21.Regime != r22.Regime {
			switchers = append(switchers, Switcher{
				CountryCode: code,
				CountryName: r22.CountryName,
				Regime2021:  r21.Regime,
				Regime2022:  r22.Regime,
			})
		}
	}

	sort.Slice(switchers, func(i, j int) bool {
		if switchers[i].Regime2021 != switchers[j].Regime2021 {
			return switchers[i].Regime2021 < switchers[j].Regime2021
		}
		if switchers[i].Regime2022 != switchers[j].Regime2022 {
			return switchers[i].Regime2022 < switchers[j].Regime2022
		}
		return switchers[i].CountryName < switchers[j].CountryName
	})
	return changes, switchers
}
