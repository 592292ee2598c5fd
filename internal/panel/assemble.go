// Package panel builds the balanced country-year panel: the income × Gavi
// outer join, the coverage merges, and the country-level metadata and
// covariate joins. Each stage takes records in and returns the panel rows
// out; diagnostics are returned alongside, never swallowed.
package panel

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/model"
)

// AssembleDiag reports the income × Gavi merge and the balancing result.
type AssembleDiag struct {
	IncomeRows          int      `json:"income_rows"`
	GaviRows            int      `json:"gavi_rows"`
	Both                int      `json:"both"`
	OnlyIncome          int      `json:"only_income"`
	OnlyGavi            int      `json:"only_gavi"`
	Countries           int      `json:"countries"`
	Rows                int      `json:"rows"`
	UnbalancedCountries []string `json:"unbalanced_countries,omitempty"`
	UnnamedCountries    []string `json:"unnamed_countries,omitempty"`
}

// Assemble outer-joins the income and Gavi histories on (country_code, year)
// and balances the result so every observed country code carries exactly one
// row per year in [yearMin, yearMax]. Country names prefer the income
// source, then the Gavi source, then any non-missing name seen for the code.
// gavi_supported is derived from whether gavi_spec is non-blank.
func Assemble(income []model.IncomeRecord, gavi []model.GaviRecord, yearMin, yearMax int) ([]*model.Row, AssembleDiag) {
	diag := AssembleDiag{IncomeRows: len(income), GaviRows: len(gavi)}

	type cell struct {
		incomeName  string
		gaviName    string
		incomeClass string
		gaviSpec    string
		hasIncome   bool
		hasGavi     bool
	}
	merged := make(map[model.Key]*cell)

	for _, rec := range income {
		key := model.Key{CountryCode: model.NormalizeCode(rec.CountryCode), Year: rec.Year}
		if key.CountryCode == "" {
			continue
		}
		c, ok := merged[key]
		if !ok {
			c = &cell{}
			merged[key] = c
		}
		if !c.hasIncome { // keep first on duplicate keys
			c.hasIncome = true
			c.incomeName = rec.CountryName
			c.incomeClass = rec.IncomeClass
		}
	}

	for _, rec := range gavi {
		key := model.Key{CountryCode: model.NormalizeCode(rec.CountryCode), Year: rec.Year}
		if key.CountryCode == "" {
			continue
		}
		c, ok := merged[key]
		if !ok {
			c = &cell{}
			merged[key] = c
		}
		if !c.hasGavi {
			c.hasGavi = true
			c.gaviName = rec.CountryName
			c.gaviSpec = rec.Spec
		}
	}

	// Merge indicator counts plus the per-country name lookup used to fill
	// names on rows the balancing step creates.
	nameByCode := make(map[string]string)
	codes := map[string]bool{}
	for key, c := range merged {
		codes[key.CountryCode] = true
		switch {
		case c.hasIncome && c.hasGavi:
			diag.Both++
		case c.hasIncome:
			diag.OnlyIncome++
		default:
			diag.OnlyGavi++
		}
		if _, ok := nameByCode[key.CountryCode]; !ok {
			name := c.incomeName
			if name == "" {
				name = c.gaviName
			}
			if name != "" {
				nameByCode[key.CountryCode] = name
			}
		}
	}
	// Prefer income names over gavi names across all years of a code.
	for key, c := range merged {
		if c.hasIncome && c.incomeName != "" {
			nameByCode[key.CountryCode] = c.incomeName
		}
	}

	sortedCodes := make([]string, 0, len(codes))
	for code := range codes {
		sortedCodes = append(sortedCodes, code)
	}
	sort.Strings(sortedCodes)

	var rows []*model.Row
	for _, code := range sortedCodes {
		name, hasName := nameByCode[code]
		if !hasName {
			diag.UnnamedCountries = append(diag.UnnamedCountries, code)
		}
		for year := yearMin; year <= yearMax; year++ {
			row := &model.Row{
				CountryCode:   code,
				CountryName:   name,
				Year:          year,
				GaviSupported: model.GaviSupportedNo,
			}
			if c, ok := merged[model.Key{CountryCode: code, Year: year}]; ok {
				row.IncomeClass = c.incomeClass
				row.GaviSpec = c.gaviSpec
			}
			if model.CleanCell(row.GaviSpec) != "" {
				row.GaviSupported = model.GaviSupportedYes
			}
			rows = append(rows, row)
		}
	}

	diag.Countries = len(sortedCodes)
	diag.Rows = len(rows)
	diag.UnbalancedCountries = CheckBalance(rows, yearMin, yearMax)

	zap.L().Info("assemble: panel balanced",
		zap.Int("income_rows", diag.IncomeRows),
		zap.Int("gavi_rows", diag.GaviRows),
		zap.Int("both", diag.Both),
		zap.Int("only_income", diag.OnlyIncome),
		zap.Int("only_gavi", diag.OnlyGavi),
		zap.Int("countries", diag.Countries),
		zap.Int("rows", diag.Rows),
	)
	if len(diag.UnbalancedCountries) > 0 {
		zap.L().Warn("assemble: countries missing expected years", zap.Strings("countries", diag.UnbalancedCountries))
	}
	if len(diag.UnnamedCountries) > 0 {
		zap.L().Warn("assemble: country codes with no resolvable name", zap.Strings("codes", diag.UnnamedCountries))
	}

	return rows, diag
}

// CheckBalance returns every country code whose distinct-year count differs
// from the configured span. An empty result is the panel-balance invariant.
func CheckBalance(rows []*model.Row, yearMin, yearMax int) []string {
	want := yearMax - yearMin + 1
	years := make(map[string]map[int]bool)
	for _, row := range rows {
		if _, ok := years[row.CountryCode]; !ok {
			years[row.CountryCode] = map[int]bool{}
		}
		years[row.CountryCode][row.Year] = true
	}

	var bad []string
	for code, ys := range years {
		if len(ys) != want {
			bad = append(bad, code)
		}
	}
	sort.Strings(bad)
	return bad
}

// SortRows orders the panel by (country_code, year).
func SortRows(rows []*model.Row) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CountryCode != rows[j].CountryCode {
			return rows[i].CountryCode < rows[j].CountryCode
		}
		return rows[i].Year < rows[j].Year
	})
}
