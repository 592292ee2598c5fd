package source

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/fetcher"
	"github.com/sells-group/vaxpanel/internal/model"
)

// micFillStartYear..micFillEndYear is the window the Gavi MICs-approach list
// overwrites: the published eligibility table stops before the MICs approach
// took effect, so the list supplies those years.
const (
	micFillStartYear = 2022
	micFillEndYear   = 2025
)

// GaviDiag reports the Gavi normalizer's referential diagnostics.
type GaviDiag struct {
	Rows           int      `json:"rows"`
	DuplicateKeys  int      `json:"duplicate_keys"`
	UnmatchedNames []string `json:"unmatched_names,omitempty"`
	MICExisting    []string `json:"mic_existing,omitempty"`
	MICNew         []string `json:"mic_new,omitempty"`
}

// LoadGavi builds the long-format Gavi eligibility history:
//
//  1. read the eligibility table (country_name, year, group), keep-first on
//     duplicate (name, year) keys;
//  2. overlay the MICs-approach list onto years 2022–2025;
//  3. resolve country names to ISO3 codes against the reference sheet,
//     collecting unmatched names as a non-fatal diagnostic.
//
// Countries appear with one record per year they carry a label; the panel
// assembler fills the remaining years of the rectangle with blanks.
func LoadGavi(eligibilityPath, micPath, referencePath string) ([]model.GaviRecord, GaviDiag, error) {
	var diag GaviDiag

	elig, dups, err := loadEligibility(eligibilityPath)
	if err != nil {
		return nil, diag, err
	}
	diag.DuplicateKeys = dups

	mic, err := loadMICList(micPath)
	if err != nil {
		return nil, diag, err
	}

	refs, err := loadGaviReference(referencePath)
	if err != nil {
		return nil, diag, err
	}
	idx := NewNameIndex(refs)

	// Overlay MIC statuses. Track which list members already appear in the
	// eligibility table and which are entirely new.
	for name, status := range mic {
		if _, ok := elig[name]; ok {
			diag.MICExisting = append(diag.MICExisting, name)
		} else {
			diag.MICNew = append(diag.MICNew, name)
			elig[name] = map[int]string{}
		}
		for year := micFillStartYear; year <= micFillEndYear; year++ {
			elig[name][year] = status
		}
	}
	sort.Strings(diag.MICExisting)
	sort.Strings(diag.MICNew)

	var records []model.GaviRecord
	seenUnmatched := map[string]bool{}
	names := make([]string, 0, len(elig))
	for name := range elig {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		code, ok := idx.Resolve(name)
		if !ok {
			if !seenUnmatched[name] {
				seenUnmatched[name] = true
				diag.UnmatchedNames = append(diag.UnmatchedNames, name)
			}
			continue
		}

		byYear := elig[name]
		years := make([]int, 0, len(byYear))
		for year := range byYear {
			years = append(years, year)
		}
		sort.Ints(years)
		for _, year := range years {
			records = append(records, model.GaviRecord{
				CountryCode: code,
				CountryName: name,
				Year:        year,
				Spec:        byYear[year],
			})
		}
	}
	sort.Strings(diag.UnmatchedNames)
	diag.Rows = len(records)

	zap.L().Info("gavi: loaded",
		zap.Int("rows", diag.Rows),
		zap.Int("duplicate_keys", diag.DuplicateKeys),
		zap.Int("unmatched_names", len(diag.UnmatchedNames)),
		zap.Int("mic_existing", len(diag.MICExisting)),
		zap.Int("mic_new", len(diag.MICNew)),
	)
	if len(diag.UnmatchedNames) > 0 {
		zap.L().Warn("gavi: country names without a reference code", zap.Strings("names", diag.UnmatchedNames))
	}

	return records, diag, nil
}

// loadEligibility reads the long eligibility table into name → year → label.
func loadEligibility(path string) (map[string]map[int]string, int, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, errEmpty("gavi eligibility", path)
	}

	colIdx := mapColumns(rows[0])
	if err := requireColumns("gavi eligibility", colIdx, "Country", "Year", "Gavi eligibility group"); err != nil {
		return nil, 0, err
	}

	elig := make(map[string]map[int]string)
	dups := 0
	for _, row := range rows[1:] {
		name := model.CleanCell(getCol(row, colIdx, "Country"))
		year, ok := parseYear(getCol(row, colIdx, "Year"))
		if name == "" || !ok {
			continue
		}
		group := model.CleanCell(getCol(row, colIdx, "Gavi eligibility group"))

		if _, ok := elig[name]; !ok {
			elig[name] = map[int]string{}
		}
		if _, exists := elig[name][year]; exists {
			// Keep first occurrence.
			dups++
			continue
		}
		elig[name][year] = group
	}

	if dups > 0 {
		zap.L().Warn("gavi: duplicate (country, year) keys in eligibility table, keeping first",
			zap.Int("count", dups))
	}
	return elig, dups, nil
}

// loadMICList reads the MICs-approach country list into name → status.
func loadMICList(path string) (map[string]string, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errEmpty("gavi mic list", path)
	}

	colIdx := mapColumns(rows[0])
	if err := requireColumns("gavi mic list", colIdx, "country_name", "gavi_mic_status"); err != nil {
		return nil, err
	}

	mic := make(map[string]string)
	for _, row := range rows[1:] {
		name := model.CleanCell(getCol(row, colIdx, "country_name"))
		status := model.CleanCell(getCol(row, colIdx, "gavi_mic_status"))
		if name == "" || status == "" {
			continue
		}
		if _, ok := mic[name]; !ok {
			mic[name] = status
		}
	}
	return mic, nil
}

// loadGaviReference reads the (country_name, country_code) reference sheet.
func loadGaviReference(path string) ([]NameRef, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errEmpty("gavi reference", path)
	}

	colIdx := mapColumns(rows[0])
	if err := requireColumns("gavi reference", colIdx, "country_name", "country_code"); err != nil {
		return nil, err
	}

	var refs []NameRef
	for _, row := range rows[1:] {
		refs = append(refs, NameRef{
			Name: getCol(row, colIdx, "country_name"),
			Code: getCol(row, colIdx, "country_code"),
		})
	}
	return refs, nil
}
