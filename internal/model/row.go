package model

import (
	"strconv"
	"strings"
)

// Key identifies one country-year cell of the panel.
type Key struct {
	CountryCode string
	Year        int
}

// Row is the atomic record of the country-year panel. Exactly one Row exists
// per (CountryCode, Year) for every year in the configured range once the
// panel is balanced.
//
// Coverage and introduction-year cells keep the source value verbatim as
// strings: the rule engine needs to distinguish "missing" from "non-numeric",
// and the redundant-column check compares cells as strings to avoid
// floating-point false negatives.
type Row struct {
	CountryCode string
	CountryName string
	Year        int

	// Time-varying source attributes.
	IncomeClass   string // H, UM, LM, L, or "" when unclassified
	GaviSpec      string // raw Gavi eligibility label, "" when none
	GaviSupported string // GaviSupportedYes / GaviSupportedNo

	// WHO coverage extract.
	WHORegion string
	VaxTarget string
	VaxDoses  string
	VaxFdCov  string // HPV first-dose coverage, raw cell

	// Historical HPV extract (dropped when proven redundant).
	OriCov     string
	OriAntigen string

	// Static vaccine-program metadata, broadcast per country.
	NationalSchedule string
	FirstIntroRaw    string // HPV introduction year, raw cell
	DeliveryStrategy string
	AgeAdministered  string
	SexAdministered  string
	DoseLabel        string // HPV_INT_DOSES

	// Covariates.
	CervicalRate *float64
	DTPFdCov     *float64
	DTPFdSource  string
	DTPLdCov     *float64
	DTPLdSource  string

	// Derived classifications.
	IncomeClassLabel string
	IncomeGroup      string
	HICFlag          int
	Regime           string
	EverClassicGavi  int
	EverSupported    int
	Trajectory       string
	TrajectoryCode   int
	MarketSegment    string
	VaxPrice         *float64
}

// Key returns the row's panel key.
func (r *Row) Key() Key {
	return Key{CountryCode: r.CountryCode, Year: r.Year}
}

// IntroYear parses the raw introduction-year cell. ok is false when the cell
// is missing or non-numeric.
func (r *Row) IntroYear() (int, bool) {
	return parseYearCell(r.FirstIntroRaw)
}

// CoverageValue parses the raw first-dose coverage cell. ok is false when the
// cell is missing or non-numeric.
func (r *Row) CoverageValue() (float64, bool) {
	s := CleanCell(r.VaxFdCov)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Clone returns a deep copy of the row. The rule engine operates on cloned
// snapshots so each pass is auditable in isolation.
func (r *Row) Clone() *Row {
	c := *r
	c.CervicalRate = cloneFloat(r.CervicalRate)
	c.DTPFdCov = cloneFloat(r.DTPFdCov)
	c.DTPLdCov = cloneFloat(r.DTPLdCov)
	c.VaxPrice = cloneFloat(r.VaxPrice)
	return &c
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func parseYearCell(s string) (int, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}
	// Excel frequently serializes years as floats ("2018.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		y := int(f)
		if float64(y) == f {
			return y, true
		}
		return 0, false
	}
	return 0, false
}

// CleanCell trims a cell and maps the N/A sentinels the source files use to
// the empty string.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "n/a", "na", "nan":
		return ""
	}
	return s
}

// NormalizeCode upper-cases and trims an ISO3 country code so case and
// whitespace never cause key mismatches across joins.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
