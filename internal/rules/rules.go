package rules

import (
	"strings"

	"github.com/sells-group/vaxpanel/internal/model"
)

// Standard returns the production rule order. D and E repair the dose label
// from the introduction year, A through C impute coverage values, and the
// final harmonization folds the legacy label spelling into the canonical one.
func Standard() []Rule {
	return []Rule{ruleD(), ruleE(), ruleA(), ruleB(), ruleC(), harmonize()}
}

// ruleD: no introduction year and no numeric coverage means the country has
// reported nothing at all; the dose label records that explicitly.
func ruleD() Rule {
	return Rule{
		Name: "D",
		Applies: func(r *model.Row) bool {
			_, hasIntro := r.IntroYear()
			_, hasCov := r.CoverageValue()
			return !hasIntro && !hasCov
		},
		Apply: func(r *model.Row) {
			r.DoseLabel = model.DoseNoInformation
		},
	}
}

// ruleE: an introduction year with a blank dose label gets the generic
// introduced label so rule B can distinguish introduced-but-unreported rows.
func ruleE() Rule {
	return Rule{
		Name: "E",
		Applies: func(r *model.Row) bool {
			_, hasIntro := r.IntroYear()
			return hasIntro && model.CleanCell(r.DoseLabel) == ""
		},
		Apply: func(r *model.Row) {
			r.DoseLabel = model.DoseIntroduced
		},
	}
}

// ruleA: years before the introduction year are structural zeros, not
// missing data.
func ruleA() Rule {
	return Rule{
		Name: "A",
		Applies: func(r *model.Row) bool {
			intro, ok := r.IntroYear()
			return ok && intro > r.Year
		},
		Apply: func(r *model.Row) {
			r.DoseLabel = model.DoseNotYetIntroduced
			r.VaxFdCov = "0"
		},
	}
}

// ruleB: after introduction, a missing or non-numeric coverage cell is
// treated as zero reported coverage.
func ruleB() Rule {
	return Rule{
		Name: "B",
		Applies: func(r *model.Row) bool {
			intro, ok := r.IntroYear()
			if !ok || intro > r.Year {
				return false
			}
			_, hasCov := r.CoverageValue()
			return !hasCov
		},
		Apply: func(r *model.Row) {
			r.VaxFdCov = "0"
		},
	}
}

// ruleC: rows labeled not-yet-introduced with no introduction year on file
// get their coverage blanked rather than zeroed; there is no introduction to
// anchor a zero to. The label match is case-insensitive here, unlike the
// harmonization step, which matches the exact legacy spelling only.
func ruleC() Rule {
	return Rule{
		Name: "C",
		Applies: func(r *model.Row) bool {
			_, hasIntro := r.IntroYear()
			return !hasIntro &&
				strings.EqualFold(strings.TrimSpace(r.DoseLabel), model.RuleCLabel)
		},
		Apply: func(r *model.Row) {
			r.VaxFdCov = ""
		},
	}
}

// harmonize folds the legacy "Not yet introduced" spelling into the
// no-information label. Exact match only; the underscore spelling rule A
// writes is left alone.
func harmonize() Rule {
	return Rule{
		Name: "Harmonize",
		Applies: func(r *model.Row) bool {
			return r.DoseLabel == model.HarmonizeLabel
		},
		Apply: func(r *model.Row) {
			r.DoseLabel = model.DoseNoInformation
		},
	}
}
