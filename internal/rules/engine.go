// Package rules applies the ordered imputation rules that reconcile the
// introduction year, the dose label and the first-dose coverage value on the
// analysis window. The rules are an explicit ordered list of
// (predicate, transform) pairs and each pass works on a fresh snapshot of
// the panel, so the order dependence stays auditable.
package rules

import (
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/model"
)

// Rule is one imputation step. Applies is evaluated against the current
// state of the row, after every earlier rule has run, never against the
// original raw values.
type Rule struct {
	Name    string
	Applies func(*model.Row) bool
	Apply   func(*model.Row)
}

// Outcome reports the window restriction and per-rule hit counts.
type Outcome struct {
	RowsIn    int            `json:"rows_in"`
	RowsKept  int            `json:"rows_kept"`
	Countries int            `json:"countries"`
	Hits      map[string]int `json:"hits"`
}

// Engine restricts the panel to the analysis window and runs the rule list.
type Engine struct {
	YearMin int
	YearMax int
	rules   []Rule
}

// New returns an engine over [yearMin, yearMax] with the standard rule
// order D, E, A, B, C, Harmonize. The order is load-bearing: later rules
// read labels earlier rules wrote.
func New(yearMin, yearMax int) *Engine {
	return &Engine{YearMin: yearMin, YearMax: yearMax, rules: Standard()}
}

// Run filters rows to the analysis window and to non-blank gavi_supported,
// then applies each rule in order to a cloned snapshot. The input slice is
// never mutated.
func (e *Engine) Run(rows []*model.Row) ([]*model.Row, Outcome) {
	out := Outcome{RowsIn: len(rows), Hits: map[string]int{}}

	var kept []*model.Row
	countries := map[string]bool{}
	for _, row := range rows {
		if row.Year < e.YearMin || row.Year > e.YearMax {
			continue
		}
		if model.CleanCell(row.GaviSupported) == "" {
			continue
		}
		clone := row.Clone()
		clone.CountryCode = model.NormalizeCode(clone.CountryCode)
		kept = append(kept, clone)
		countries[clone.CountryCode] = true
	}
	out.RowsKept = len(kept)
	out.Countries = len(countries)

	for _, rule := range e.rules {
		next := make([]*model.Row, len(kept))
		hits := 0
		for i, row := range kept {
			clone := row.Clone()
			if rule.Applies(clone) {
				rule.Apply(clone)
				hits++
			}
			next[i] = clone
		}
		kept = next
		out.Hits[rule.Name] = hits
	}

	zap.L().Info("rules: applied",
		zap.Int("rows_in", out.RowsIn),
		zap.Int("rows_kept", out.RowsKept),
		zap.Int("countries", out.Countries),
		zap.Any("hits", out.Hits),
	)
	return kept, out
}
