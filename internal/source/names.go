package source

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/vaxpanel/internal/model"
)

// diacriticStripper decomposes and removes combining marks so "Côte
// d’Ivoire" and "Cote d'Ivoire" normalize to the same key.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName folds a country name for matching: trimmed, diacritics
// stripped, case-folded, inner whitespace collapsed.
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	if out, _, err := transform.String(diacriticStripper, s); err == nil {
		s = out
	}
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// nameAliases maps normalized alternate spellings to the normalized names
// the classification lists use.
var nameAliases = map[string]string{
	"north macedonia":                  "northern macedonia",
	"cabo verde":                       "cape verde",
	"micronesia (federated states of)": "micronesia",
}

// ApplyAlias resolves a normalized name through the alias table.
func ApplyAlias(normalized string) string {
	if canonical, ok := nameAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// NameRef is one (country_name, country_code) reference pair.
type NameRef struct {
	Name string
	Code string
}

// NameIndex resolves country names to ISO3 codes against a reference list.
type NameIndex struct {
	byName map[string]string
}

// NewNameIndex builds a resolver from reference (name, code) pairs. Later
// duplicates of the same normalized name are ignored (keep first).
func NewNameIndex(refs []NameRef) *NameIndex {
	idx := &NameIndex{byName: make(map[string]string, len(refs))}
	for _, ref := range refs {
		idx.Add(ref.Name, ref.Code)
	}
	return idx
}

// Add registers a single (name, code) pair.
func (idx *NameIndex) Add(name, code string) {
	key := ApplyAlias(NormalizeName(name))
	if key == "" || code == "" {
		return
	}
	if _, ok := idx.byName[key]; !ok {
		idx.byName[key] = model.NormalizeCode(code)
	}
}

// Resolve returns the ISO3 code for a country name, ok=false when the name
// is not in the reference list. Referential gaps are diagnostics for the
// caller to report, not errors.
func (idx *NameIndex) Resolve(name string) (string, bool) {
	code, ok := idx.byName[ApplyAlias(NormalizeName(name))]
	return code, ok
}
