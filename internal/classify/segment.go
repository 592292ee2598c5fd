package classify

import (
	_ "embed"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/vaxpanel/internal/model"
	"github.com/sells-group/vaxpanel/internal/source"
)

//go:embed segments.yaml
var segmentsYAML []byte

type segmentConfig struct {
	MICs4         []string `yaml:"mics4"`
	MICs5         []string `yaml:"mics5"`
	MICs6         []string `yaml:"mics6"`
	FormerMarkers struct {
		Exact     []string `yaml:"exact"`
		Substring []string `yaml:"substring"`
	} `yaml:"former_markers"`
	Prices map[string]float64 `yaml:"prices"`
}

// Segmenter assigns the 2024 pricing tier and price to panel rows.
type Segmenter struct {
	mics4, mics5, mics6 map[string]bool
	formerExact         map[string]bool
	formerSubstring     []string
	prices              map[string]float64
}

// NewSegmenter parses the embedded reference lists. Name lists are stored
// normalized so matching tolerates case, diacritics and alias spellings.
func NewSegmenter() (*Segmenter, error) {
	var cfg segmentConfig
	if err := yaml.Unmarshal(segmentsYAML, &cfg); err != nil {
		return nil, eris.Wrap(err, "segments: parse embedded reference data")
	}
	if len(cfg.Prices) == 0 {
		return nil, eris.New("segments: embedded reference data has no prices")
	}

	s := &Segmenter{
		mics4:       nameSet(cfg.MICs4),
		mics5:       nameSet(cfg.MICs5),
		mics6:       nameSet(cfg.MICs6),
		formerExact: map[string]bool{},
		prices:      cfg.Prices,
	}
	for _, m := range cfg.FormerMarkers.Exact {
		s.formerExact[strings.ToLower(strings.TrimSpace(m))] = true
	}
	for _, m := range cfg.FormerMarkers.Substring {
		s.formerSubstring = append(s.formerSubstring, strings.ToLower(strings.TrimSpace(m)))
	}
	return s, nil
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		key := source.ApplyAlias(source.NormalizeName(name))
		if key != "" {
			set[key] = true
		}
	}
	return set
}

// Assign sets vax_market_segment and vax_price_2024 on every row.
//
// Precedence: explicit name-list membership, then the transitioned-out
// marker in the year's Gavi status, then generic Gavi membership, then the
// income-class fallback for countries outside Gavi entirely. HIC and NC
// carry no price; that is the pricing model, not missing data.
func (s *Segmenter) Assign(rows []*model.Row) map[string]int {
	counts := map[string]int{}
	for _, row := range rows {
		row.MarketSegment = s.segmentFor(row)
		if price, ok := s.prices[row.MarketSegment]; ok {
			v := price
			row.VaxPrice = &v
		} else {
			row.VaxPrice = nil
		}
		counts[row.MarketSegment]++
	}

	zap.L().Info("classify: market segments assigned", zap.Any("counts", counts))
	return counts
}

func (s *Segmenter) segmentFor(row *model.Row) string {
	name := source.ApplyAlias(source.NormalizeName(row.CountryName))
	switch {
	case s.mics4[name]:
		return model.SegmentMICs4
	case s.mics5[name]:
		return model.SegmentMICs5
	case s.mics6[name]:
		return model.SegmentMICs6
	}

	spec := strings.ToLower(model.CleanCell(row.GaviSpec))
	if spec != "" {
		if s.formerExact[spec] {
			return model.SegmentGavi731
		}
		for _, marker := range s.formerSubstring {
			if strings.Contains(spec, marker) {
				return model.SegmentGavi731
			}
		}
		return model.SegmentGavi73
	}

	switch model.CleanCell(row.IncomeClass) {
	case "H":
		return model.SegmentHIC
	case "LM", "UM":
		return model.SegmentMICs7
	default:
		return model.SegmentNC
	}
}
