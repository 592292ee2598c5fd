package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/vaxpanel/internal/model"
)

func mkRow(code string, year int, mut func(*model.Row)) *model.Row {
	r := &model.Row{
		CountryCode:   code,
		CountryName:   code,
		Year:          year,
		GaviSupported: model.GaviSupportedNo,
	}
	if mut != nil {
		mut(r)
	}
	return r
}

func TestApplyIncome(t *testing.T) {
	tests := []struct {
		class string
		label string
		group string
		flag  int
	}{
		{"H", "HIC", model.IncomeGroupHIC, 1},
		{"UM", "UMIC", model.IncomeGroupNonHIC, 0},
		{"LM", "LMIC", model.IncomeGroupNonHIC, 0},
		{"L", "LIC", model.IncomeGroupNonHIC, 0},
		{"", "", model.IncomeGroupNonHIC, 0},
		{"n/a", "", model.IncomeGroupNonHIC, 0},
	}
	for _, tt := range tests {
		row := mkRow("AAA", 2020, func(r *model.Row) { r.IncomeClass = tt.class })
		ApplyIncome([]*model.Row{row})
		assert.Equal(t, tt.label, row.IncomeClassLabel, "class %q", tt.class)
		assert.Equal(t, tt.group, row.IncomeGroup, "class %q", tt.class)
		assert.Equal(t, tt.flag, row.HICFlag, "class %q", tt.class)
	}
}

func TestRestrictKeepsObservedCoverageOnly(t *testing.T) {
	rows := []*model.Row{
		mkRow("AAA", 2020, func(r *model.Row) { r.VaxFdCov = "55" }),
		mkRow("AAA", 2021, func(r *model.Row) { r.VaxFdCov = "" }),
		mkRow("AAA", 2022, func(r *model.Row) { r.VaxFdCov = "n/a" }),
		mkRow("AAA", 2023, func(r *model.Row) { r.VaxFdCov = "pending" }),
		mkRow("AAA", 2024, func(r *model.Row) { r.VaxFdCov = "0" }),
	}
	kept, dropped := Restrict(rows)

	require.Len(t, kept, 2)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, 2020, kept[0].Year)
	assert.Equal(t, 2024, kept[1].Year)
}

func TestClassifyRegimes(t *testing.T) {
	never := mkRow("AAA", 2020, nil)
	mic := mkRow("BBB", 2020, func(r *model.Row) {
		r.GaviSupported = model.GaviSupportedYes
		r.GaviSpec = "mic_former_gavi"
	})
	micNever := mkRow("CCC", 2020, func(r *model.Row) {
		r.GaviSupported = model.GaviSupportedYes
		r.GaviSpec = "mic_never_gavi"
	})
	classic := mkRow("DDD", 2020, func(r *model.Row) {
		r.GaviSupported = model.GaviSupportedYes
		r.GaviSpec = "initial self-financing"
	})

	diag := ClassifyRegimes([]*model.Row{never, mic, micNever, classic})

	assert.Equal(t, model.RegimeNever, never.Regime)
	assert.Equal(t, model.RegimeMIC, mic.Regime)
	assert.Equal(t, model.RegimeMIC, micNever.Regime)
	assert.Equal(t, model.RegimeClassic, classic.Regime)
	assert.Equal(t, 2, diag.RegimeCounts[model.RegimeMIC])
}

func TestRegimeTransitionDiagnostics(t *testing.T) {
	rows := []*model.Row{
		mkRow("AAA", 2020, func(r *model.Row) { r.GaviSupported = model.GaviSupportedYes; r.GaviSpec = "poorest" }),
		mkRow("AAA", 2021, func(r *model.Row) { r.GaviSupported = model.GaviSupportedYes; r.GaviSpec = "poorest" }),
		mkRow("AAA", 2022, func(r *model.Row) {
			r.CountryName = "Alphaland"
			r.GaviSupported = model.GaviSupportedYes
			r.GaviSpec = "mic_former_gavi"
		}),
		mkRow("BBB", 2021, nil),
		mkRow("BBB", 2022, nil),
	}
	diag := ClassifyRegimes(rows)

	assert.Equal(t, map[string]int{"AAA": 1}, diag.Transitions)
	require.Len(t, diag.Switchers2122, 1)
	assert.Equal(t, "AAA", diag.Switchers2122[0].CountryCode)
	assert.Equal(t, "Alphaland", diag.Switchers2122[0].CountryName)
	assert.Equal(t, model.RegimeClassic, diag.Switchers2122[0].Regime2021)
	assert.Equal(t, model.RegimeMIC, diag.Switchers2122[0].Regime2022)
}

func TestAssignTrajectories(t *testing.T) {
	rows := []*model.Row{
		// Classic always.
		mkRow("AAA", 2020, func(r *model.Row) { r.GaviSupported = model.GaviSupportedYes; r.Regime = model.RegimeClassic }),
		mkRow("AAA", 2021, func(r *model.Row) { r.GaviSupported = model.GaviSupportedYes; r.Regime = model.RegimeClassic }),
		// Graduated: classic then MIC.
		mkRow("BBB", 2020, func(r *model.Row) { r.GaviSupported = model.GaviSupportedYes; r.Regime = model.RegimeClassic }),
		mkRow("BBB", 2021, func(r *model.Row) { r.GaviSupported = model.GaviSupportedYes; r.Regime = model.RegimeMIC }),
		// MICs entry: supported but never classic.
		mkRow("CCC", 2020, func(r *model.Row) { r.GaviSupported = model.GaviSupportedYes; r.Regime = model.RegimeMIC }),
		// Never always.
		mkRow("DDD", 2020, func(r *model.Row) { r.Regime = model.RegimeNever }),
	}
	counts, err := AssignTrajectories(rows)
	require.NoError(t, err)

	assert.Equal(t, model.TrajectoryClassicAlways, rows[0].Trajectory)
	assert.Equal(t, 1, rows[0].TrajectoryCode)
	assert.Equal(t, model.TrajectoryGraduated, rows[2].Trajectory)
	assert.Equal(t, 2, rows[3].TrajectoryCode)
	assert.Equal(t, model.TrajectoryMICEntry, rows[4].Trajectory)
	assert.Equal(t, 3, rows[4].TrajectoryCode)
	assert.Equal(t, model.TrajectoryNeverAlways, rows[5].Trajectory)
	assert.Equal(t, 4, rows[5].TrajectoryCode)

	assert.Equal(t, 1, rows[0].EverClassicGavi)
	assert.Equal(t, 1, rows[0].EverSupported)
	assert.Equal(t, 0, rows[5].EverClassicGavi)
	assert.Equal(t, 0, rows[5].EverSupported)

	assert.Equal(t, 2, counts[model.TrajectoryClassicAlways])
	assert.Equal(t, 2, counts[model.TrajectoryGraduated])
}

func TestTrajectoryIdenticalAcrossCountryRows(t *testing.T) {
	rows := []*model.Row{
		mkRow("BBB", 2019, func(r *model.Row) { r.GaviSupported = model.GaviSupportedYes; r.Regime = model.RegimeClassic }),
		mkRow("BBB", 2020, func(r *model.Row) { r.GaviSupported = model.GaviSupportedYes; r.Regime = model.RegimeClassic }),
		mkRow("BBB", 2021, func(r *model.Row) { r.GaviSupported = model.GaviSupportedYes; r.Regime = model.RegimeMIC }),
		mkRow("BBB", 2022, func(r *model.Row) { r.GaviSupported = model.GaviSupportedYes; r.Regime = model.RegimeClassic }),
	}
	_, err := AssignTrajectories(rows)
	require.NoError(t, err)

	for _, row := range rows {
		assert.Equal(t, model.TrajectoryGraduated, row.Trajectory)
		assert.Equal(t, 2, row.TrajectoryCode)
	}
}

func TestSegmenterPrecedence(t *testing.T) {
	seg, err := NewSegmenter()
	require.NoError(t, err)

	tests := []struct {
		name    string
		mut     func(*model.Row)
		segment string
	}{
		{
			"name list wins over gavi status",
			func(r *model.Row) { r.CountryName = "Botswana"; r.GaviSpec = "mic_former_gavi" },
			model.SegmentMICs4,
		},
		{
			"mics5 by name",
			func(r *model.Row) { r.CountryName = "Fiji" },
			model.SegmentMICs5,
		},
		{
			"mics6 via alias spelling",
			func(r *model.Row) { r.CountryName = "North Macedonia" },
			model.SegmentMICs6,
		},
		{
			"former marker exact",
			func(r *model.Row) { r.CountryName = "Otherland"; r.GaviSpec = "MIC_FORMER_GAVI" },
			model.SegmentGavi731,
		},
		{
			"former marker substring",
			func(r *model.Row) { r.CountryName = "Otherland"; r.GaviSpec = "Gavi fully self-financing phase" },
			model.SegmentGavi731,
		},
		{
			"any other gavi status",
			func(r *model.Row) { r.CountryName = "Otherland"; r.GaviSpec = "preparatory transition" },
			model.SegmentGavi73,
		},
		{
			"no gavi, high income",
			func(r *model.Row) { r.CountryName = "Richland"; r.IncomeClass = "H" },
			model.SegmentHIC,
		},
		{
			"no gavi, middle income",
			func(r *model.Row) { r.CountryName = "Middleland"; r.IncomeClass = "UM" },
			model.SegmentMICs7,
		},
		{
			"no gavi, low income",
			func(r *model.Row) { r.CountryName = "Lowland"; r.IncomeClass = "L" },
			model.SegmentNC,
		},
		{
			"no gavi, no income",
			func(r *model.Row) { r.CountryName = "Nowhere" },
			model.SegmentNC,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := mkRow("AAA", 2024, tt.mut)
			seg.Assign([]*model.Row{row})
			assert.Equal(t, tt.segment, row.MarketSegment)
		})
	}
}

func TestSegmenterPricing(t *testing.T) {
	seg, err := NewSegmenter()
	require.NoError(t, err)

	priced := map[string]float64{
		model.SegmentGavi73:  2.9,
		model.SegmentGavi731: 2.9,
		model.SegmentMICs5:   2.9,
		model.SegmentMICs6:   4.5,
		model.SegmentMICs4:   20.125,
		model.SegmentMICs7:   23.375,
	}

	rows := []*model.Row{
		mkRow("AAA", 2024, func(r *model.Row) { r.CountryName = "Botswana" }),                            // MICs4
		mkRow("BBB", 2024, func(r *model.Row) { r.CountryName = "Fiji" }),                                // MICs5
		mkRow("CCC", 2024, func(r *model.Row) { r.CountryName = "Serbia" }),                              // MICs6
		mkRow("DDD", 2024, func(r *model.Row) { r.CountryName = "X"; r.GaviSpec = "mic_former_gavi" }),   // gavi731
		mkRow("EEE", 2024, func(r *model.Row) { r.CountryName = "X"; r.GaviSpec = "poorest" }),           // Gavi73
		mkRow("FFF", 2024, func(r *model.Row) { r.CountryName = "X"; r.IncomeClass = "LM" }),             // MICs7
		mkRow("GGG", 2024, func(r *model.Row) { r.CountryName = "X"; r.IncomeClass = "H" }),              // HIC
		mkRow("HHH", 2024, func(r *model.Row) { r.CountryName = "X" }),                                   // NC
	}
	seg.Assign(rows)

	for _, row := range rows {
		want, hasPrice := priced[row.MarketSegment]
		if hasPrice {
			require.NotNil(t, row.VaxPrice, "segment %s", row.MarketSegment)
			assert.Equal(t, want, *row.VaxPrice, "segment %s", row.MarketSegment)
		} else {
			assert.Nil(t, row.VaxPrice, "segment %s must carry no price", row.MarketSegment)
		}
	}
}

func TestHighIncomeNeverGaviScenario(t *testing.T) {
	// A high-income country with no Gavi history in any year classifies HIC,
	// gets no price, and trajectory Never Gavi (always).
	seg, err := NewSegmenter()
	require.NoError(t, err)

	var rows []*model.Row
	for year := 2015; year <= 2024; year++ {
		rows = append(rows, mkRow("ABC", year, func(r *model.Row) {
			r.CountryName = "Abcland"
			r.IncomeClass = "H"
			r.VaxFdCov = "80"
		}))
	}

	ApplyIncome(rows)
	ClassifyRegimes(rows)
	_, err = AssignTrajectories(rows)
	require.NoError(t, err)
	seg.Assign(rows)

	for _, row := range rows {
		assert.Equal(t, model.IncomeGroupHIC, row.IncomeGroup)
		assert.Equal(t, model.SegmentHIC, row.MarketSegment)
		assert.Nil(t, row.VaxPrice)
		assert.Equal(t, model.TrajectoryNeverAlways, row.Trajectory)
	}
}
