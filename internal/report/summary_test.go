package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/vaxpanel/internal/model"
)

func covRow(code string, year int, trajectory, income, cov string) *model.Row {
	return &model.Row{
		CountryCode: code,
		Year:        year,
		Trajectory:  trajectory,
		IncomeGroup: income,
		VaxFdCov:    cov,
	}
}

func TestSummarizeByTrajectory(t *testing.T) {
	rows := []*model.Row{
		covRow("AAA", 2020, model.TrajectoryClassicAlways, model.IncomeGroupNonHIC, "40"),
		covRow("BBB", 2020, model.TrajectoryClassicAlways, model.IncomeGroupNonHIC, "60"),
		covRow("CCC", 2020, model.TrajectoryNeverAlways, model.IncomeGroupHIC, "80"),
		covRow("DDD", 2020, model.TrajectoryClassicAlways, model.IncomeGroupNonHIC, ""), // unobserved, excluded
		covRow("AAA", 2021, model.TrajectoryClassicAlways, model.IncomeGroupNonHIC, "50"),
	}

	sheet := summarize(rows, "trajectory", func(r *model.Row) string { return r.Trajectory })

	require.Len(t, sheet, 4) // header + 3 cells
	assert.Equal(t, []string{"year", "trajectory", "n_countries", "n_obs", "mean_cov", "min_cov", "max_cov"}, sheet[0])

	assert.Equal(t, []string{"2020", model.TrajectoryClassicAlways, "2", "2", "50", "40", "60"}, sheet[1])
	assert.Equal(t, []string{"2020", model.TrajectoryNeverAlways, "1", "1", "80", "80", "80"}, sheet[2])
	assert.Equal(t, []string{"2021", model.TrajectoryClassicAlways, "1", "1", "50", "50", "50"}, sheet[3])
}

func TestPanelRowShape(t *testing.T) {
	price := 2.9
	r := &model.Row{
		CountryCode:   "AAA",
		CountryName:   "Alphaland",
		Year:          2020,
		IncomeClass:   "UM",
		GaviSupported: model.GaviSupportedYes,
		VaxFdCov:      "63.5",
		VaxPrice:      &price,
	}
	cells := panelRow(r)

	require.Len(t, cells, len(PanelColumns))
	assert.Equal(t, "AAA", cells[0])
	assert.Equal(t, "2020", cells[2])
	assert.Equal(t, "2.9", cells[25])
	assert.Equal(t, "", cells[26], "nil covariates render empty")
}

func TestPanelRoundTrip(t *testing.T) {
	price, rate, dtp := 2.9, 10.4, 95.0
	rows := []*model.Row{
		{
			CountryCode:      "AAA",
			CountryName:      "Alphaland",
			Year:             2020,
			IncomeClass:      "UM",
			IncomeClassLabel: "UMIC",
			IncomeGroup:      model.IncomeGroupNonHIC,
			GaviSpec:         "initial self-financing",
			GaviSupported:    model.GaviSupportedYes,
			Regime:           model.RegimeClassic,
			EverClassicGavi:  1,
			EverSupported:    1,
			Trajectory:       model.TrajectoryClassicAlways,
			TrajectoryCode:   1,
			WHORegion:        "EUR",
			VaxFdCov:         "63.5",
			DoseLabel:        "2",
			FirstIntroRaw:    "2014",
			MarketSegment:    model.SegmentGavi73,
			VaxPrice:         &price,
			CervicalRate:     &rate,
			DTPFdCov:         &dtp,
			DTPFdSource:      "admin",
		},
		{CountryCode: "BBB", Year: 2021},
	}

	path := filepath.Join(t.TempDir(), "panel.xlsx")
	require.NoError(t, WritePanel(path, "combined_panel", rows))

	got, err := ReadPanel(path, "combined_panel")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, *rows[0], *got[0])
	assert.Equal(t, *rows[1], *got[1])
}

func TestReadPanelMissingFile(t *testing.T) {
	_, err := ReadPanel(filepath.Join(t.TempDir(), "absent.xlsx"), "combined_panel")
	require.Error(t, err)
}
