package report

import (
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/fetcher"
	"github.com/sells-group/vaxpanel/internal/model"
)

// PanelColumns is the column order of the final dataset sheet.
var PanelColumns = []string{
	"country_code",
	"country_name",
	"year",
	"income_class",
	"income_class_lbl",
	"income_group",
	"hic_flag",
	"gavi_spec",
	"gavi_supported",
	"gavi_regime_it",
	"ever_classic_gavi",
	"ever_supported_by_gavi",
	"gavi_trajectory",
	"gavi_trajectory_code",
	"who_region",
	"vax_target_number",
	"vax_doses",
	"vax_fd_cov",
	"vax_int_doses",
	"vax_national_schedule",
	"vax_year_introduction",
	"vax_deliv_strategy",
	"vax_age_administered",
	"vax_sex_administered",
	"vax_market_segment",
	"vax_price_2024",
	"cc_crude_rate_2022",
	"dtp_fd_cov",
	"dtp_data_source",
	"dtp_ld_cov",
	"dtp_data_source_ld",
}

// WritePanel writes the panel rows as one XLSX sheet in PanelColumns order.
func WritePanel(path, sheet string, rows []*model.Row) error {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, PanelColumns)
	for _, row := range rows {
		out = append(out, panelRow(row))
	}
	if err := fetcher.WriteXLSX(path, sheet, out); err != nil {
		return err
	}
	zap.L().Info("report: panel written",
		zap.String("path", path), zap.Int("rows", len(rows)))
	return nil
}

func panelRow(r *model.Row) []string {
	return []string{
		r.CountryCode,
		r.CountryName,
		strconv.Itoa(r.Year),
		r.IncomeClass,
		r.IncomeClassLabel,
		r.IncomeGroup,
		strconv.Itoa(r.HICFlag),
		r.GaviSpec,
		r.GaviSupported,
		r.Regime,
		strconv.Itoa(r.EverClassicGavi),
		strconv.Itoa(r.EverSupported),
		r.Trajectory,
		strconv.Itoa(r.TrajectoryCode),
		r.WHORegion,
		r.VaxTarget,
		r.VaxDoses,
		r.VaxFdCov,
		r.DoseLabel,
		r.NationalSchedule,
		r.FirstIntroRaw,
		r.DeliveryStrategy,
		r.AgeAdministered,
		r.SexAdministered,
		r.MarketSegment,
		floatCell(r.VaxPrice),
		floatCell(r.CervicalRate),
		floatCell(r.DTPFdCov),
		r.DTPFdSource,
		floatCell(r.DTPLdCov),
		r.DTPLdSource,
	}
}

func floatCell(p *float64) string {
	if p == nil {
		return ""
	}
	return formatFloat(*p)
}

// ReadPanel parses a workbook previously written by WritePanel back into
// panel rows, letting the classification stage resume from the combined
// intermediate instead of the raw extracts.
func ReadPanel(path, sheet string) ([]*model.Row, error) {
	raw, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: sheet})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, eris.Errorf("report: panel %s is empty", path)
	}

	cell := func(row []string, i int) string {
		if i >= len(row) {
			return ""
		}
		return row[i]
	}
	intCell := func(row []string, i int) int {
		v, _ := strconv.Atoi(cell(row, i))
		return v
	}
	floatPtr := func(row []string, i int) *float64 {
		s := cell(row, i)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &v
	}

	var rows []*model.Row
	for _, rec := range raw[1:] {
		year, err := strconv.Atoi(cell(rec, 2))
		if err != nil {
			return nil, eris.Wrapf(err, "report: bad year in %s", path)
		}
		rows = append(rows, &model.Row{
			CountryCode:      cell(rec, 0),
			CountryName:      cell(rec, 1),
			Year:             year,
			IncomeClass:      cell(rec, 3),
			IncomeClassLabel: cell(rec, 4),
			IncomeGroup:      cell(rec, 5),
			HICFlag:          intCell(rec, 6),
			GaviSpec:         cell(rec, 7),
			GaviSupported:    cell(rec, 8),
			Regime:           cell(rec, 9),
			EverClassicGavi:  intCell(rec, 10),
			EverSupported:    intCell(rec, 11),
			Trajectory:       cell(rec, 12),
			TrajectoryCode:   intCell(rec, 13),
			WHORegion:        cell(rec, 14),
			VaxTarget:        cell(rec, 15),
			VaxDoses:         cell(rec, 16),
			VaxFdCov:         cell(rec, 17),
			DoseLabel:        cell(rec, 18),
			NationalSchedule: cell(rec, 19),
			FirstIntroRaw:    cell(rec, 20),
			DeliveryStrategy: cell(rec, 21),
			AgeAdministered:  cell(rec, 22),
			SexAdministered:  cell(rec, 23),
			MarketSegment:    cell(rec, 24),
			VaxPrice:         floatPtr(rec, 25),
			CervicalRate:     floatPtr(rec, 26),
			DTPFdCov:         floatPtr(rec, 27),
			DTPFdSource:      cell(rec, 28),
			DTPLdCov:         floatPtr(rec, 29),
			DTPLdSource:      cell(rec, 30),
		})
	}
	return rows, nil
}
