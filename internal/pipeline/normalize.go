package pipeline

import (
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/fetcher"
	"github.com/sells-group/vaxpanel/internal/model"
)

// NormalizedSources lists the writable normalizer outputs by name.
var NormalizedSources = []string{
	"income", "gavi", "coverage", "hpvhist", "metadata", "cervical", "dtp_fd", "dtp_ld",
}

// WriteNormalized writes long-format normalizer outputs to the intermediate
// directory, one workbook per source. These are what a human checks when a
// join diagnostic looks wrong. With no names given, every source is written.
func (p *Pipeline) WriteNormalized(src *Sources, only ...string) ([]string, error) {
	names := only
	if len(names) == 0 {
		names = NormalizedSources
	}

	var paths []string
	for _, name := range names {
		rows, err := p.normalizedRows(src, name)
		if err != nil {
			return nil, err
		}

		path := filepath.Join(p.cfg.Paths.IntermDir, "normalized_"+name+".xlsx")
		if err := fetcher.WriteXLSX(path, name, rows); err != nil {
			return nil, err
		}
		paths = append(paths, path)

		zap.L().Info("normalize: source written",
			zap.String("source", name),
			zap.String("path", path),
			zap.Int("rows", len(rows)-1),
		)
	}
	return paths, nil
}

func (p *Pipeline) normalizedRows(src *Sources, name string) ([][]string, error) {
	switch name {
	case "income":
		out := [][]string{{"country_code", "country_name", "year", "income_class"}}
		for _, rec := range src.Income {
			out = append(out, []string{rec.CountryCode, rec.CountryName, strconv.Itoa(rec.Year), rec.IncomeClass})
		}
		return out, nil
	case "gavi":
		out := [][]string{{"country_code", "country_name", "year", "gavi_spec"}}
		for _, rec := range src.Gavi {
			out = append(out, []string{rec.CountryCode, rec.CountryName, strconv.Itoa(rec.Year), rec.Spec})
		}
		return out, nil
	case "coverage":
		out := [][]string{{"country_code", "country_name", "year", "who_region", "vax_target_number", "vax_doses", "vax_fd_cov"}}
		for _, rec := range src.Coverage {
			out = append(out, []string{rec.CountryCode, rec.CountryName, strconv.Itoa(rec.Year), rec.Region, rec.TargetNumber, rec.Doses, rec.Coverage})
		}
		return out, nil
	case "hpvhist":
		out := [][]string{{"country_code", "year", "ori_dat_cov", "ori_dat_antigen"}}
		for _, rec := range src.History {
			out = append(out, []string{rec.CountryCode, strconv.Itoa(rec.Year), rec.OriCov, rec.OriAntigen})
		}
		return out, nil
	case "metadata":
		out := [][]string{{"country_code", "vax_national_schedule", "vax_year_introduction", "vax_deliv_strategy", "vax_age_administered", "vax_sex_administered", "vax_int_doses"}}
		for _, rec := range src.Metadata {
			out = append(out, []string{rec.CountryCode, rec.NationalSchedule, rec.IntroYear, rec.DeliveryStrategy, rec.AgeAdministered, rec.Sex, rec.IntDoses})
		}
		return out, nil
	case "cervical":
		out := [][]string{{"country_code", "cc_crude_rate_2022"}}
		for _, rec := range src.Cervical {
			out = append(out, []string{rec.CountryCode, strconv.FormatFloat(rec.CrudeRate, 'f', -1, 64)})
		}
		return out, nil
	case "dtp_fd":
		return dtpRows(src.DTPFirst, "dtp_fd_cov", "dtp_data_source"), nil
	case "dtp_ld":
		return dtpRows(src.DTPLast, "dtp_ld_cov", "dtp_data_source_ld"), nil
	default:
		return nil, eris.Errorf("normalize: unknown source %q", name)
	}
}

func dtpRows(records []model.DTPRecord, covCol, sourceCol string) [][]string {
	out := [][]string{{"country_code", "year", covCol, sourceCol}}
	for _, rec := range records {
		cov := ""
		if rec.Coverage != nil {
			cov = strconv.FormatFloat(*rec.Coverage, 'f', -1, 64)
		}
		out = append(out, []string{rec.CountryCode, strconv.Itoa(rec.Year), cov, rec.Source})
	}
	return out
}

// ReadNormalized loads the normalizer outputs previously written by
// WriteNormalized, so the assemble stage can run without re-reading the raw
// extracts.
func ReadNormalized(intermDir string) (*Sources, error) {
	src := &Sources{}
	for _, name := range NormalizedSources {
		path := filepath.Join(intermDir, "normalized_"+name+".xlsx")
		rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
		if err != nil {
			return nil, eris.Wrapf(err, "normalize: read %s (run `vaxpanel normalize` first)", name)
		}
		if len(rows) < 1 {
			return nil, eris.Errorf("normalize: %s is empty", path)
		}
		if err := parseNormalized(src, name, rows[1:]); err != nil {
			return nil, err
		}
	}
	return src, nil
}

func parseNormalized(src *Sources, name string, rows [][]string) error {
	cell := func(row []string, i int) string {
		if i >= len(row) {
			return ""
		}
		return row[i]
	}
	year := func(row []string, i int) (int, error) {
		y, err := strconv.Atoi(cell(row, i))
		if err != nil {
			return 0, eris.Wrapf(err, "normalize: bad year in %s", name)
		}
		return y, nil
	}

	for _, row := range rows {
		switch name {
		case "income":
			y, err := year(row, 2)
			if err != nil {
				return err
			}
			src.Income = append(src.Income, model.IncomeRecord{
				CountryCode: cell(row, 0), CountryName: cell(row, 1), Year: y, IncomeClass: cell(row, 3),
			})
		case "gavi":
			y, err := year(row, 2)
			if err != nil {
				return err
			}
			src.Gavi = append(src.Gavi, model.GaviRecord{
				CountryCode: cell(row, 0), CountryName: cell(row, 1), Year: y, Spec: cell(row, 3),
			})
		case "coverage":
			y, err := year(row, 2)
			if err != nil {
				return err
			}
			src.Coverage = append(src.Coverage, model.CoverageRecord{
				CountryCode: cell(row, 0), CountryName: cell(row, 1), Year: y,
				Region: cell(row, 3), TargetNumber: cell(row, 4), Doses: cell(row, 5), Coverage: cell(row, 6),
			})
		case "hpvhist":
			y, err := year(row, 1)
			if err != nil {
				return err
			}
			src.History = append(src.History, model.HPVHistRecord{
				CountryCode: cell(row, 0), Year: y, OriCov: cell(row, 2), OriAntigen: cell(row, 3),
			})
		case "metadata":
			src.Metadata = append(src.Metadata, model.MetadataRecord{
				CountryCode: cell(row, 0), NationalSchedule: cell(row, 1), IntroYear: cell(row, 2),
				DeliveryStrategy: cell(row, 3), AgeAdministered: cell(row, 4), Sex: cell(row, 5), IntDoses: cell(row, 6),
			})
		case "cervical":
			rate, err := strconv.ParseFloat(cell(row, 1), 64)
			if err != nil {
				return eris.Wrap(err, "normalize: bad cervical rate")
			}
			src.Cervical = append(src.Cervical, model.CervicalRecord{CountryCode: cell(row, 0), CrudeRate: rate})
		case "dtp_fd", "dtp_ld":
			y, err := year(row, 1)
			if err != nil {
				return err
			}
			rec := model.DTPRecord{CountryCode: cell(row, 0), Year: y, Source: cell(row, 3)}
			if s := cell(row, 2); s != "" {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return eris.Wrapf(err, "normalize: bad coverage in %s", name)
				}
				rec.Coverage = &v
			}
			if name == "dtp_fd" {
				src.DTPFirst = append(src.DTPFirst, rec)
			} else {
				src.DTPLast = append(src.DTPLast, rec)
			}
		}
	}
	return nil
}
