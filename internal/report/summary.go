// Package report renders the final panel and its summary tables to XLSX
// workbooks.
package report

import (
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/fetcher"
	"github.com/sells-group/vaxpanel/internal/model"
)

// summary sheet names, in workbook order.
const (
	SheetByYearTrajectory = "by_year_trajectory"
	SheetByYearIncome     = "by_year_income"
)

type aggKey struct {
	year  int
	group string
}

type agg struct {
	countries map[string]bool
	n         int
	sum       float64
	min       float64
	max       float64
}

// WriteSummary writes the coverage summary workbook: mean, min and max
// observed first-dose coverage and country counts, by year x trajectory and
// by year x income group.
func WriteSummary(path string, rows []*model.Row) error {
	names := []string{SheetByYearTrajectory, SheetByYearIncome}
	sheets := map[string][][]string{
		SheetByYearTrajectory: summarize(rows, "trajectory", func(r *model.Row) string { return r.Trajectory }),
		SheetByYearIncome:     summarize(rows, "income_group", func(r *model.Row) string { return r.IncomeGroup }),
	}
	if err := fetcher.WriteXLSXSheets(path, names, sheets); err != nil {
		return err
	}
	zap.L().Info("report: summary written", zap.String("path", path))
	return nil
}

func summarize(rows []*model.Row, groupCol string, group func(*model.Row) string) [][]string {
	cells := map[aggKey]*agg{}
	for _, row := range rows {
		cov, ok := row.CoverageValue()
		if !ok {
			continue
		}
		key := aggKey{year: row.Year, group: group(row)}
		a, exists := cells[key]
		if !exists {
			a = &agg{countries: map[string]bool{}, min: cov, max: cov}
			cells[key] = a
		}
		a.countries[row.CountryCode] = true
		a.n++
		a.sum += cov
		if cov < a.min {
			a.min = cov
		}
		if cov > a.max {
			a.max = cov
		}
	}

	keys := make([]aggKey, 0, len(cells))
	for key := range cells {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].group < keys[j].group
	})

	out := [][]string{{"year", groupCol, "n_countries", "n_obs", "mean_cov", "min_cov", "max_cov"}}
	for _, key := range keys {
		a := cells[key]
		out = append(out, []string{
			strconv.Itoa(key.year),
			key.group,
			strconv.Itoa(len(a.countries)),
			strconv.Itoa(a.n),
			formatFloat(a.sum / float64(a.n)),
			formatFloat(a.min),
			formatFloat(a.max),
		})
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
