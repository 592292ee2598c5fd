package source

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/fetcher"
	"github.com/sells-group/vaxpanel/internal/model"
)

// validIncome is the set of World Bank income classes the panel keeps.
// Anything else (e.g. ".." placeholders) is blanked.
var validIncome = map[string]bool{"H": true, "L": true, "LM": true, "UM": true}

// IncomeLayout describes the fixed layout of the World Bank "Country
// Analytical History" sheet: a preamble above the data block, country code
// and name columns, then one column per year.
type IncomeLayout struct {
	Sheet        string
	HeaderRows   int // rows above the first data row
	CodeCol      int // 0-based
	NameCol      int // 0-based
	YearStartCol int // 0-based column of StartYear
	StartYear    int
	EndYear      int
	StopCode     string // last data row; aggregate rows follow it
}

// DefaultIncomeLayout matches the published workbook: data from row 12,
// code in column A, name in column B, 2008 in column X, country block ends
// at ZWE.
func DefaultIncomeLayout() IncomeLayout {
	return IncomeLayout{
		Sheet:        "Country Analytical History",
		HeaderRows:   11,
		CodeCol:      0,
		NameCol:      1,
		YearStartCol: 23,
		StartYear:    2008,
		EndYear:      2024,
		StopCode:     "ZWE",
	}
}

// LoadIncome reads the World Bank income-history workbook and reshapes it
// wide→long into one record per (country, year).
func LoadIncome(path string, layout IncomeLayout) ([]model.IncomeRecord, LoadDiag, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{
		SheetName: layout.Sheet,
		SkipRows:  layout.HeaderRows,
	})
	if err != nil {
		return nil, LoadDiag{}, err
	}

	var (
		records []model.IncomeRecord
		diag    LoadDiag
	)

	for _, row := range rows {
		code := cellAt(row, layout.CodeCol)
		if code == "" {
			continue
		}
		code = model.NormalizeCode(code)
		name := cellAt(row, layout.NameCol)

		for year := layout.StartYear; year <= layout.EndYear; year++ {
			class := strings.ToUpper(cellAt(row, layout.YearStartCol+year-layout.StartYear))
			if !validIncome[class] {
				class = ""
			}
			records = append(records, model.IncomeRecord{
				CountryCode: code,
				CountryName: name,
				Year:        year,
				IncomeClass: class,
			})
		}

		// Aggregate regions follow the country block; stop after the last
		// country row.
		if code == layout.StopCode {
			break
		}
	}

	diag.Rows = len(records)
	zap.L().Info("income: loaded",
		zap.Int("rows", diag.Rows),
		zap.Int("year_min", layout.StartYear),
		zap.Int("year_max", layout.EndYear),
	)
	return records, diag, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
