// Package classify derives the categorical group labels the modeling stage
// consumes: income group, Gavi regime and trajectory, and the market
// segment with its 2024 price.
package classify

import (
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/model"
)

// ApplyIncome fills income_class_lbl, income_group and hic_flag from the
// World Bank income class on every row. Rows with no income class get an
// empty label and classify Non-HIC.
func ApplyIncome(rows []*model.Row) {
	hic := 0
	for _, row := range rows {
		class := model.CleanCell(row.IncomeClass)
		row.IncomeClassLabel = model.IncomeClassLabelOf(class)
		if class == "H" {
			row.IncomeGroup = model.IncomeGroupHIC
			row.HICFlag = 1
			hic++
		} else {
			row.IncomeGroup = model.IncomeGroupNonHIC
			row.HICFlag = 0
		}
	}
	zap.L().Info("classify: income groups", zap.Int("rows", len(rows)), zap.Int("hic_rows", hic))
}
