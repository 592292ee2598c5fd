package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/vaxpanel/internal/pipeline"
	"github.com/sells-group/vaxpanel/internal/report"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Apply the imputation rules and derive the group classifications",
	Long: "Reads the combined panel from the intermediate directory, restricts it to the analysis window, applies " +
		"the dose-label and coverage imputation rules, derives income group, Gavi regime, trajectory and market " +
		"segment, and writes the final and summary datasets.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := filepath.Join(cfg.Paths.IntermDir, "combined_panel.xlsx")
		rows, err := report.ReadPanel(path, "combined_panel")
		if err != nil {
			return eris.Wrap(err, "classify: read combined panel (run `vaxpanel assemble` first)")
		}

		rows, diags, err := pipeline.New(cfg).Finalize(rows)
		if err != nil {
			return err
		}

		if err := report.WritePanel(cfg.Paths.FinalDataset, "final_panel", rows); err != nil {
			return err
		}
		if err := report.WriteSummary(cfg.Paths.SummaryDataset, rows); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diags)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
