package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sells-group/vaxpanel/internal/pipeline"
	"github.com/sells-group/vaxpanel/internal/report"
)

var assembleFromRaw bool

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble the balanced panel and apply every merge",
	Long: "Builds the income x Gavi rectangle from the normalized intermediates, merges the coverage, metadata, " +
		"covariate and DTP comparator tables, and writes the combined panel to the intermediate directory. " +
		"With --from-raw the raw extracts are normalized in-process instead.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var (
			src *pipeline.Sources
			err error
		)
		if assembleFromRaw {
			src, err = pipeline.LoadSources(cmd.Context(), cfg.Paths)
		} else {
			src, err = pipeline.ReadNormalized(cfg.Paths.IntermDir)
		}
		if err != nil {
			return err
		}

		rows, diags := pipeline.New(cfg).BuildPanel(src)

		path := filepath.Join(cfg.Paths.IntermDir, "combined_panel.xlsx")
		if err := report.WritePanel(path, "combined_panel", rows); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diags)
	},
}

func init() {
	assembleCmd.Flags().BoolVar(&assembleFromRaw, "from-raw", false, "normalize the raw extracts instead of reading intermediates")
	rootCmd.AddCommand(assembleCmd)
}
