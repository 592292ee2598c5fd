package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/vaxpanel/internal/export"
	"github.com/sells-group/vaxpanel/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Load the final panel into Postgres",
	Long:  "Reads the final dataset workbook and COPYs it into the configured Postgres table, truncate-and-reload.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.Export.DatabaseURL == "" {
			return eris.New("export: export.database_url is not configured")
		}

		rows, err := report.ReadPanel(cfg.Paths.FinalDataset, "final_panel")
		if err != nil {
			return eris.Wrap(err, "export: read final panel (run `vaxpanel run` or `vaxpanel classify` first)")
		}

		pool, err := pgxpool.New(ctx, cfg.Export.DatabaseURL)
		if err != nil {
			return eris.Wrap(err, "export: connect postgres")
		}
		defer pool.Close()

		n, err := export.New(pool, cfg.Export.Schema, cfg.Export.Table).Export(ctx, rows)
		if err != nil {
			return err
		}

		fmt.Printf("exported %d rows\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
