package main

import (
	"encoding/json"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/vaxpanel/internal/export"
	"github.com/sells-group/vaxpanel/internal/pipeline"
)

var runExport bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the full panel: normalize, assemble, classify, report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p := pipeline.New(cfg)
		p.SetStore(st)

		if runExport {
			if cfg.Export.DatabaseURL == "" {
				return eris.New("run: --export requires export.database_url")
			}
			pool, err := pgxpool.New(ctx, cfg.Export.DatabaseURL)
			if err != nil {
				return eris.Wrap(err, "run: connect postgres")
			}
			defer pool.Close()
			p.SetExporter(export.New(pool, cfg.Export.Schema, cfg.Export.Table))
		}

		result, err := p.Run(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runExport, "export", false, "also load the final panel into Postgres")
	rootCmd.AddCommand(runCmd)
}
