package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/vaxpanel/internal/pipeline"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [source ...]",
	Short: "Normalize the raw extracts and write the long-format sources",
	Long: "Runs the source normalizers and writes each long-format table to the intermediate directory. " +
		"Sources: " + strings.Join(pipeline.NormalizedSources, ", ") + ". No arguments writes all of them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		known := map[string]bool{}
		for _, name := range pipeline.NormalizedSources {
			known[name] = true
		}
		for _, arg := range args {
			if !known[arg] {
				return eris.Errorf("normalize: unknown source %q (choose from: %s)",
					arg, strings.Join(pipeline.NormalizedSources, ", "))
			}
		}

		src, err := pipeline.LoadSources(cmd.Context(), cfg.Paths)
		if err != nil {
			return err
		}

		paths, err := pipeline.New(cfg).WriteNormalized(src, args...)
		if err != nil {
			return err
		}

		for _, path := range paths {
			fmt.Println(path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}
