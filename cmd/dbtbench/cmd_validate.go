package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dbtbench/dbtbench/internal/validation"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file> [file ...]",
		Short: "Validate report or configuration files against their schemas",
		Long: `Validate files against the embedded JSON Schemas.

JSON files are validated as execution reports, YAML files as .dbtbench.yaml
configuration files. All schema violations are listed, not just the first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0

			for _, path := range args {
				var errs []string
				var err error
				switch filepath.Ext(path) {
				case ".yaml", ".yml":
					errs, err = validation.ValidateConfigFile(path)
				default:
					errs, err = validation.ValidateReportFile(path)
				}
				if err != nil {
					return err
				}

				if len(errs) == 0 {
					fmt.Fprintf(out, "✅ %s\n", path) //nolint:errcheck
					continue
				}
				failed++
				fmt.Fprintf(out, "❌ %s\n", path) //nolint:errcheck
				for _, e := range errs {
					fmt.Fprintf(out, "   %s\n", e) //nolint:errcheck
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(args))
			}
			return nil
		},
	}
	return cmd
}
