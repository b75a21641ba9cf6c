package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbtbench/dbtbench/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [pipeline-name]",
		Short: "Create a .dbtbench.yaml configuration interactively",
		Long: `Walk through an interactive wizard to create a .dbtbench.yaml file:
pipeline name, regression thresholds, Snowflake edition, and recommendation
count.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
			}

			initialPipeline := ""
			if len(args) == 1 {
				initialPipeline = args[0]
			}

			settings, err := wizard.Run(cmd.InOrStdin(), cmd.OutOrStdout(), initialPipeline)
			if err != nil {
				return err
			}

			content, err := wizard.GenerateConfigYAML(settings)
			if err != nil {
				return err
			}

			if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", configPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}
