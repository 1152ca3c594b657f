package main

import (
	"github.com/spf13/cobra"

	"pharmacy-consult-sim/internal/simulation"
)

func newCatalogCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and print the embedded question catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := simulation.LoadCatalog()
			if err != nil {
				return err
			}
			return writeStructured(cmd.OutOrStdout(), output, catalog)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Format: json or yaml")
	return cmd
}
