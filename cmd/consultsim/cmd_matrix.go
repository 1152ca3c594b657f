package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pharmacy-consult-sim/internal/simulation"
)

func newMatrixCmd() *cobra.Command {
	var drug, output string
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the outcome of every drug and condition combination",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rows []simulation.Evaluation
			for _, e := range simulation.Matrix() {
				if drug == "" || string(e.Drug) == drug {
					rows = append(rows, e)
				}
			}
			if len(rows) == 0 {
				return fmt.Errorf("%w: %q", simulation.ErrUnknownDrug, drug)
			}
			if output != "text" {
				return writeStructured(cmd.OutOrStdout(), output, rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DRUG\tANTICOAG\tPROCEDURE\tASKED MEDS\tASKED HISTORY\tDELTA\tSEVERITY\tRULE")
			for _, e := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%+d\t%s\t%s\n",
					e.Drug, yesNo(e.Hidden.Anticoagulant), yesNo(e.Hidden.Procedure),
					yesNo(e.AskedMeds), yesNo(e.AskedHistory),
					e.Outcome.Delta, e.Outcome.Severity, e.Outcome.Rule)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&drug, "drug", "", "Only show rows for this drug")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Format: text, json or yaml")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
