package main

import (
	"github.com/spf13/cobra"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Train the model and print its parameters and holdout evaluation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := trainedPipeline(cmd.Context(), appConfig)
		if err != nil {
			return err
		}

		summary, err := p.Summary()
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), summary)
	},
}
