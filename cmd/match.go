package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match CANDIDATE_ID JOB_ID",
	Short: "Compute and store the base match between a candidate and a job",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		result, err := app.service.ComputeOverallMatch(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("computing match: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights CANDIDATE_ID JOB_ID",
	Short: "Explain strengths and weaknesses of a candidate for a job",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		insights, err := app.service.MatchInsights(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("computing insights: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), insights)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(insightsCmd)
}
