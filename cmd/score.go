package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score CANDIDATE_ID JOB_ID",
	Short: "Score a candidate in the context of a job and store the response",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		resp, err := app.service.ScoreCandidate(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("scoring candidate: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var contextCmd = &cobra.Command{
	Use:   "context JOB_ID",
	Short: "Show the scoring context derived for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		scoringCtx, err := app.service.InitializeContext(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("initializing context: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), scoringCtx)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(contextCmd)
}
