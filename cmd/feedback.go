package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback REQUEST_ID OUTCOME SCORE",
	Short: "Record the actual outcome of a scored candidate",
	Long:  "Record the actual outcome of a scored candidate. SCORE is in [0,1]; values outside are clamped.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("parsing feedback score %q: %w", args[2], err)
		}

		app, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		record, err := app.service.RecordFeedback(cmd.Context(), args[0], args[1], score)
		if err != nil {
			return fmt.Errorf("recording feedback: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), record)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the model version, accuracy and context weights",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		return printJSON(cmd.OutOrStdout(), app.service.ModelStats())
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(statsCmd)
}
