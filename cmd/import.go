package cmd

import (
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import DATASET",
	Short: "Load candidates, jobs and history from a YAML, JSON or TOML file into the store",
	Long: "Load a dataset into the configured store. With the memory driver the data lives " +
		"only for this run, so import is mainly useful with the postgres driver.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		return seedDataset(cmd.Context(), app.store, args[0], app.logger)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
