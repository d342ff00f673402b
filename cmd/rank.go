package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hire-ranker/internal/filtering"
	"github.com/spigell/hire-ranker/internal/model"
)

const (
	PromptInsights            = "Show insights for a candidate"
	PromptContextualScore     = "Compute contextual score for a candidate"
	PromptAppendToExcludeFile = "Append shown candidates to exclude file"
	PromptRankingToFile       = "Dump ranking to file"
	PromptExit                = "Exit"
	PromptBack                = "back"
)

var errExit = errors.New("exit requested")

var rankCmd = &cobra.Command{
	Use:   "rank JOB_ID [CANDIDATE_ID...]",
	Short: "Rank candidates for a job by base match score",
	Long: "Rank the given candidates, or every stored candidate, against a job. " +
		"The ranking is printed as JSON and then an interactive menu is shown unless --no-prompt is set.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rank(cmd, args[0], args[1:])
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().BoolP("no-prompt", "y", false, "print the ranking and exit without the interactive menu")
	rankCmd.Flags().StringP("exclude-file", "e", "", "file with candidates to exclude. Default is unset.")
	rankCmd.Flags().Float64P("minimum-score", "m", 0, "drop candidates with a base match score below this value")
	rankCmd.Flags().StringSlice("disable-filter", nil, "filters to disable by name")

	viper.BindPFlag("filters.exclude-file", rankCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("filters.minimum-match-score", rankCmd.Flags().Lookup("minimum-score"))
}

func rank(cmd *cobra.Command, jobID string, candidateIDs []string) error {
	ctx := cmd.Context()

	app, err := setup(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	disabled, _ := cmd.Flags().GetStringSlice("disable-filter")
	for _, name := range disabled {
		filtering.DisableByName(app.service.Filters(), strings.TrimSpace(name), "disabled by flag")
	}
	for _, status := range filtering.Describe(app.service.Filters()) {
		app.logger.Debug("filter",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	results, err := app.service.RankCandidates(ctx, jobID, candidateIDs)
	if err != nil {
		return fmt.Errorf("ranking candidates: %w", err)
	}

	if err := printJSON(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	if len(results) == 0 {
		app.logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return nil
	}

	if noPrompt, _ := cmd.Flags().GetBool("no-prompt"); noPrompt {
		return nil
	}

	for {
		items := []string{PromptInsights, PromptContextualScore, PromptRankingToFile}
		if app.config.Filters.ExcludeFile != "" && len(results) != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}
		items = append(items, PromptExit)

		prompt := promptui.Select{
			Label: "Next action",
			Items: items,
		}

		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		app.logger.Info("current ranking", zap.Int("count", len(results)))

		results, err = handleAction(cmd, app, action, jobID, results)
		if err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

func handleAction(cmd *cobra.Command, app *application, action, jobID string, results []model.MatchResult) ([]model.MatchResult, error) {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch action {
	case PromptInsights:
		candidateID, err := selectCandidate(results)
		if err != nil || candidateID == "" {
			return results, err
		}
		insights, err := app.service.MatchInsights(ctx, candidateID, jobID)
		if err != nil {
			return results, err
		}
		return results, printJSON(out, insights)
	case PromptContextualScore:
		candidateID, err := selectCandidate(results)
		if err != nil || candidateID == "" {
			return results, err
		}
		resp, err := app.service.ScoreCandidate(ctx, candidateID, jobID)
		if err != nil {
			return results, err
		}
		return results, printJSON(out, resp)
	case PromptRankingToFile:
		filename, err := dumpToTmpFile(results)
		if err != nil {
			return results, fmt.Errorf("dump ranking to file: %w", err)
		}
		app.logger.Info("dumping ranking to file", zap.String("filename", filename))
		return results, nil
	case PromptAppendToExcludeFile:
		excludeFile := app.config.Filters.ExcludeFile
		if err := filtering.AppendToFile(excludeFile, results, time.Now()); err != nil {
			return results, err
		}
		app.logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", len(results)))
		return nil, errExit
	case PromptExit:
		app.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return results, errExit
	default:
		return results, fmt.Errorf("invalid action: %s", action)
	}
}

// selectCandidate returns the chosen candidate id, or an empty id when the user goes back.
func selectCandidate(results []model.MatchResult) (string, error) {
	items := make([]string, 0, len(results)+1)
	for i, r := range results {
		items = append(items, fmt.Sprintf("%s #%d score %.2f missing: %s",
			r.CandidateID, i+1, r.BaseScore, strings.Join(r.Skills.Missing, ", "),
		))
	}

	candidatePrompt := promptui.Select{
		Label: "Choose a candidate and press ENTER",
		Items: append(items, PromptBack),
	}

	_, selected, err := candidatePrompt.Run()
	if err != nil {
		return "", err
	}
	if selected == PromptBack {
		return "", nil
	}
	return strings.Split(selected, " ")[0], nil
}

func dumpToTmpFile(results []model.MatchResult) (string, error) {
	file, err := os.CreateTemp("", "ranking_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := printJSON(file, results); err != nil {
		return "", err
	}
	return file.Name(), nil
}
