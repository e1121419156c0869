package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect training run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List training runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show details of a training run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runService == nil {
		return errors.New("run service not configured")
	}

	runs, err := runService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No training runs yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for i := range runs {
		run := runs[i]
		accuracy := ""
		if best, ok := run.Result(run.BestModel); ok {
			accuracy = fmt.Sprintf("%.4f", best.Evaluation.Accuracy)
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			fmt.Sprint(run.Dataset.Total),
			run.BestModel,
			accuracy,
		})
	}

	out := newOutput(cmd.OutOrStdout())
	cmd.Println(out.Table([]string{"ID", "Started", "Reviews", "Saved model", "Accuracy"}, rows))
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if runService == nil {
		return errors.New("run service not configured")
	}

	run, err := runService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	cmd.Printf("Run %s\n", run.ID)
	cmd.Printf("Dataset: %s\n", run.Dataset.Path)
	cmd.Printf("Started: %s (took %s)\n", run.StartedAt.Local().Format(time.DateTime),
		run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	printRun(cmd, run)
	return nil
}
