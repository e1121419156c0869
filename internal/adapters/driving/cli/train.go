package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/critic/internal/core/domain"
)

var (
	trainDataset  string
	trainReport   string
	trainTestSize float64
	trainSeed     int64
	trainNoTune   bool
	trainWatch    bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and compare sentiment models",
	Long: `Trains every configured classifier on a labelled review CSV.

The dataset needs a review text column and a sentiment column holding
"positive" or "negative". Reviews are cleaned, split into train and test
sets, and vectorised with TF-IDF. Each model is scored on the held-out set,
logistic regression is optionally tuned with a grid search, and the best
model with probability estimates is saved for prediction.

Use --watch to retrain whenever the dataset file changes.`,
	Example: `  critic train --dataset IMDB_Dataset.csv
  critic train --dataset reviews.csv --test-size 0.3 --seed 7 --no-tune`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVarP(&trainDataset, "dataset", "d", "", "labelled review CSV (required)")
	trainCmd.Flags().StringVarP(&trainReport, "report", "r", "", "markdown report path")
	trainCmd.Flags().Float64Var(&trainTestSize, "test-size", 0, "held-out fraction (default from settings)")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 0, "split seed (default from settings)")
	trainCmd.Flags().BoolVar(&trainNoTune, "no-tune", false, "skip the grid search")
	trainCmd.Flags().BoolVarP(&trainWatch, "watch", "w", false, "retrain when the dataset changes")
	_ = trainCmd.MarkFlagRequired("dataset")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	if trainingService == nil {
		return errors.New("training service not configured")
	}

	opts := domain.TrainOptions{
		DatasetPath: trainDataset,
		ReportPath:  trainReport,
		TestSize:    trainTestSize,
		SkipTuning:  trainNoTune,
	}
	if cmd.Flags().Changed("seed") {
		seed := trainSeed
		opts.Seed = &seed
	}

	ctx := cmd.Context()

	if err := trainOnce(ctx, cmd, opts); err != nil {
		return err
	}
	if !trainWatch {
		return nil
	}

	if fileWatcher == nil {
		return errors.New("file watcher not configured")
	}
	cmd.Printf("\nWatching %s for changes (Ctrl+C to stop)...\n", trainDataset)
	return fileWatcher.Watch(ctx, trainDataset, func(ctx context.Context) {
		cmd.Printf("\n%s changed, retraining...\n", trainDataset)
		if err := trainOnce(ctx, cmd, opts); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
		}
	})
}

func trainOnce(ctx context.Context, cmd *cobra.Command, opts domain.TrainOptions) error {
	cmd.Printf("Training on %s...\n", opts.DatasetPath)

	run, err := trainingService.Train(ctx, opts)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	printRun(cmd, run)
	return nil
}

// printRun writes the summary shared by train and runs show.
func printRun(cmd *cobra.Command, run *domain.RunRecord) {
	out := newOutput(cmd.OutOrStdout())
	d := run.Dataset

	cmd.Println()
	cmd.Println(out.Heading("Dataset"))
	cmd.Printf("  Reviews: %d (%d positive, %d negative)\n", d.Total, d.Positive, d.Negative)
	cmd.Printf("  Split:   %d train / %d test\n", d.TrainSize, d.TestSize)
	cmd.Printf("  Features: %d\n", run.VocabularySize)
	cmd.Println()

	cmd.Println(out.Heading("Models"))
	cmd.Println(out.Table(resultHeaders, resultRows(run.Results)))

	if t := run.Tuning; t != nil && t.BestIndex >= 0 {
		cmd.Println()
		cmd.Println(out.Heading("Tuning"))
		cmd.Printf("  %s, %d folds, %d candidates\n", t.Kind.Description(), t.Folds, len(t.Candidates))
		cmd.Printf("  Best parameters: %s\n", t.BestParams.Format())
		cmd.Printf("  Best CV accuracy: %.4f\n", t.BestScore)
	}

	cmd.Println()
	cmd.Printf("Best model: %s\n", run.BestOverall)
	if run.BestModel != run.BestOverall {
		cmd.Printf("Saved model: %s %s\n", run.BestModel, out.Muted("(best with probability estimates)"))
	}
	if run.ArtifactID != "" {
		cmd.Printf("Artifact: %s\n", run.ArtifactID)
	}
	if run.ReportPath != "" {
		cmd.Printf("Report: %s\n", run.ReportPath)
	}
}

var resultHeaders = []string{"Model", "Accuracy", "Macro F1", "Proba", "Time"}

func resultRows(results []domain.ModelResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Failed() {
			rows = append(rows, []string{r.Name, "failed", "", "", r.Duration.Round(time.Millisecond).String()})
			continue
		}
		proba := "no"
		if r.SupportsProba {
			proba = "yes"
		}
		rows = append(rows, []string{
			r.Name,
			fmt.Sprintf("%.4f", r.Evaluation.Accuracy),
			fmt.Sprintf("%.4f", r.Evaluation.MacroAvg.F1),
			proba,
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	return rows
}
