package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/critic/internal/core/domain"
)

var (
	evaluateDataset  string
	evaluateArtifact string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a saved model on a labelled dataset",
	Long: `Loads a saved artifact and reports accuracy, per-class precision,
recall and F1, and the confusion matrix on every row of the dataset.`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateDataset, "dataset", "d", "", "labelled review CSV (required)")
	evaluateCmd.Flags().StringVarP(&evaluateArtifact, "artifact", "a", "", "artifact ID (default latest)")
	_ = evaluateCmd.MarkFlagRequired("dataset")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	if trainingService == nil {
		return errors.New("training service not configured")
	}

	eval, err := trainingService.Evaluate(cmd.Context(), evaluateDataset, evaluateArtifact)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	out := newOutput(cmd.OutOrStdout())
	cmd.Println(out.Heading("Evaluation"))
	cmd.Printf("Accuracy: %.4f\n\n", eval.Accuracy)
	printClassReport(cmd, out, *eval)
	return nil
}

func printClassReport(cmd *cobra.Command, out *output, eval domain.Evaluation) {
	rows := make([][]string, 0, domain.NumClasses+2)
	for i, class := range domain.Classes() {
		rows = append(rows, metricsRow(class.String(), eval.PerClass[i]))
	}
	rows = append(rows, metricsRow("macro avg", eval.MacroAvg), metricsRow("weighted avg", eval.WeightedAvg))
	cmd.Println(out.Table([]string{"", "Precision", "Recall", "F1", "Support"}, rows))

	c := eval.Confusion
	cmd.Println()
	cmd.Println(out.Table([]string{"", "Pred negative", "Pred positive"}, [][]string{
		{"Actual negative", fmt.Sprint(c[0][0]), fmt.Sprint(c[0][1])},
		{"Actual positive", fmt.Sprint(c[1][0]), fmt.Sprint(c[1][1])},
	}))
}

func metricsRow(label string, m domain.ClassMetrics) []string {
	return []string{
		label,
		fmt.Sprintf("%.2f", m.Precision),
		fmt.Sprintf("%.2f", m.Recall),
		fmt.Sprintf("%.2f", m.F1),
		fmt.Sprint(m.Support),
	}
}
