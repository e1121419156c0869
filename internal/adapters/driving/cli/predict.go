package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/critic/internal/core/domain"
)

var (
	predictArtifact string
	predictJSON     bool
)

var predictCmd = &cobra.Command{
	Use:   "predict [text]",
	Short: "Predict the sentiment of a review",
	Long: `Classifies a review as positive or negative with the saved model.

Multiple arguments are joined with spaces. Uses the most recent artifact
unless --artifact names one.`,
	Example: `  critic predict "This movie was fantastic!"
  critic predict --json "I hated every minute."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVarP(&predictArtifact, "artifact", "a", "", "artifact ID (default latest)")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "output the prediction as JSON")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	if predictionService == nil {
		return errors.New("prediction service not configured")
	}

	text := strings.Join(args, " ")
	prediction, err := predictionService.Predict(cmd.Context(), text, domain.PredictOptions{
		ArtifactID: predictArtifact,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotTrained) {
			return fmt.Errorf("no trained model found, run 'critic train --dataset FILE' first: %w", err)
		}
		return fmt.Errorf("prediction failed: %w", err)
	}

	if predictJSON {
		data, err := json.MarshalIndent(prediction, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal prediction: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	out := newOutput(cmd.OutOrStdout())
	cmd.Printf("Sentiment:  %s\n", out.Sentiment(prediction.Sentiment))
	cmd.Printf("Confidence: %.4f\n", prediction.Confidence)
	cmd.Printf("%s\n", out.Muted(fmt.Sprintf("P(positive)=%.4f P(negative)=%.4f",
		prediction.ProbabilityPositive, prediction.ProbabilityNegative)))
	if prediction.Fallback {
		cmd.Println(out.Muted("No known words in the text; answered with the training class balance."))
	}
	return nil
}
