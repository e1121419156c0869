// Package markdown renders training reports as markdown files.
package markdown

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// Title is the report heading.
const Title = "IMDb Movie Review Sentiment Analysis Report"

// Writer implements driven.ReportWriter.
type Writer struct{}

var _ driven.ReportWriter = (*Writer)(nil)

// NewWriter creates a markdown report writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders report to path, creating parent directories.
func (w *Writer) Write(ctx context.Context, path string, report domain.Report) error {
	if path == "" {
		return fmt.Errorf("%w: report path is empty", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	if err := Render(f, report); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return f.Close()
}

// Render writes the markdown for report to out.
func Render(out io.Writer, report domain.Report) error {
	var b strings.Builder
	run := report.Run

	fmt.Fprintf(&b, "# %s\n\n", Title)
	if !run.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Run `%s` started %s.\n\n", run.ID, run.StartedAt.UTC().Format(time.RFC3339))
	}

	writeDataset(&b, run.Dataset)
	writePreprocessing(&b, report)
	writeFeatures(&b, report.Features, run.VocabularySize)
	writeComparison(&b, run.Results)
	writeClassReports(&b, run.Results)
	writeTuning(&b, run.Tuning)
	writeBest(&b, run)

	_, err := io.WriteString(out, b.String())
	return err
}

func writeDataset(b *strings.Builder, d domain.DatasetSummary) {
	b.WriteString("## Dataset Overview\n")
	if d.Path != "" {
		fmt.Fprintf(b, "- Source: `%s`\n", d.Path)
	}
	fmt.Fprintf(b, "- Total reviews: %d\n", d.Total)
	fmt.Fprintf(b, "- Positive reviews: %d\n", d.Positive)
	fmt.Fprintf(b, "- Negative reviews: %d\n", d.Negative)
	fmt.Fprintf(b, "- Train/test split: %d / %d\n", d.TrainSize, d.TestSize)
	if !d.Balanced() {
		b.WriteString("- Note: the classes are imbalanced\n")
	}
	b.WriteString("\n")
}

func writePreprocessing(b *strings.Builder, report domain.Report) {
	b.WriteString("## Preprocessing Steps\n")
	for i, step := range report.PreprocessingSteps {
		fmt.Fprintf(b, "%d. %s\n", i+1, step)
	}
	if report.LexiconVersion != "" {
		fmt.Fprintf(b, "\nLexicon: `%s`\n", report.LexiconVersion)
	}
	b.WriteString("\n")
}

func writeFeatures(b *strings.Builder, f domain.FeatureSettings, vocabSize int) {
	b.WriteString("## Feature Extraction\n")
	fmt.Fprintf(b, "- TF-IDF vectorization with max_features=%d and ngram_range=(%d, %d)\n",
		f.MaxFeatures, f.NgramMin, f.NgramMax)
	fmt.Fprintf(b, "- Vocabulary size: %d\n\n", vocabSize)
}

func writeComparison(b *strings.Builder, results []domain.ModelResult) {
	b.WriteString("## Model Performance Comparison\n")
	b.WriteString("| Model | Accuracy | Macro F1 | Probabilities | Time |\n")
	b.WriteString("|---|---:|---:|:---:|---:|\n")
	for _, r := range results {
		if r.Failed() {
			fmt.Fprintf(b, "| %s | failed | | | %s |\n", r.Name, formatDuration(r.Duration))
			continue
		}
		proba := "no"
		if r.SupportsProba {
			proba = "yes"
		}
		fmt.Fprintf(b, "| %s | %.4f | %.4f | %s | %s |\n",
			r.Name, r.Evaluation.Accuracy, r.Evaluation.MacroAvg.F1, proba, formatDuration(r.Duration))
	}
	b.WriteString("\n")
}

func writeClassReports(b *strings.Builder, results []domain.ModelResult) {
	b.WriteString("## Classification Reports\n")
	for _, r := range results {
		fmt.Fprintf(b, "\n### %s\n", r.Name)
		if r.Failed() {
			fmt.Fprintf(b, "Training failed: %s\n", failure(r))
			continue
		}
		if len(r.Params) > 0 {
			fmt.Fprintf(b, "Parameters: `%s`\n\n", r.Params.Format())
		}

		e := r.Evaluation
		b.WriteString("```\n")
		fmt.Fprintf(b, "%14s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
		for i, class := range domain.Classes() {
			m := e.PerClass[i]
			fmt.Fprintf(b, "%14s %10.2f %10.2f %10.2f %10d\n", class, m.Precision, m.Recall, m.F1, m.Support)
		}
		fmt.Fprintf(b, "\n%14s %10s %10s %10.2f %10d\n", "accuracy", "", "", e.Accuracy, e.MacroAvg.Support)
		fmt.Fprintf(b, "%14s %10.2f %10.2f %10.2f %10d\n", "macro avg",
			e.MacroAvg.Precision, e.MacroAvg.Recall, e.MacroAvg.F1, e.MacroAvg.Support)
		fmt.Fprintf(b, "%14s %10.2f %10.2f %10.2f %10d\n", "weighted avg",
			e.WeightedAvg.Precision, e.WeightedAvg.Recall, e.WeightedAvg.F1, e.WeightedAvg.Support)
		b.WriteString("```\n\n")

		c := e.Confusion
		b.WriteString("| | predicted negative | predicted positive |\n|---|---:|---:|\n")
		fmt.Fprintf(b, "| actual negative | %d | %d |\n", c[0][0], c[0][1])
		fmt.Fprintf(b, "| actual positive | %d | %d |\n", c[1][0], c[1][1])
	}
	b.WriteString("\n")
}

func writeTuning(b *strings.Builder, t *domain.TuningResult) {
	b.WriteString("## Hyperparameter Tuning\n")
	if t == nil {
		b.WriteString("Tuning was disabled for this run.\n\n")
		return
	}
	fmt.Fprintf(b, "Grid search over %s with %d-fold cross-validation (%d candidates).\n\n",
		t.Kind.Description(), t.Folds, len(t.Candidates))
	b.WriteString("| Parameters | Mean accuracy | Std |\n|---|---:|---:|\n")
	for i, c := range t.Candidates {
		marker := ""
		if i == t.BestIndex {
			marker = " **best**"
		}
		if c.Failed() {
			fmt.Fprintf(b, "| `%s` | failed | |\n", c.Params.Format())
			continue
		}
		fmt.Fprintf(b, "| `%s`%s | %.4f | %.4f |\n", c.Params.Format(), marker, c.MeanScore, c.StdScore)
	}
	if t.BestIndex >= 0 {
		fmt.Fprintf(b, "\nBest parameters: `%s` (CV accuracy %.4f)\n", t.BestParams.Format(), t.BestScore)
	}
	b.WriteString("\n")
}

func writeBest(b *strings.Builder, run domain.RunRecord) {
	b.WriteString("## Best Model\n")
	if best, ok := run.Result(run.BestOverall); ok {
		fmt.Fprintf(b, "- Model: %s\n", best.Name)
		fmt.Fprintf(b, "- Accuracy: %.4f\n", best.Evaluation.Accuracy)
	}
	if run.BestModel != run.BestOverall {
		if persisted, ok := run.Result(run.BestModel); ok {
			fmt.Fprintf(b, "- Persisted for prediction: %s (accuracy %.4f), the best model with probability estimates\n",
				persisted.Name, persisted.Evaluation.Accuracy)
		}
	}
	if run.ArtifactID != "" {
		fmt.Fprintf(b, "- Artifact: `%s`\n", run.ArtifactID)
	}
}

func failure(r domain.ModelResult) string {
	if r.Error != "" {
		return r.Error
	}
	return r.Err.Error()
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
