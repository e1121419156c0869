package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/critic/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/services"
)

// mockTrainingService records calls and returns a canned run.
type mockTrainingService struct {
	calls    []domain.TrainOptions
	err      error
	evalErr  error
	lastEval string
}

func (m *mockTrainingService) Train(_ context.Context, opts domain.TrainOptions) (*domain.RunRecord, error) {
	m.calls = append(m.calls, opts)
	if m.err != nil {
		return nil, m.err
	}
	run := sampleRun()
	run.Dataset.Path = opts.DatasetPath
	return &run, nil
}

func (m *mockTrainingService) Evaluate(_ context.Context, datasetPath, artifactID string) (*domain.Evaluation, error) {
	m.lastEval = datasetPath + "|" + artifactID
	if m.evalErr != nil {
		return nil, m.evalErr
	}
	eval, err := domain.NewEvaluation([]int{0, 0, 1, 1}, []int{0, 1, 1, 1})
	if err != nil {
		return nil, err
	}
	return &eval, nil
}

// mockPredictionService answers every text with the same prediction.
type mockPredictionService struct {
	prediction domain.Prediction
	err        error
	lastText   string
	lastOpts   domain.PredictOptions
}

func (m *mockPredictionService) Predict(_ context.Context, text string, opts domain.PredictOptions) (domain.Prediction, error) {
	m.lastText = text
	m.lastOpts = opts
	return m.prediction, m.err
}

// mockWatcher fires onChange a fixed number of times, then returns.
type mockWatcher struct {
	fires  int
	path   string
	onFire func()
}

func (m *mockWatcher) Watch(ctx context.Context, path string, onChange func(ctx context.Context)) error {
	m.path = path
	for i := 0; i < m.fires; i++ {
		if m.onFire != nil {
			m.onFire()
		}
		onChange(ctx)
	}
	return nil
}

func sampleRun() domain.RunRecord {
	eval, _ := domain.NewEvaluation([]int{0, 0, 1, 1}, []int{0, 0, 1, 1})
	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return domain.RunRecord{
		ID:      "run-1",
		Dataset: domain.DatasetSummary{Total: 20, Positive: 10, Negative: 10, TrainSize: 16, TestSize: 4},
		Results: []domain.ModelResult{
			{Name: "Naive Bayes", Kind: domain.ModelNaiveBayes, Evaluation: eval, SupportsProba: true},
			{Name: "Linear SVM", Kind: domain.ModelLinearSVM, Evaluation: eval},
		},
		BestOverall:    "Linear SVM",
		BestModel:      "Naive Bayes",
		ArtifactID:     "artifact-1",
		VocabularySize: 50,
		ReportPath:     "/tmp/report.md",
		StartedAt:      started,
		FinishedAt:     started.Add(3 * time.Second),
	}
}

// testServices exposes the mocks installed by setupTestServices.
type testServices struct {
	training   *mockTrainingService
	prediction *mockPredictionService
	watcher    *mockWatcher
	runs       *memory.RunStore
	artifacts  *memory.ArtifactStore
	config     *memory.ConfigStore
}

// setupTestServices installs mocks and in-memory services for command tests.
// The returned cleanup restores the previous services and flag values.
func setupTestServices() func() {
	_, cleanup := setupTestServicesWith()
	return cleanup
}

func setupTestServicesWith() (*testServices, func()) {
	ts := &testServices{
		training: &mockTrainingService{},
		prediction: &mockPredictionService{prediction: domain.Prediction{
			Sentiment:           domain.SentimentPositive,
			Confidence:          0.9,
			ProbabilityPositive: 0.9,
			ProbabilityNegative: 0.1,
			ArtifactID:          "artifact-1",
		}},
		watcher:   &mockWatcher{},
		runs:      memory.NewRunStore(),
		artifacts: memory.NewArtifactStore(),
		config:    memory.NewConfigStore(),
	}

	SetServices(Services{
		Training:   ts.training,
		Prediction: ts.prediction,
		Runs:       services.NewRunService(ts.runs),
		Artifacts:  services.NewArtifactService(ts.artifacts),
		Settings:   services.NewSettingsService(ts.config),
		Watcher:    ts.watcher,
	})

	return ts, func() {
		SetServices(Services{})
		resetFlags()
	}
}

// resetFlags restores every command flag to its default between tests.
func resetFlags() {
	var reset func(cmd *cobra.Command)
	reset = func(cmd *cobra.Command) {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
		for _, sub := range cmd.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
}
