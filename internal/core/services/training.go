package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/core/ports/driving"
	"github.com/custodia-labs/critic/internal/logger"
)

// Ensure TrainingService implements the interface.
var _ driving.TrainingService = (*TrainingService)(nil)

// ReportFileName is the report written when no path is configured.
const ReportFileName = "sentiment_analysis_report.md"

// ctxCheckInterval is how many reviews are cleaned between cancellation checks.
const ctxCheckInterval = 1000

// TrainingService runs the end-to-end training pipeline.
type TrainingService struct {
	reader     driven.DatasetReader
	normaliser driven.TextNormaliser
	extractor  driven.FeatureExtractor
	factory    driven.ClassifierFactory
	artifacts  driven.ArtifactStore
	runs       driven.RunStore
	reports    driven.ReportWriter
	settings   domain.AppSettings
	specs      []domain.ModelSpec
	reportDir  string
	now        func() time.Time
}

// NewTrainingService creates a new training service.
// The run store and report writer are optional and set separately.
func NewTrainingService(
	reader driven.DatasetReader,
	normaliser driven.TextNormaliser,
	extractor driven.FeatureExtractor,
	factory driven.ClassifierFactory,
	artifacts driven.ArtifactStore,
	settings domain.AppSettings,
) *TrainingService {
	return &TrainingService{
		reader:     reader,
		normaliser: normaliser,
		extractor:  extractor,
		factory:    factory,
		artifacts:  artifacts,
		settings:   settings,
		specs:      domain.DefaultModelSpecs(),
		now:        time.Now,
	}
}

// SetRunStore sets the store that records run history.
func (s *TrainingService) SetRunStore(store driven.RunStore) {
	s.runs = store
}

// SetReportWriter sets the writer for the markdown report.
// dir is used when neither the run options nor settings name a report path.
func (s *TrainingService) SetReportWriter(writer driven.ReportWriter, dir string) {
	s.reports = writer
	s.reportDir = dir
}

// SetModelSpecs replaces the models compared on every run.
func (s *TrainingService) SetModelSpecs(specs []domain.ModelSpec) {
	s.specs = specs
}

// Train runs the pipeline on the dataset named in opts.
func (s *TrainingService) Train(ctx context.Context, opts domain.TrainOptions) (*domain.RunRecord, error) {
	if opts.DatasetPath == "" {
		return nil, fmt.Errorf("%w: dataset path is required", domain.ErrInvalidInput)
	}

	run := domain.RunRecord{
		ID:        uuid.New().String(),
		StartedAt: s.now(),
	}

	logger.Section("Loading Dataset")
	reviews, err := s.reader.Read(ctx, opts.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	if len(reviews) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDataset, opts.DatasetPath)
	}
	run.Dataset = domain.Summarise(opts.DatasetPath, reviews)
	logger.Info("Loaded %d reviews (%d positive, %d negative)",
		run.Dataset.Total, run.Dataset.Positive, run.Dataset.Negative)
	if !run.Dataset.Balanced() {
		logger.Warn("Dataset is imbalanced; accuracy may overstate model quality")
	}

	testSize := s.settings.Split.TestSize
	if opts.TestSize != 0 {
		testSize = opts.TestSize
	}
	seed := s.settings.Split.Seed
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	trainIdx, testIdx, err := SplitIndices(len(reviews), testSize, seed)
	if err != nil {
		return nil, fmt.Errorf("splitting dataset: %w", err)
	}
	run.Dataset.TrainSize = len(trainIdx)
	run.Dataset.TestSize = len(testIdx)
	logger.Info("Split: %d train, %d test (seed %d)", len(trainIdx), len(testIdx), seed)

	logger.Section("Preprocessing")
	cleaned, err := s.normaliseAll(ctx, reviews)
	if err != nil {
		return nil, err
	}
	labels := domain.Labels(reviews)
	trainTexts, testTexts := pick(cleaned, trainIdx), pick(cleaned, testIdx)
	trainY, testY := domain.SubsetLabels(labels, trainIdx), domain.SubsetLabels(labels, testIdx)

	logger.Section("Feature Extraction")
	vocab, err := s.extractor.Fit(ctx, trainTexts)
	if err != nil {
		return nil, fmt.Errorf("fitting vocabulary: %w", err)
	}
	trainX := vocab.Transform(trainTexts)
	testX := vocab.Transform(testTexts)
	run.VocabularySize = vocab.Size()
	logger.Info("Vocabulary: %d features", vocab.Size())

	logger.Section("Model Training")
	registry := domain.NewResultRegistry()
	models := make(map[string]driven.Classifier)
	for _, spec := range s.specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		model, result := trainAndEvaluate(ctx, s.factory, spec, trainX, trainY, testX, testY)
		if result.Failed() {
			logger.Warn("%s failed: %v", spec.Name, result.Err)
		} else {
			models[spec.Name] = model
		}
		if err := registry.Add(result); err != nil {
			return nil, err
		}
	}

	if s.settings.Tuning.Enabled && !opts.SkipTuning {
		tuning, model, result, err := s.tune(ctx, trainX, trainY, testX, testY)
		if err != nil {
			return nil, err
		}
		run.Tuning = tuning
		if model != nil {
			models[result.Name] = model
		}
		if err := registry.Add(result); err != nil {
			return nil, err
		}
	}
	run.Results = registry.All()

	bestOverall, ok := registry.Best(nil)
	if !ok {
		return nil, fmt.Errorf("%w: every model failed", domain.ErrTraining)
	}
	best, ok := registry.Best(func(r domain.ModelResult) bool { return r.SupportsProba })
	if !ok {
		return nil, fmt.Errorf("%w: no model that estimates probabilities succeeded", domain.ErrTraining)
	}
	run.BestOverall = bestOverall.Name
	run.BestModel = best.Name
	logger.Section("Model Selection")
	if bestOverall.Name != best.Name {
		logger.Info("Best overall: %s (%.4f), which cannot estimate probabilities",
			bestOverall.Name, bestOverall.Evaluation.Accuracy)
	}
	logger.Info("Persisting %s (%.4f)", best.Name, best.Evaluation.Accuracy)

	info, err := s.persist(ctx, run.ID, best, models[best.Name], vocab, trainY)
	if err != nil {
		return nil, err
	}
	run.ArtifactID = info.ID
	run.FinishedAt = s.now()

	if s.reports != nil {
		path := s.reportPath(opts)
		if path != "" {
			run.ReportPath = path
			report := domain.Report{
				Run:                run,
				PreprocessingSteps: s.normaliser.Steps(),
				Features:           s.settings.Features,
				LexiconVersion:     s.normaliser.LexiconVersion(),
			}
			if err := s.reports.Write(ctx, path, report); err != nil {
				return nil, fmt.Errorf("writing report: %w", err)
			}
			logger.Info("Report written to %s", path)
		}
	}

	if s.runs != nil {
		if err := s.runs.Save(ctx, run); err != nil {
			return nil, fmt.Errorf("saving run: %w", err)
		}
	}
	return &run, nil
}

// Evaluate scores a persisted artifact on a labelled dataset.
func (s *TrainingService) Evaluate(ctx context.Context, datasetPath, artifactID string) (*domain.Evaluation, error) {
	loader := artifactLoader{
		store:      s.artifacts,
		factory:    s.factory,
		extractor:  s.extractor,
		normaliser: s.normaliser,
	}
	id, err := loader.resolveID(ctx, artifactID)
	if err != nil {
		return nil, err
	}
	loaded, err := loader.load(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reader.Read(ctx, datasetPath)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	if len(reviews) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDataset, datasetPath)
	}
	cleaned, err := s.normaliseAll(ctx, reviews)
	if err != nil {
		return nil, err
	}

	eval, err := evaluateModel(loaded.model, loaded.vocab.Transform(cleaned), domain.Labels(reviews))
	if err != nil {
		return nil, fmt.Errorf("evaluating artifact %s: %w", id, err)
	}
	logger.Info("Artifact %s (%s): accuracy %.4f on %d reviews",
		id, loaded.info.ModelName, eval.Accuracy, len(reviews))
	return &eval, nil
}

// tune grid-searches the configured kind and evaluates the refit model on
// the test split. A search in which every candidate fails is recorded as a
// failed result; only cancellation aborts the run.
func (s *TrainingService) tune(
	ctx context.Context,
	trainX domain.FeatureMatrix, trainY []int,
	testX domain.FeatureMatrix, testY []int,
) (*domain.TuningResult, driven.Classifier, domain.ModelResult, error) {
	cfg := s.settings.Tuning
	start := time.Now()
	result := domain.ModelResult{
		Name: "Tuned " + cfg.Kind.Description(),
		Kind: cfg.Kind,
	}

	tuner := NewTuner(s.factory, cfg.Workers)
	tuning, model, err := tuner.Search(ctx, cfg.Kind, cfg.Grid, cfg.Folds, trainX, trainY)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, nil, result, ctxErr
	}
	if err != nil {
		logger.Warn("Tuning failed: %v", err)
		result.Err = err
		result.Duration = time.Since(start)
		return tuning, nil, result, nil
	}

	result.Params = model.Params()
	eval, err := evaluateModel(model, testX, testY)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = fmt.Errorf("evaluating %s: %w", result.Name, err)
		return tuning, nil, result, nil
	}
	result.Evaluation = eval
	_, result.SupportsProba = model.(driven.ProbabilisticClassifier)
	logger.Info("%s: accuracy %.4f", result.Name, eval.Accuracy)
	return tuning, model, result, nil
}

// persist encodes and saves the selected model with its vocabulary.
func (s *TrainingService) persist(
	ctx context.Context,
	runID string,
	best domain.ModelResult,
	model driven.Classifier,
	vocab driven.Vocabulary,
	trainY []int,
) (domain.ArtifactInfo, error) {
	modelBlob, err := s.factory.Encode(model)
	if err != nil {
		return domain.ArtifactInfo{}, fmt.Errorf("encoding %s: %w", best.Name, err)
	}
	vocabBlob, err := vocab.Encode()
	if err != nil {
		return domain.ArtifactInfo{}, fmt.Errorf("encoding vocabulary: %w", err)
	}

	artifact := &domain.Artifact{
		Info: domain.ArtifactInfo{
			ID:             uuid.New().String(),
			RunID:          runID,
			ModelName:      best.Name,
			Kind:           best.Kind,
			Accuracy:       best.Evaluation.Accuracy,
			ClassPriors:    classPriors(trainY),
			VocabularySize: vocab.Size(),
			LexiconVersion: s.normaliser.LexiconVersion(),
			CreatedAt:      s.now(),
		},
		Model:      modelBlob,
		Vocabulary: vocabBlob,
	}
	artifact.Seal()

	info, err := s.artifacts.Save(ctx, artifact)
	if err != nil {
		return domain.ArtifactInfo{}, fmt.Errorf("saving artifact: %w", err)
	}
	logger.Info("Saved artifact %s", info.ID)
	return info, nil
}

// reportPath picks the report destination: run option, then setting,
// then the default file in the report directory.
func (s *TrainingService) reportPath(opts domain.TrainOptions) string {
	if opts.ReportPath != "" {
		return opts.ReportPath
	}
	if s.settings.Report.Path != "" {
		return s.settings.Report.Path
	}
	if s.reportDir == "" {
		return ""
	}
	return filepath.Join(s.reportDir, ReportFileName)
}

// normaliseAll cleans every review text in order.
func (s *TrainingService) normaliseAll(ctx context.Context, reviews []domain.Review) ([]string, error) {
	defer logger.Timed("normalise")()
	cleaned := make([]string, len(reviews))
	for i := range reviews {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		cleaned[i] = s.normaliser.Normalise(reviews[i].Text)
	}
	return cleaned, nil
}

// classPriors returns the class frequencies of labels.
func classPriors(labels []int) [domain.NumClasses]float64 {
	var priors [domain.NumClasses]float64
	if len(labels) == 0 {
		return priors
	}
	for _, label := range labels {
		priors[label]++
	}
	for i := range priors {
		priors[i] /= float64(len(labels))
	}
	return priors
}

// pick returns texts at the given indices.
func pick(texts []string, rows []int) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = texts[row]
	}
	return out
}
