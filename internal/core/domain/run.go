package domain

import "time"

// RunRecord is the persisted history entry of one training run.
type RunRecord struct {
	// ID is the unique identifier (a UUID).
	ID string `json:"id"`

	// Dataset summarises the input and its split.
	Dataset DatasetSummary `json:"dataset"`

	// Results holds every model result in registry order.
	Results []ModelResult `json:"results"`

	// Tuning is the grid-search outcome, nil when tuning was disabled.
	Tuning *TuningResult `json:"tuning,omitempty"`

	// BestOverall is the highest-accuracy model, probabilistic or not.
	BestOverall string `json:"best_overall"`

	// BestModel is the model that was persisted.
	BestModel string `json:"best_model"`

	// ArtifactID identifies the persisted artifact.
	ArtifactID string `json:"artifact_id"`

	// VocabularySize is the number of TF-IDF features.
	VocabularySize int `json:"vocabulary_size"`

	// ReportPath is where the markdown report was written.
	ReportPath string `json:"report_path,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run completed.
	FinishedAt time.Time `json:"finished_at"`
}

// Result returns the named model result.
func (r RunRecord) Result(name string) (ModelResult, bool) {
	for i := range r.Results {
		if r.Results[i].Name == name {
			return r.Results[i], true
		}
	}
	return ModelResult{}, false
}

// Report bundles everything the report writer renders.
type Report struct {
	// Run is the training run being reported.
	Run RunRecord

	// PreprocessingSteps lists the cleaning stages applied.
	PreprocessingSteps []string

	// Features is the vectoriser configuration.
	Features FeatureSettings

	// LexiconVersion identifies the stopword/lemma resources.
	LexiconVersion string
}

// TrainOptions overrides settings for a single training run.
// Zero values fall back to the configured settings.
type TrainOptions struct {
	// DatasetPath is the CSV to train on. Required.
	DatasetPath string

	// ReportPath overrides report.path.
	ReportPath string

	// TestSize overrides split.test_size when non-zero.
	TestSize float64

	// Seed overrides split.seed when non-nil.
	Seed *int64

	// SkipTuning disables the grid search for this run.
	SkipTuning bool
}

// PredictOptions selects the artifact used for a prediction.
type PredictOptions struct {
	// ArtifactID pins a saved artifact. Empty means the latest.
	ArtifactID string
}
