package domain

import "runtime"

const unknownDescription = "Unknown"

// StorageBackend selects where artifacts and run history are persisted.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite stores artifacts and runs in ~/.critic/data/critic.db.
	StorageSQLite StorageBackend = "sqlite"

	// StorageFile stores each artifact as a directory of JSON files.
	// Run history still uses SQLite.
	StorageFile StorageBackend = "file"

	// StorageMemory keeps everything in process memory (tests, dry runs).
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageFile, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageSQLite:
		return "SQLite (single database file)"
	case StorageFile:
		return "File (JSON blobs per artifact)"
	case StorageMemory:
		return "Memory (not persisted)"
	default:
		return unknownDescription
	}
}

// AllStorageBackends returns all available backends.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{StorageSQLite, StorageFile, StorageMemory}
}

// DatasetSettings controls how the input CSV is read.
type DatasetSettings struct {
	// TextColumn is the header name of the review text column.
	TextColumn string

	// LabelColumn is the header name of the sentiment column.
	LabelColumn string

	// LenientLabels maps any label other than "positive" to negative
	// instead of rejecting the row.
	LenientLabels bool
}

// NormaliseSettings controls text cleaning.
type NormaliseSettings struct {
	// StripMarkup removes HTML tags such as <br /> before cleaning.
	// Off by default, which leaves tag names like "br" in the text.
	StripMarkup bool
}

// SplitSettings controls the train/test split.
type SplitSettings struct {
	// TestSize is the held-out fraction, in (0, 1).
	TestSize float64

	// Seed drives the shuffle before splitting.
	Seed int64
}

// FeatureSettings configures the TF-IDF vectoriser.
type FeatureSettings struct {
	// MaxFeatures caps the vocabulary size.
	MaxFeatures int

	// NgramMin is the smallest n-gram length.
	NgramMin int

	// NgramMax is the largest n-gram length.
	NgramMax int
}

// TuningSettings configures the grid search.
type TuningSettings struct {
	// Enabled turns the grid search on.
	Enabled bool

	// Kind is the classifier family to tune.
	Kind ModelKind

	// Folds is the cross-validation fold count.
	Folds int

	// Workers bounds concurrent fold evaluations.
	Workers int

	// Grid is the parameter space.
	Grid ParamGrid
}

// ReportSettings configures the markdown report.
type ReportSettings struct {
	// Path is the output file. Empty means <data dir>/reports.
	Path string
}

// ServeSettings configures the REST API.
type ServeSettings struct {
	// Port is the HTTP listen port.
	Port int

	// RateLimit is the sustained predictions per second allowed.
	RateLimit float64

	// Burst is the token bucket size.
	Burst int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Dataset   DatasetSettings
	Normalise NormaliseSettings
	Split     SplitSettings
	Features  FeatureSettings
	Tuning    TuningSettings
	Storage   StorageBackend
	Report    ReportSettings
	Serve     ServeSettings
}

// DefaultTuningGrid returns the logistic regression grid searched by default.
func DefaultTuningGrid() ParamGrid {
	return ParamGrid{
		{Name: "C", Values: []any{0.1, 1.0, 10.0}},
		{Name: "penalty", Values: []any{"l1", "l2"}},
		{Name: "solver", Values: []any{"liblinear"}},
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// They reproduce the reference experiment: 80/20 split with seed 42,
// 10k uni+bigram features and a 3-fold logistic regression search.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Dataset: DatasetSettings{
			TextColumn:  "review",
			LabelColumn: "sentiment",
		},
		Split: SplitSettings{
			TestSize: 0.2,
			Seed:     42,
		},
		Features: FeatureSettings{
			MaxFeatures: 10000,
			NgramMin:    1,
			NgramMax:    2,
		},
		Tuning: TuningSettings{
			Enabled: true,
			Kind:    ModelLogistic,
			Folds:   3,
			Workers: runtime.NumCPU(),
			Grid:    DefaultTuningGrid(),
		},
		Storage: StorageSQLite,
		Serve: ServeSettings{
			Port:      8080,
			RateLimit: 20,
			Burst:     40,
		},
	}
}
