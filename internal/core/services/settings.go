package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyTextColumn    = "dataset.text_column"
	keyLabelColumn   = "dataset.label_column"
	keyLenientLabels = "dataset.lenient_labels"
	keyStripMarkup   = "normalise.strip_markup"
	keyTestSize      = "split.test_size"
	keySeed          = "split.seed"
	keyMaxFeatures   = "features.max_features"
	keyNgramMin      = "features.ngram_min"
	keyNgramMax      = "features.ngram_max"
	keyTuningEnabled = "tuning.enabled"
	keyTuningKind    = "tuning.kind"
	keyTuningFolds   = "tuning.folds"
	keyTuningWorkers = "tuning.workers"
	keyStorage       = "storage.backend"
	keyReportPath    = "report.path"
	keyServePort     = "serve.port"
	keyServeRate     = "serve.rate_limit"
	keyServeBurst    = "serve.burst"

	// keyGridPrefix holds one list per tuned parameter, e.g. tuning.grid.C.
	keyGridPrefix = "tuning.grid."

	// keyModelsPrefix holds per-kind parameter overrides, e.g. models.linear_svm.C.
	keyModelsPrefix = "models."
)

// valueType is how a setting's string form is parsed.
type valueType int

const (
	typeString valueType = iota
	typeInt
	typeFloat
	typeBool
)

// settingTypes lists every fixed key.
var settingTypes = map[string]valueType{
	keyTextColumn:    typeString,
	keyLabelColumn:   typeString,
	keyLenientLabels: typeBool,
	keyStripMarkup:   typeBool,
	keyTestSize:      typeFloat,
	keySeed:          typeInt,
	keyMaxFeatures:   typeInt,
	keyNgramMin:      typeInt,
	keyNgramMax:      typeInt,
	keyTuningEnabled: typeBool,
	keyTuningKind:    typeString,
	keyTuningFolds:   typeInt,
	keyTuningWorkers: typeInt,
	keyStorage:       typeString,
	keyReportPath:    typeString,
	keyServePort:     typeInt,
	keyServeRate:     typeFloat,
	keyServeBurst:    typeInt,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// Missing or unrecognised values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Dataset: domain.DatasetSettings{
			TextColumn:    s.getString(keyTextColumn, defaults.Dataset.TextColumn),
			LabelColumn:   s.getString(keyLabelColumn, defaults.Dataset.LabelColumn),
			LenientLabels: s.getBool(keyLenientLabels, defaults.Dataset.LenientLabels),
		},
		Normalise: domain.NormaliseSettings{
			StripMarkup: s.getBool(keyStripMarkup, defaults.Normalise.StripMarkup),
		},
		Split: domain.SplitSettings{
			TestSize: s.getFloat(keyTestSize, defaults.Split.TestSize),
			Seed:     int64(s.getInt(keySeed, int(defaults.Split.Seed))),
		},
		Features: domain.FeatureSettings{
			MaxFeatures: s.getInt(keyMaxFeatures, defaults.Features.MaxFeatures),
			NgramMin:    s.getInt(keyNgramMin, defaults.Features.NgramMin),
			NgramMax:    s.getInt(keyNgramMax, defaults.Features.NgramMax),
		},
		Tuning: domain.TuningSettings{
			Enabled: s.getBool(keyTuningEnabled, defaults.Tuning.Enabled),
			Kind:    s.getModelKind(defaults.Tuning.Kind),
			Folds:   s.getInt(keyTuningFolds, defaults.Tuning.Folds),
			Workers: s.getInt(keyTuningWorkers, defaults.Tuning.Workers),
			Grid:    s.getGrid(defaults.Tuning.Grid),
		},
		Storage: s.getStorage(defaults.Storage),
		Report: domain.ReportSettings{
			Path: s.getString(keyReportPath, defaults.Report.Path),
		},
		Serve: domain.ServeSettings{
			Port:      s.getInt(keyServePort, defaults.Serve.Port),
			RateLimit: s.getFloat(keyServeRate, defaults.Serve.RateLimit),
			Burst:     s.getInt(keyServeBurst, defaults.Serve.Burst),
		},
	}

	return settings, nil
}

// Set parses value for key and persists it.
func (s *SettingsService) Set(key, value string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch {
	case strings.HasPrefix(key, keyGridPrefix):
		name := strings.TrimPrefix(key, keyGridPrefix)
		if name == "" {
			return fmt.Errorf("%w: grid key needs a parameter name", domain.ErrInvalidInput)
		}
		values := parseList(value)
		if len(values) == 0 {
			return fmt.Errorf("%w: grid %s needs at least one value", domain.ErrInvalidInput, name)
		}
		return s.configStore.Set(key, values)

	case strings.HasPrefix(key, keyModelsPrefix):
		rest := strings.TrimPrefix(key, keyModelsPrefix)
		kind, param, ok := strings.Cut(rest, ".")
		if !ok || param == "" {
			return fmt.Errorf("%w: model key must be models.<kind>.<param>", domain.ErrInvalidInput)
		}
		if !domain.ModelKind(kind).IsValid() {
			return fmt.Errorf("%w: unknown model kind %q", domain.ErrUnsupportedType, kind)
		}
		return s.configStore.Set(key, parseScalar(value))
	}

	typ, ok := settingTypes[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	parsed, err := parseTyped(typ, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := validateValue(key, parsed); err != nil {
		return err
	}
	return s.configStore.Set(key, parsed)
}

// Keys returns the settable keys, sorted. Grid and model keys are shown
// as patterns.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingTypes)+2)
	for key := range settingTypes {
		keys = append(keys, key)
	}
	keys = append(keys, keyGridPrefix+"<param>", keyModelsPrefix+"<kind>.<param>")
	sort.Strings(keys)
	return keys
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return ValidateSettings(*settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ModelSpecs returns the default model specs with any models.<kind>.<param>
// overrides from config applied.
func (s *SettingsService) ModelSpecs() []domain.ModelSpec {
	specs := domain.DefaultModelSpecs()
	for i := range specs {
		prefix := keyModelsPrefix + specs[i].Kind.String() + "."
		overrides := domain.Params{}
		for _, key := range s.configStore.Keys(prefix) {
			if v, ok := s.configStore.Get(key); ok {
				overrides[strings.TrimPrefix(key, prefix)] = v
			}
		}
		if len(overrides) > 0 {
			specs[i].Params = specs[i].Params.Merge(overrides)
		}
	}
	return specs
}

// ValidateSettings checks ranges and cross-field constraints.
func ValidateSettings(settings domain.AppSettings) error {
	var problems []string
	if settings.Dataset.TextColumn == "" || settings.Dataset.LabelColumn == "" {
		problems = append(problems, "dataset columns must be named")
	}
	if settings.Split.TestSize <= 0 || settings.Split.TestSize >= 1 {
		problems = append(problems, fmt.Sprintf("split.test_size %v must be in (0, 1)", settings.Split.TestSize))
	}
	if settings.Features.MaxFeatures < 1 {
		problems = append(problems, "features.max_features must be positive")
	}
	if settings.Features.NgramMin < 1 || settings.Features.NgramMax < settings.Features.NgramMin {
		problems = append(problems, fmt.Sprintf("n-gram range (%d, %d) is invalid",
			settings.Features.NgramMin, settings.Features.NgramMax))
	}
	if settings.Tuning.Enabled {
		if !settings.Tuning.Kind.IsValid() {
			problems = append(problems, fmt.Sprintf("tuning.kind %q is unknown", settings.Tuning.Kind))
		}
		if settings.Tuning.Folds < 2 {
			problems = append(problems, "tuning.folds must be at least 2")
		}
		if settings.Tuning.Workers < 1 {
			problems = append(problems, "tuning.workers must be at least 1")
		}
		if settings.Tuning.Grid.Size() == 0 {
			problems = append(problems, "tuning grid is empty")
		}
	}
	if !settings.Storage.IsValid() {
		problems = append(problems, fmt.Sprintf("storage.backend %q is unknown", settings.Storage))
	}
	if settings.Serve.Port < 1 || settings.Serve.Port > 65535 {
		problems = append(problems, fmt.Sprintf("serve.port %d is out of range", settings.Serve.Port))
	}
	if settings.Serve.RateLimit <= 0 || settings.Serve.Burst < 1 {
		problems = append(problems, "serve rate limit and burst must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// validateValue rejects single values that can never be valid.
func validateValue(key string, v any) error {
	switch key {
	case keyTuningKind:
		if !domain.ModelKind(v.(string)).IsValid() {
			return fmt.Errorf("%w: unknown model kind %q", domain.ErrUnsupportedType, v)
		}
	case keyStorage:
		if !domain.StorageBackend(v.(string)).IsValid() {
			return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, v)
		}
	case keyTestSize:
		if f := v.(float64); f <= 0 || f >= 1 {
			return fmt.Errorf("%w: %s must be in (0, 1)", domain.ErrInvalidInput, key)
		}
	case keyMaxFeatures, keyNgramMin, keyNgramMax, keyTuningWorkers, keyServeBurst:
		if v.(int) < 1 {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
	case keyTuningFolds:
		if v.(int) < 2 {
			return fmt.Errorf("%w: %s must be at least 2", domain.ErrInvalidInput, key)
		}
	case keyServePort:
		if p := v.(int); p < 1 || p > 65535 {
			return fmt.Errorf("%w: %s is out of range", domain.ErrInvalidInput, key)
		}
	case keyServeRate:
		if v.(float64) <= 0 {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
	}
	return nil
}

// parseTyped converts a setting's string form.
func parseTyped(typ valueType, value string) (any, error) {
	switch typ {
	case typeInt:
		return strconv.Atoi(value)
	case typeFloat:
		return strconv.ParseFloat(value, 64)
	case typeBool:
		return strconv.ParseBool(value)
	default:
		return value, nil
	}
}

// parseScalar guesses the type of a free-form value: integer, then
// float, then bool, else string.
func parseScalar(value string) any {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}

// parseList splits a comma-separated list of scalars.
func parseList(value string) []any {
	var out []any
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, parseScalar(part))
	}
	return out
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getModelKind(defaultVal domain.ModelKind) domain.ModelKind {
	kind := domain.ModelKind(s.configStore.GetString(keyTuningKind))
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}

func (s *SettingsService) getStorage(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorage))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getGrid(defaultVal domain.ParamGrid) domain.ParamGrid {
	keys := s.configStore.Keys(keyGridPrefix)
	if len(keys) == 0 {
		return defaultVal
	}
	axes := make(map[string][]any, len(keys))
	for _, key := range keys {
		if values := s.configStore.GetSlice(key); len(values) > 0 {
			axes[strings.TrimPrefix(key, keyGridPrefix)] = values
		}
	}
	if len(axes) == 0 {
		return defaultVal
	}
	return domain.GridFromMap(axes)
}
