package main

import (
	"fmt"
	"path/filepath"

	configfile "github.com/custodia-labs/critic/internal/adapters/driven/config/file"
	"github.com/custodia-labs/critic/internal/adapters/driven/dataset"
	"github.com/custodia-labs/critic/internal/adapters/driven/report/markdown"
	filestore "github.com/custodia-labs/critic/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/critic/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/critic/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/critic/internal/adapters/driven/watch"
	"github.com/custodia-labs/critic/internal/adapters/driving/cli"
	"github.com/custodia-labs/critic/internal/classifiers"
	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/core/services"
	"github.com/custodia-labs/critic/internal/features/tfidf"
	"github.com/custodia-labs/critic/internal/lexicon"
	"github.com/custodia-labs/critic/internal/logger"
	"github.com/custodia-labs/critic/internal/normalisers/english"
)

// Directories under the home directory.
const (
	dataDirName      = "data"
	artifactsDirName = "artifacts"
	reportsDirName   = "reports"
)

// stores bundles the persistence chosen by the storage setting.
type stores struct {
	artifacts driven.ArtifactStore
	runs      driven.RunStore
	close     func()
}

// bootstrap wires every adapter and service for home. An empty home
// resolves to $CRITIC_HOME or ~/.critic.
func bootstrap(home string) (cli.Services, func(), error) {
	if home == "" {
		dir, err := configfile.DefaultHome()
		if err != nil {
			return cli.Services{}, nil, fmt.Errorf("getting home directory: %w", err)
		}
		home = dir
	}
	logger.Debug("Using home directory %s", home)

	configStore, err := configfile.NewConfigStore(home)
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := settingsService.Validate(); err != nil {
		// Still start so that 'critic settings set' can repair the file.
		logger.Warn("Invalid settings in %s: %v", configStore.Path(), err)
	}

	dataDir := filepath.Join(home, dataDirName)
	st, err := openStores(settings.Storage, dataDir)
	if err != nil {
		return cli.Services{}, nil, err
	}

	normaliser := english.New(lexicon.English(),
		english.WithMarkupStripping(settings.Normalise.StripMarkup))
	extractor := tfidf.NewFromSettings(settings.Features)
	registry := classifiers.NewDefaultRegistry()

	training := services.NewTrainingService(
		dataset.NewCSVReaderFromSettings(settings.Dataset),
		normaliser,
		extractor,
		registry,
		st.artifacts,
		*settings,
	)
	training.SetRunStore(st.runs)
	training.SetReportWriter(markdown.NewWriter(), filepath.Join(dataDir, reportsDirName))
	training.SetModelSpecs(settingsService.ModelSpecs())

	prediction := services.NewPredictionService(st.artifacts, registry, extractor, normaliser)
	artifacts := services.NewArtifactService(st.artifacts)
	artifacts.SetPredictionService(prediction)

	return cli.Services{
		Training:   training,
		Prediction: prediction,
		Runs:       services.NewRunService(st.runs),
		Artifacts:  artifacts,
		Settings:   settingsService,
		Watcher:    watch.NewFileWatcher(),
	}, st.close, nil
}

// openStores opens the artifact and run stores for backend under dataDir.
func openStores(backend domain.StorageBackend, dataDir string) (stores, error) {
	switch backend {
	case domain.StorageMemory:
		return stores{
			artifacts: memory.NewArtifactStore(),
			runs:      memory.NewRunStore(),
			close:     func() {},
		}, nil

	case domain.StorageFile:
		artifacts, err := filestore.NewArtifactStore(filepath.Join(dataDir, artifactsDirName))
		if err != nil {
			return stores{}, fmt.Errorf("opening artifact directory: %w", err)
		}
		db, err := sqlite.NewStore(dataDir)
		if err != nil {
			return stores{}, fmt.Errorf("opening database: %w", err)
		}
		return stores{artifacts: artifacts, runs: db.RunStore(), close: closer(db)}, nil

	case domain.StorageSQLite, "":
		db, err := sqlite.NewStore(dataDir)
		if err != nil {
			return stores{}, fmt.Errorf("opening database: %w", err)
		}
		return stores{artifacts: db.ArtifactStore(), runs: db.RunStore(), close: closer(db)}, nil

	default:
		return stores{}, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, backend)
	}
}

func closer(db *sqlite.Store) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Warn("Closing database: %v", err)
		}
	}
}
