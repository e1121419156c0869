package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/core/ports/driving"
	"github.com/custodia-labs/critic/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose bool
	homeDir string
)

// Services wired by the composition root.
var (
	trainingService   driving.TrainingService
	predictionService driving.PredictionService
	runService        driving.RunService
	artifactService   driving.ArtifactService
	settingsService   driving.SettingsService
	fileWatcher       driven.FileWatcher
)

// Services holds the driving ports the commands call.
type Services struct {
	Training   driving.TrainingService
	Prediction driving.PredictionService
	Runs       driving.RunService
	Artifacts  driving.ArtifactService
	Settings   driving.SettingsService
	Watcher    driven.FileWatcher
}

// Bootstrap builds the services for a home directory. The returned
// cleanup closes whatever stores were opened.
type Bootstrap func(home string) (Services, func(), error)

var (
	bootstrap    Bootstrap
	bootstrapped func()
)

var rootCmd = &cobra.Command{
	Use:   "critic",
	Short: "Sentiment analysis for movie reviews",
	Long: `Critic trains and serves sentiment classifiers for movie reviews.

It cleans review text, extracts TF-IDF features, compares Naive Bayes,
logistic regression, linear SVM and random forest models, optionally tunes
logistic regression with a cross-validated grid search, and persists the
best probabilistic model for prediction.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "data and config directory (default $CRITIC_HOME or ~/.critic)")
}

// SetServices installs the services used by all commands.
func SetServices(s Services) {
	trainingService = s.Training
	predictionService = s.Prediction
	runService = s.Runs
	artifactService = s.Artifacts
	settingsService = s.Settings
	fileWatcher = s.Watcher
}

// SetBootstrap installs a lazy service builder. It runs once, before the
// first command that needs services, after flags are parsed.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. ctx is cancelled on interrupt by the caller
// and reaches every command through cmd.Context().
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	if cleanupErr := teardown(rootCmd, nil); err == nil {
		err = cleanupErr
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || bootstrapped != nil || !needsServices(cmd) {
		return nil
	}

	services, cleanup, err := bootstrap(homeDir)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(services)
	bootstrapped = cleanup
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if bootstrapped == nil {
		return nil
	}
	cleanup := bootstrapped
	bootstrapped = nil
	cleanup()
	return nil
}

// needsServices reports whether cmd touches stores or settings.
// The bare root command only prints help.
func needsServices(cmd *cobra.Command) bool {
	return cmd != versionCmd && cmd.HasParent()
}
