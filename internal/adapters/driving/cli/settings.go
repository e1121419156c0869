package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/critic/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure dataset, feature, tuning, storage and server settings.

Settings are stored in config.toml under the home directory. Use 'set' to
change a single key or 'wizard' for a guided setup.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key.

Grid values are comma-separated lists:
  critic settings set tuning.grid.C "0.5, 1, 5"

Per-model hyperparameters use models.<kind>.<param>:
  critic settings set models.random_forest.n_estimators 200

Run 'critic settings keys' for the full list.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the common settings step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Dataset]")
	cmd.Printf("  Text column: %s\n", settings.Dataset.TextColumn)
	cmd.Printf("  Label column: %s\n", settings.Dataset.LabelColumn)
	cmd.Printf("  Lenient labels: %s\n", yesNo(settings.Dataset.LenientLabels))
	cmd.Printf("  Strip markup: %s\n", yesNo(settings.Normalise.StripMarkup))
	cmd.Println()

	cmd.Println("[Split]")
	cmd.Printf("  Test size: %g\n", settings.Split.TestSize)
	cmd.Printf("  Seed: %d\n", settings.Split.Seed)
	cmd.Println()

	cmd.Println("[Features]")
	cmd.Printf("  Max features: %d\n", settings.Features.MaxFeatures)
	cmd.Printf("  N-gram range: (%d, %d)\n", settings.Features.NgramMin, settings.Features.NgramMax)
	cmd.Println()

	cmd.Println("[Tuning]")
	if settings.Tuning.Enabled {
		cmd.Printf("  Enabled: yes\n")
		cmd.Printf("  Model: %s\n", settings.Tuning.Kind.Description())
		cmd.Printf("  Folds: %d\n", settings.Tuning.Folds)
		cmd.Printf("  Workers: %d\n", settings.Tuning.Workers)
		for _, axis := range settings.Tuning.Grid {
			cmd.Printf("  Grid %s: %v\n", axis.Name, axis.Values)
		}
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Description())
	report := settings.Report.Path
	if report == "" {
		report = "(data directory)"
	}
	cmd.Printf("  Report: %s\n", report)
	cmd.Println()

	cmd.Println("[Serve]")
	cmd.Printf("  Port: %d\n", settings.Serve.Port)
	cmd.Printf("  Rate limit: %g/s (burst %d)\n", settings.Serve.RateLimit, settings.Serve.Burst)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'critic settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	current, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Critic Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Storage backend
	cmd.Println("Step 1: Select Storage Backend")
	cmd.Println("------------------------------")
	backends := domain.AllStorageBackends()
	defaultBackend := 1
	for i, backend := range backends {
		cmd.Printf("  %d. %s\n", i+1, backend.Description())
		if backend == current.Storage {
			defaultBackend = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", defaultBackend)
	selected := backends[parseChoice(readLine(reader), len(backends), defaultBackend)-1]
	if err := settingsService.Set("storage.backend", selected.String()); err != nil {
		return fmt.Errorf("failed to set storage backend: %w", err)
	}
	cmd.Printf("Set storage backend to: %s\n\n", selected.Description())

	// Step 2: Train/test split
	cmd.Println("Step 2: Train/Test Split")
	cmd.Println("------------------------")
	cmd.Printf("Held-out fraction [%g]: ", current.Split.TestSize)
	if input := readLine(reader); input != "" {
		if err := settingsService.Set("split.test_size", input); err != nil {
			return fmt.Errorf("failed to set test size: %w", err)
		}
	}
	cmd.Printf("Shuffle seed [%d]: ", current.Split.Seed)
	if input := readLine(reader); input != "" {
		if err := settingsService.Set("split.seed", input); err != nil {
			return fmt.Errorf("failed to set seed: %w", err)
		}
	}
	cmd.Println()

	// Step 3: Tuning
	cmd.Println("Step 3: Hyperparameter Tuning")
	cmd.Println("-----------------------------")
	cmd.Printf("Run the grid search after training? [%s]: ", yesNo(current.Tuning.Enabled))
	tune := parseYesNo(readLine(reader), current.Tuning.Enabled)
	if err := settingsService.Set("tuning.enabled", strconv.FormatBool(tune)); err != nil {
		return fmt.Errorf("failed to set tuning: %w", err)
	}
	if tune {
		cmd.Printf("Cross-validation folds [%d]: ", current.Tuning.Folds)
		if input := readLine(reader); input != "" {
			if err := settingsService.Set("tuning.folds", input); err != nil {
				return fmt.Errorf("failed to set folds: %w", err)
			}
		}
	}
	cmd.Println()

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func parseYesNo(input string, defaultVal bool) bool {
	switch strings.ToLower(input) {
	case "y", "yes", "true":
		return true
	case "n", "no", "false":
		return false
	default:
		return defaultVal
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
