package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var artifactsCmd = &cobra.Command{
	Use:     "artifacts",
	Aliases: []string{"models"},
	Short:   "Manage saved models",
}

var artifactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved models, newest first",
	Args:  cobra.NoArgs,
	RunE:  runArtifactsList,
}

var artifactsRemoveCmd = &cobra.Command{
	Use:     "rm [artifact-id]",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a saved model",
	Args:    cobra.ExactArgs(1),
	RunE:    runArtifactsRemove,
}

func init() {
	artifactsCmd.AddCommand(artifactsListCmd)
	artifactsCmd.AddCommand(artifactsRemoveCmd)
	rootCmd.AddCommand(artifactsCmd)
}

func runArtifactsList(cmd *cobra.Command, _ []string) error {
	if artifactService == nil {
		return errors.New("artifact service not configured")
	}

	infos, err := artifactService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list artifacts: %w", err)
	}
	if len(infos) == 0 {
		cmd.Println("No saved models.")
		return nil
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.ID,
			info.ModelName,
			fmt.Sprintf("%.4f", info.Accuracy),
			fmt.Sprint(info.VocabularySize),
			info.CreatedAt.Local().Format(time.DateTime),
		})
	}

	out := newOutput(cmd.OutOrStdout())
	cmd.Println(out.Table([]string{"ID", "Model", "Accuracy", "Features", "Created"}, rows))
	return nil
}

func runArtifactsRemove(cmd *cobra.Command, args []string) error {
	if artifactService == nil {
		return errors.New("artifact service not configured")
	}

	if err := artifactService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	cmd.Printf("Deleted artifact %s\n", args[0])
	return nil
}
