package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/critic/internal/core/domain"
)

func TestTrainCmd_Use(t *testing.T) {
	assert.Equal(t, "train", trainCmd.Use)
	assert.Equal(t, "Train and compare sentiment models", trainCmd.Short)
}

func TestTrainCmd_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"dataset", "d", ""},
		{"report", "r", ""},
		{"test-size", "", "0"},
		{"seed", "", "0"},
		{"no-tune", "", "false"},
		{"watch", "w", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := trainCmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestTrainCmd_RequiresDataset(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"train"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "dataset" not set`)
}

func TestTrainCmd_PassesOptions(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{
		"train", "--dataset", "imdb.csv", "--report", "out.md",
		"--test-size", "0.3", "--seed", "7", "--no-tune",
	})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())

	require.Len(t, ts.training.calls, 1)
	opts := ts.training.calls[0]
	assert.Equal(t, "imdb.csv", opts.DatasetPath)
	assert.Equal(t, "out.md", opts.ReportPath)
	assert.InDelta(t, 0.3, opts.TestSize, 1e-12)
	require.NotNil(t, opts.Seed)
	assert.Equal(t, int64(7), *opts.Seed)
	assert.True(t, opts.SkipTuning)
}

func TestTrainCmd_SeedUnsetLeavesDefault(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"train", "-d", "imdb.csv"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	require.Len(t, ts.training.calls, 1)
	assert.Nil(t, ts.training.calls[0].Seed)
	assert.False(t, ts.training.calls[0].SkipTuning)
}

func TestTrainCmd_PrintsSummary(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"train", "--dataset", "imdb.csv"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Training on imdb.csv")
	assert.Contains(t, out, "Reviews: 20 (10 positive, 10 negative)")
	assert.Contains(t, out, "Naive Bayes")
	assert.Contains(t, out, "1.0000")
	assert.Contains(t, out, "Best model: Linear SVM")
	assert.Contains(t, out, "Saved model: Naive Bayes")
	assert.Contains(t, out, "Artifact: artifact-1")
	assert.Contains(t, out, "Report: /tmp/report.md")
}

func TestTrainCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.training.err = domain.ErrEmptyDataset

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"train", "--dataset", "empty.csv"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, domain.ErrEmptyDataset)
	assert.Contains(t, err.Error(), "training failed")
}

func TestTrainCmd_WatchRetrains(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.watcher.fires = 2

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"train", "--dataset", "imdb.csv", "--watch"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())

	assert.Len(t, ts.training.calls, 3)
	assert.Equal(t, "imdb.csv", ts.watcher.path)
	assert.Contains(t, buf.String(), "Watching imdb.csv")
	assert.Contains(t, buf.String(), "imdb.csv changed, retraining")
}

func TestTrainCmd_WatchKeepsGoingAfterFailure(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.watcher.fires = 1

	buf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetArgs([]string{"train", "--dataset", "imdb.csv", "--watch"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	// First run succeeds, the retrain fails.
	ts.watcher.onFire = func() { ts.training.err = errors.New("bad csv") }

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, errBuf.String(), "bad csv")
}

func TestTrainCmd_NoService(t *testing.T) {
	SetServices(Services{})
	defer resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"train", "--dataset", "x.csv"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	assert.EqualError(t, err, "training service not configured")
}
