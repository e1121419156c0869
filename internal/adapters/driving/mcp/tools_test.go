package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/critic/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handlePredict(t *testing.T) {
	ctx := context.Background()

	t.Run("returns prediction", func(t *testing.T) {
		mock := &mockPredictionService{}
		server := newTestServer(t, &Ports{Prediction: mock})

		_, output, err := server.handlePredict(ctx, nil, PredictInput{Text: "a good film"})

		require.NoError(t, err)
		assert.Equal(t, "positive", output.Sentiment)
		assert.InDelta(t, 0.9, output.Confidence, 1e-9)
		assert.InDelta(t, 1.0, output.ProbabilityPositive+output.ProbabilityNegative, 1e-9)
		assert.Equal(t, "artifact-1", output.ArtifactID)
	})

	t.Run("passes artifact ID", func(t *testing.T) {
		mock := &mockPredictionService{}
		server := newTestServer(t, &Ports{Prediction: mock})

		_, output, err := server.handlePredict(ctx, nil, PredictInput{Text: "dull", ArtifactID: "a-9"})

		require.NoError(t, err)
		assert.Equal(t, "a-9", mock.opts[0].ArtifactID)
		assert.Equal(t, "negative", output.Sentiment)
	})

	t.Run("empty text gets the fallback answer", func(t *testing.T) {
		mock := &mockPredictionService{}
		server := newTestServer(t, &Ports{Prediction: mock})

		_, output, err := server.handlePredict(ctx, nil, PredictInput{Text: ""})

		require.NoError(t, err)
		assert.Equal(t, []string{""}, mock.texts)
		assert.True(t, output.Fallback)
		assert.Equal(t, "positive", output.Sentiment)
		assert.InDelta(t, 1.0, output.ProbabilityPositive+output.ProbabilityNegative, 1e-9)
	})

	t.Run("returns error when not trained", func(t *testing.T) {
		server := newTestServer(t, &Ports{Prediction: &mockPredictionService{err: domain.ErrNotTrained}})

		_, _, err := server.handlePredict(ctx, nil, PredictInput{Text: "anything"})

		assert.ErrorIs(t, err, domain.ErrNotTrained)
	})
}

func TestServer_handleBatchPredict(t *testing.T) {
	ctx := context.Background()

	t.Run("counts sentiments and pins the artifact", func(t *testing.T) {
		mock := &mockPredictionService{}
		server := newTestServer(t, &Ports{Prediction: mock})

		_, output, err := server.handleBatchPredict(ctx, nil, BatchPredictInput{
			Texts: []string{"good acting", "boring", "good plot"},
		})

		require.NoError(t, err)
		require.Len(t, output.Predictions, 3)
		assert.Equal(t, 2, output.Positive)
		assert.Equal(t, 1, output.Negative)
		assert.Equal(t, "", mock.opts[0].ArtifactID)
		assert.Equal(t, "artifact-1", mock.opts[1].ArtifactID)
		assert.Equal(t, "artifact-1", mock.opts[2].ArtifactID)
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		server := newTestServer(t, &Ports{Prediction: &mockPredictionService{}})

		_, _, err := server.handleBatchPredict(ctx, nil, BatchPredictInput{})

		require.Error(t, err)
	})

	t.Run("oversized batch is rejected", func(t *testing.T) {
		server := newTestServer(t, &Ports{Prediction: &mockPredictionService{}})

		_, _, err := server.handleBatchPredict(ctx, nil, BatchPredictInput{Texts: make([]string, maxBatch+1)})

		require.Error(t, err)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		mock := &mockPredictionService{err: domain.ErrProbabilityUnsupported}
		server := newTestServer(t, &Ports{Prediction: mock})

		_, _, err := server.handleBatchPredict(ctx, nil, BatchPredictInput{Texts: []string{"a", "b"}})

		assert.ErrorIs(t, err, domain.ErrProbabilityUnsupported)
		assert.Len(t, mock.texts, 1)
	})
}
