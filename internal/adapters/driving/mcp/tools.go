package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// PredictInput is the input schema for the predict_sentiment tool.
type PredictInput struct {
	Text       string `json:"text" jsonschema:"the review text to classify"`
	ArtifactID string `json:"artifact_id,omitempty" jsonschema:"saved model to use (default latest)"`
}

// PredictOutput is the output schema for the predict_sentiment tool.
type PredictOutput struct {
	Sentiment           string  `json:"sentiment"`
	Confidence          float64 `json:"confidence"`
	ProbabilityPositive float64 `json:"probability_positive"`
	ProbabilityNegative float64 `json:"probability_negative"`
	Fallback            bool    `json:"fallback,omitempty"`
	ArtifactID          string  `json:"artifact_id"`
}

// BatchPredictInput is the input schema for the predict_sentiment_batch tool.
type BatchPredictInput struct {
	Texts      []string `json:"texts" jsonschema:"review texts to classify"`
	ArtifactID string   `json:"artifact_id,omitempty" jsonschema:"saved model to use (default latest)"`
}

// BatchPredictOutput is the output schema for the predict_sentiment_batch tool.
type BatchPredictOutput struct {
	Predictions []PredictOutput `json:"predictions"`
	Positive    int             `json:"positive"`
	Negative    int             `json:"negative"`
}

// maxBatch bounds the texts accepted by one batch call.
const maxBatch = 1000

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "predict_sentiment",
		Description: "Classify a movie review as positive or negative with a confidence score",
	}, s.handlePredict)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "predict_sentiment_batch",
		Description: "Classify several movie reviews at once and count each sentiment",
	}, s.handleBatchPredict)
}

// handlePredict handles the predict_sentiment tool invocation.
// Text that cleans to nothing gets the prediction service's fallback answer.
func (s *Server) handlePredict(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PredictInput,
) (*mcp.CallToolResult, PredictOutput, error) {
	prediction, err := s.ports.Prediction.Predict(ctx, input.Text, domain.PredictOptions{
		ArtifactID: input.ArtifactID,
	})
	if err != nil {
		return nil, PredictOutput{}, err
	}
	return nil, toOutput(prediction), nil
}

// handleBatchPredict handles the predict_sentiment_batch tool invocation.
func (s *Server) handleBatchPredict(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BatchPredictInput,
) (*mcp.CallToolResult, BatchPredictOutput, error) {
	if len(input.Texts) == 0 {
		return nil, BatchPredictOutput{}, errors.New("texts is required")
	}
	if len(input.Texts) > maxBatch {
		return nil, BatchPredictOutput{}, errors.New("too many texts in one batch")
	}

	opts := domain.PredictOptions{ArtifactID: input.ArtifactID}
	output := BatchPredictOutput{
		Predictions: make([]PredictOutput, len(input.Texts)),
	}
	for i, text := range input.Texts {
		prediction, err := s.ports.Prediction.Predict(ctx, text, opts)
		if err != nil {
			return nil, BatchPredictOutput{}, err
		}
		// Pin the artifact so the whole batch uses one model.
		opts.ArtifactID = prediction.ArtifactID

		output.Predictions[i] = toOutput(prediction)
		if prediction.Sentiment == domain.SentimentPositive {
			output.Positive++
		} else {
			output.Negative++
		}
	}
	return nil, output, nil
}

func toOutput(p domain.Prediction) PredictOutput {
	return PredictOutput{
		Sentiment:           p.Sentiment.String(),
		Confidence:          p.Confidence,
		ProbabilityPositive: p.ProbabilityPositive,
		ProbabilityNegative: p.ProbabilityNegative,
		Fallback:            p.Fallback,
		ArtifactID:          p.ArtifactID,
	}
}
