package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/critic/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Critic resources.
	uriScheme = "critic://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing runs.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Training runs, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	// Template for a single run record.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}",
		Name:        "run",
		Description: "Full record of a training run, including model scores and tuning",
		MIMEType:    "application/json",
	}, s.handleRunResource)

	// Static resource for listing saved models.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "artifacts",
		Name:        "artifacts",
		Description: "Saved models available for prediction, newest first",
		MIMEType:    "application/json",
	}, s.handleArtifactsResource)
}

// runSummary is the list view of a training run.
type runSummary struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Reviews    int       `json:"reviews"`
	BestModel  string    `json:"best_model"`
	Accuracy   float64   `json:"accuracy"`
	ArtifactID string    `json:"artifact_id"`
}

// handleRunsResource returns a summary of every run.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Runs == nil {
		return jsonResult(req.Params.URI, []runSummary{})
	}

	runs, err := s.ports.Runs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	summaries := make([]runSummary, len(runs))
	for i := range runs {
		run := runs[i]
		summaries[i] = runSummary{
			ID:         run.ID,
			StartedAt:  run.StartedAt,
			Reviews:    run.Dataset.Total,
			BestModel:  run.BestModel,
			ArtifactID: run.ArtifactID,
		}
		if best, ok := run.Result(run.BestModel); ok {
			summaries[i].Accuracy = best.Evaluation.Accuracy
		}
	}
	return jsonResult(req.Params.URI, summaries)
}

// handleRunResource returns the full record of one run.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Runs == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract runId from URI: critic://runs/{runId}
	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	run, err := s.ports.Runs.Get(ctx, runID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting run: %w", err)
	}
	return jsonResult(req.Params.URI, run)
}

// handleArtifactsResource returns metadata of every saved model.
func (s *Server) handleArtifactsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Artifacts == nil {
		return jsonResult(req.Params.URI, []domain.ArtifactInfo{})
	}

	infos, err := s.ports.Artifacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	if infos == nil {
		infos = []domain.ArtifactInfo{}
	}
	return jsonResult(req.Params.URI, infos)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRunID extracts the run ID from a URI like critic://runs/{runId}.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
