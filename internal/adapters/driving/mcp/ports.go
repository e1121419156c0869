package mcp

import (
	"github.com/custodia-labs/critic/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Prediction classifies review text.
	Prediction driving.PredictionService

	// Runs exposes training history.
	Runs driving.RunService

	// Artifacts lists saved models.
	Artifacts driving.ArtifactService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Prediction == nil {
		return ErrMissingPredictionService
	}
	// Runs and Artifacts are optional; their resources read as empty lists
	return nil
}
