// Package mcp provides an MCP (Model Context Protocol) server adapter for Critic.
// It lets AI assistants classify review sentiment and browse training history.
package mcp

import "errors"

// ErrMissingPredictionService is returned when the prediction service is not provided.
var ErrMissingPredictionService = errors.New("mcp: prediction service is required")
