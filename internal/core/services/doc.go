// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The training pipeline is ingest, normalise, vectorise, fit and
// evaluate, tune, persist. Only the grid search runs concurrently.
package services
