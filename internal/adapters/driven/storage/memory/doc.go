// Package memory provides in-memory implementations of the driven storage
// ports. Nothing is persisted; they back tests and --storage memory runs.
package memory
