// Package rest exposes prediction and training history over HTTP.
//
// Routes:
//
//	POST   /v1/predict          classify one review
//	GET    /v1/runs             list training runs
//	GET    /v1/runs/:runId      full run record
//	GET    /v1/artifacts        list saved models
//	GET    /healthz             liveness
//
// Prediction requests share one token bucket; requests over the limit are
// answered with 429 Too Many Requests.
package rest
