// Package features provides feature extractors that turn cleaned review
// text into sparse numeric vectors.
package features
