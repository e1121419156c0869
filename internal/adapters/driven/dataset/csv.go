// Package dataset reads labelled review datasets from disk.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/logger"
)

// Ensure CSVReader implements the interface.
var _ driven.DatasetReader = (*CSVReader)(nil)

// utf8BOM is stripped from the first header cell.
const utf8BOM = "\ufeff"

// CSVReader loads reviews from a CSV file with a header row.
// The text and label columns are located by header name.
type CSVReader struct {
	textColumn  string
	labelColumn string
	lenient     bool
}

// Option configures a CSVReader.
type Option func(*CSVReader)

// WithColumns sets the header names of the text and label columns.
func WithColumns(text, label string) Option {
	return func(r *CSVReader) {
		r.textColumn = text
		r.labelColumn = label
	}
}

// WithLenientLabels maps unrecognised labels to negative instead of failing.
func WithLenientLabels(on bool) Option {
	return func(r *CSVReader) {
		r.lenient = on
	}
}

// NewCSVReader creates a reader for "review" and "sentiment" columns.
func NewCSVReader(opts ...Option) *CSVReader {
	r := &CSVReader{textColumn: "review", labelColumn: "sentiment"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewCSVReaderFromSettings creates a reader from dataset settings.
func NewCSVReaderFromSettings(s domain.DatasetSettings) *CSVReader {
	return NewCSVReader(WithColumns(s.TextColumn, s.LabelColumn), WithLenientLabels(s.LenientLabels))
}

// Read returns every review in file order.
func (r *CSVReader) Read(ctx context.Context, path string) ([]domain.Review, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	return r.decode(ctx, file)
}

func (r *CSVReader) decode(ctx context.Context, in io.Reader) ([]domain.Review, error) {
	reader := csv.NewReader(in)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", domain.ErrInvalidInput, err)
	}
	textIdx, labelIdx, err := r.columns(header)
	if err != nil {
		return nil, err
	}

	var reviews []domain.Review
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: read dataset line %d: %w", domain.ErrInvalidInput, line, err)
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		sentiment, err := domain.ParseSentiment(record[labelIdx], r.lenient)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		reviews = append(reviews, domain.Review{
			Text:      strings.Clone(record[textIdx]),
			Sentiment: sentiment,
		})
	}

	logger.Debug("Read %d reviews", len(reviews))
	return reviews, nil
}

// columns finds the text and label column positions in the header.
func (r *CSVReader) columns(header []string) (textIdx, labelIdx int, err error) {
	textIdx, labelIdx = -1, -1
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case strings.ToLower(r.textColumn):
			textIdx = i
		case strings.ToLower(r.labelColumn):
			labelIdx = i
		}
	}
	var missing []string
	if textIdx < 0 {
		missing = append(missing, r.textColumn)
	}
	if labelIdx < 0 {
		missing = append(missing, r.labelColumn)
	}
	if len(missing) > 0 {
		return -1, -1, fmt.Errorf("%w: dataset is missing column(s) %s",
			domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return textIdx, labelIdx, nil
}
