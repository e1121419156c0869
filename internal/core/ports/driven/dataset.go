package driven

import (
	"context"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// DatasetReader loads labelled reviews.
type DatasetReader interface {
	// Read returns every review in the dataset at path, in file order.
	// Returns domain.ErrInvalidInput for missing columns or bad labels.
	Read(ctx context.Context, path string) ([]domain.Review, error)
}
