package driven

import (
	"context"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// ReportWriter renders a training report.
type ReportWriter interface {
	// Write renders the report to path, creating parent directories.
	Write(ctx context.Context, path string, report domain.Report) error
}
