package ports

import (
	"context"

	"github.com/kirillkom/doc-cataloger/internal/core/domain"
)

// Cataloger is the inbound contract for one catalog run over an input tree.
type Cataloger interface {
	Run(ctx context.Context, inputRoot, outputRoot, instructions string) (*domain.RunReport, error)
}
