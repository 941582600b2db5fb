package port

import (
	"context"

	"inventory/internal/domain"
)

// Retriever ranks catalog products against a free-text query.
type Retriever interface {
	Search(ctx context.Context, query string, topN int) ([]domain.ScoredProduct, error)
}
