package usecase

import (
	"context"

	"inventory/internal/domain"
	"inventory/internal/port"
)

// SearchUseCase handles semantic product search.
type SearchUseCase struct {
	retriever         port.Retriever
	minScoreThreshold float64 // Filter results below this score (0 = disabled)
}

// NewSearchUseCase creates a new search use case.
func NewSearchUseCase(retriever port.Retriever, minScoreThreshold float64) *SearchUseCase {
	return &SearchUseCase{
		retriever:         retriever,
		minScoreThreshold: minScoreThreshold,
	}
}

// Search returns up to topN products ranked by similarity to query.
func (u *SearchUseCase) Search(ctx context.Context, query string, topN int) ([]domain.ScoredProduct, error) {
	results, err := u.retriever.Search(ctx, query, topN)
	if err != nil {
		return nil, err
	}

	if u.minScoreThreshold > 0 {
		results = u.filterByThreshold(results)
	}

	return results, nil
}

// filterByThreshold removes results below the minimum score threshold.
func (u *SearchUseCase) filterByThreshold(results []domain.ScoredProduct) []domain.ScoredProduct {
	filtered := make([]domain.ScoredProduct, 0, len(results))
	for _, r := range results {
		if r.Score >= u.minScoreThreshold {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
