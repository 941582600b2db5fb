package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"inventory/internal/domain"
)

type stubRetriever struct {
	results []domain.ScoredProduct
	err     error
	topN    int
}

func (s *stubRetriever) Search(_ context.Context, _ string, topN int) ([]domain.ScoredProduct, error) {
	s.topN = topN
	return s.results, s.err
}

func TestSearch_MinScoreThreshold(t *testing.T) {
	r := &stubRetriever{results: []domain.ScoredProduct{
		{Product: domain.Product{SKU: "a"}, Score: 0.9},
		{Product: domain.Product{SKU: "b"}, Score: 0.4},
		{Product: domain.Product{SKU: "c"}, Score: 0.1},
	}}

	got, err := NewSearchUseCase(r, 0.4).Search(context.Background(), "mug", 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].Product.SKU)
	assert.Equal(t, 7, r.topN)

	got, err = NewSearchUseCase(r, 0).Search(context.Background(), "mug", 7)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSearch_PropagatesError(t *testing.T) {
	r := &stubRetriever{err: domain.ErrProviderUnavailable}
	_, err := NewSearchUseCase(r, 0).Search(context.Background(), "mug", 5)
	assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
}
