package retriever

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"inventory/internal/domain"
)

func products(skus ...string) []domain.Product {
	out := make([]domain.Product, len(skus))
	for i, s := range skus {
		out[i] = domain.Product{SKU: s, Name: "product " + s}
	}
	return out
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"zero query", []float32{0, 0}, []float32{1, 1}, 0},
		{"zero candidate", []float32{1, 1}, []float32{0, 0}, 0},
		{"length mismatch", []float32{1, 1}, []float32{1, 1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		v := make([]float32, 32)
		for j := range v {
			v[j] = r.Float32()*2 - 1
		}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
	}
}

func TestRank_SortedAndTruncated(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 25; trial++ {
		n := r.Intn(30)
		topN := r.Intn(15) + 1
		vecs := make([][]float32, n)
		skus := make([]string, n)
		for i := range vecs {
			vecs[i] = []float32{r.Float32(), r.Float32(), r.Float32()}
			skus[i] = fmt.Sprint(i)
		}
		query := []float32{r.Float32(), r.Float32(), r.Float32()}

		got := Rank(query, vecs, products(skus...), topN)
		assert.LessOrEqual(t, len(got), topN)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
		}
	}
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	vecs := [][]float32{{1, 0}, {0, 1}, {1, 0}, {0, 0}, {2, 0}}
	got := Rank([]float32{1, 0}, vecs, products("a", "b", "c", "zero", "d"), 10)

	require.Len(t, got, 5)
	order := []string{got[0].Product.SKU, got[1].Product.SKU, got[2].Product.SKU, got[3].Product.SKU, got[4].Product.SKU}
	assert.Equal(t, []string{"a", "c", "d", "b", "zero"}, order)
	assert.Zero(t, got[4].Score)
}

func TestRank_TopNLargerThanCandidates(t *testing.T) {
	got := Rank([]float32{1}, [][]float32{{1}, {2}}, products("a", "b"), 50)
	assert.Len(t, got, 2)
}

func TestRank_DefaultTopN(t *testing.T) {
	vecs := make([][]float32, 15)
	skus := make([]string, 15)
	for i := range vecs {
		vecs[i] = []float32{1, float32(i)}
		skus[i] = fmt.Sprint(i)
	}
	assert.Len(t, Rank([]float32{1, 1}, vecs, products(skus...), 0), DefaultTopN)
}

type staticSnapshots struct {
	snap domain.Snapshot
	err  error
}

func (s staticSnapshots) GetOrBuild(context.Context) (domain.Snapshot, error) {
	return s.snap, s.err
}

type mapEmbedder map[string][]float32

func (m mapEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := m[text]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, text)
	}
	return v, nil
}
func (m mapEmbedder) Dimension() int    { return 2 }
func (m mapEmbedder) ModelName() string { return "map" }

func TestSemanticRetriever_Search(t *testing.T) {
	snap := domain.Snapshot{
		Vectors:  [][]float32{{0, 1}, {1, 0}},
		Products: products("plate", "mug"),
	}
	r := NewSemanticRetriever(staticSnapshots{snap: snap}, mapEmbedder{"coffee cup": {1, 0.1}}, nil)

	got, err := r.Search(context.Background(), "coffee cup", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "mug", got[0].Product.SKU)
}

func TestSemanticRetriever_EmptyCorpusAndBlankQuery(t *testing.T) {
	r := NewSemanticRetriever(staticSnapshots{}, mapEmbedder{}, nil)

	got, err := r.Search(context.Background(), "anything", 5)
	require.NoError(t, err, "empty catalog must not call the provider")
	assert.Empty(t, got)

	got, err = r.Search(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSemanticRetriever_QueryEmbeddingFailure(t *testing.T) {
	snap := domain.Snapshot{Vectors: [][]float32{{1, 0}}, Products: products("a")}
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewSemanticRetriever(staticSnapshots{snap: snap}, mapEmbedder{}, zap.New(core))

	got, err := r.Search(context.Background(), "unknown", 5)
	require.NoError(t, err, "provider failures stay inside the retriever")
	assert.Empty(t, got)

	warnings := logs.FilterMessage("query embedding failed, returning no results").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "unknown", warnings[0].ContextMap()["query"])
}

func TestSemanticRetriever_SnapshotError(t *testing.T) {
	boom := errors.New("store down")
	r := NewSemanticRetriever(staticSnapshots{err: boom}, mapEmbedder{}, nil)

	_, err := r.Search(context.Background(), "x", 5)
	assert.ErrorIs(t, err, boom)
}
