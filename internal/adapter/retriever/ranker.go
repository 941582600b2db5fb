package retriever

import (
	"math"
	"sort"

	"inventory/internal/domain"
)

// DefaultTopN is used when callers pass a non-positive top_n.
const DefaultTopN = 10

// CosineSimilarity returns dot(a, b) / (|a| * |b|). It is 0 when either vector
// has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores each candidate against the query and returns at most topN
// products by descending score. Equal scores keep their input order.
// candidates[i] must belong to products[i]; extra entries on either side are ignored.
func Rank(query []float32, candidates [][]float32, products []domain.Product, topN int) []domain.ScoredProduct {
	if topN <= 0 {
		topN = DefaultTopN
	}
	n := len(candidates)
	if len(products) < n {
		n = len(products)
	}

	scored := make([]domain.ScoredProduct, n)
	for i := 0; i < n; i++ {
		scored[i] = domain.ScoredProduct{
			Product: products[i],
			Score:   CosineSimilarity(query, candidates[i]),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topN < len(scored) {
		scored = scored[:topN]
	}
	return scored
}
