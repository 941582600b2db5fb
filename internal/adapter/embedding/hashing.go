package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"inventory/internal/adapter/analyzer"
	"inventory/internal/port"
)

const trigramWeight = 0.5

// HashEmbedder is an offline embedder that feature-hashes word terms and
// their character trigrams into a fixed number of buckets. Output vectors
// are L2-normalized; text without any terms maps to the zero vector.
type HashEmbedder struct {
	dimension int
	tokenizer port.Tokenizer
}

func NewHashEmbedder(dimension int, tokenizer port.Tokenizer) (*HashEmbedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("hash embedder dimension must be positive, got %d", dimension)
	}
	if tokenizer == nil {
		tokenizer = analyzer.NewTokenizer(true)
	}
	return &HashEmbedder{dimension: dimension, tokenizer: tokenizer}, nil
}

func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acc := make([]float64, e.dimension)
	for _, term := range e.tokenizer.Tokenize(text) {
		e.add(acc, "w:"+term, 1)
		for _, gram := range analyzer.Trigrams(term) {
			e.add(acc, "g:"+gram, trigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, e.dimension)
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

// add folds a feature into its bucket; the high bit of the hash picks the sign
// so collisions tend to cancel rather than pile up.
func (e *HashEmbedder) add(acc []float64, feature string, weight float64) {
	h := fnv.New32a()
	h.Write([]byte(feature))
	sum := h.Sum32()
	idx := int(sum % uint32(e.dimension))
	if sum&0x80000000 != 0 {
		weight = -weight
	}
	acc[idx] += weight
}

func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashEmbedder) ModelName() string {
	return fmt.Sprintf("hash-%d", e.dimension)
}
