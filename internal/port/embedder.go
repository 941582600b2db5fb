package port

import "context"

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	// Embed returns the vector for a single text. Failures are per call;
	// implementations wrap them with domain.ErrProviderUnavailable.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
