package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"inventory/internal/domain"
	"inventory/internal/port"
)

// RateLimited throttles calls to the wrapped embedder.
type RateLimited struct {
	port.Embedder
	limiter *rate.Limiter
}

func NewRateLimited(e port.Embedder, perSecond float64, burst int) *RateLimited {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{Embedder: e, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	return r.Embedder.Embed(ctx, text)
}
