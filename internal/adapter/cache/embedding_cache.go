package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"inventory/internal/domain"
	"inventory/internal/logging"
	"inventory/internal/metrics"
	"inventory/internal/port"
)

// maxBuildAttempts bounds how often a rebuild is redone when product writes
// keep landing while it runs.
const maxBuildAttempts = 3

// EmbeddingCache memoizes one vector per product in the single snapshot slot.
// Product writes clear the slot inside their own transaction; the next reader
// rebuilds it.
type EmbeddingCache struct {
	products port.ProductStore
	slot     port.SnapshotStore
	embedder port.Embedder
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewEmbeddingCache(
	products port.ProductStore,
	slot port.SnapshotStore,
	embedder port.Embedder,
	logger *zap.Logger,
	m *metrics.Metrics,
) *EmbeddingCache {
	if m == nil {
		m = metrics.NewNop()
	}
	return &EmbeddingCache{
		products: products,
		slot:     slot,
		embedder: embedder,
		logger:   logging.OrNop(logger),
		metrics:  m,
		now:      time.Now,
	}
}

// ProgressFunc is called after each product is embedded during a rebuild.
type ProgressFunc func(done, total int)

// GetOrBuild returns the stored snapshot, or builds and stores a fresh one
// when the slot is empty, unreadable or was built by a different model.
func (c *EmbeddingCache) GetOrBuild(ctx context.Context) (domain.Snapshot, error) {
	snap, err := c.slot.LoadSnapshot(ctx)
	switch {
	case errors.Is(err, domain.ErrCacheCorrupt):
		c.metrics.SnapshotCorrupt.Inc()
		c.logger.Warn("discarding unreadable embedding snapshot", zap.Error(err))
	case err != nil:
		return domain.Snapshot{}, fmt.Errorf("failed to read embedding snapshot: %w", err)
	case snap != nil && snap.Model == c.embedder.ModelName():
		c.metrics.SnapshotHits.Inc()
		return *snap, nil
	}

	c.metrics.SnapshotMisses.Inc()
	return c.Rebuild(ctx, nil)
}

// Rebuild embeds the current product set and stores it in the slot. Products
// whose embedding fails are left out of the snapshot.
func (c *EmbeddingCache) Rebuild(ctx context.Context, progress ProgressFunc) (domain.Snapshot, error) {
	var snap domain.Snapshot
	for attempt := 1; attempt <= maxBuildAttempts; attempt++ {
		var err error
		snap, err = c.build(ctx, progress)
		if err != nil {
			return domain.Snapshot{}, err
		}

		stored, err := c.slot.PutSnapshot(ctx, snap)
		if err != nil {
			c.logger.Warn("failed to store embedding snapshot", zap.Error(err))
			return snap, nil
		}
		if stored {
			return snap, nil
		}
		c.metrics.SnapshotDiscards.Inc()
		c.logger.Debug("catalog changed during snapshot rebuild",
			zap.Uint64("generation", snap.Generation),
			zap.Int("attempt", attempt),
		)
	}
	return snap, nil
}

func (c *EmbeddingCache) build(ctx context.Context, progress ProgressFunc) (domain.Snapshot, error) {
	start := c.now()
	products, gen, err := c.products.ListProducts(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to list products: %w", err)
	}

	snap := domain.Snapshot{
		Vectors:    make([][]float32, 0, len(products)),
		Products:   make([]domain.Product, 0, len(products)),
		Model:      c.embedder.ModelName(),
		Generation: gen,
	}
	for i, p := range products {
		vec, err := c.embedder.Embed(ctx, p.Name)
		if err == nil && snap.Dimension != 0 && len(vec) != snap.Dimension {
			err = fmt.Errorf("%w: got %d dimensions, want %d", domain.ErrProviderUnavailable, len(vec), snap.Dimension)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Snapshot{}, ctxErr
		}
		if err != nil {
			c.metrics.EmbeddingFailures.Inc()
			c.logger.Warn("excluding product from embedding snapshot",
				zap.String("sku", p.SKU),
				zap.Error(err),
			)
		} else {
			if snap.Dimension == 0 {
				snap.Dimension = len(vec)
			}
			snap.Vectors = append(snap.Vectors, vec)
			snap.Products = append(snap.Products, p)
		}
		if progress != nil {
			progress(i+1, len(products))
		}
	}

	snap.BuiltAt = c.now()
	c.metrics.SnapshotRebuilds.Inc()
	c.metrics.RebuildDuration.Observe(snap.BuiltAt.Sub(start).Seconds())
	c.logger.Debug("built embedding snapshot",
		zap.Int("products", len(products)),
		zap.Int("embedded", len(snap.Vectors)),
		zap.String("model", snap.Model),
	)
	return snap, nil
}

// Invalidate discards any stored snapshot. It never fails on an empty slot.
func (c *EmbeddingCache) Invalidate(ctx context.Context) error {
	return c.slot.DeleteSnapshot(ctx)
}
