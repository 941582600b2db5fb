package retriever

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"inventory/internal/domain"
	"inventory/internal/logging"
	"inventory/internal/port"
)

// SnapshotSource yields the current embedding snapshot of the catalog.
type SnapshotSource interface {
	GetOrBuild(ctx context.Context) (domain.Snapshot, error)
}

// SemanticRetriever ranks catalog products against a free-text query.
type SemanticRetriever struct {
	snapshots SnapshotSource
	embedder  port.Embedder
	logger    *zap.Logger
}

func NewSemanticRetriever(snapshots SnapshotSource, embedder port.Embedder, logger *zap.Logger) *SemanticRetriever {
	return &SemanticRetriever{
		snapshots: snapshots,
		embedder:  embedder,
		logger:    logging.OrNop(logger),
	}
}

// Search returns up to topN products most similar to query. An empty catalog,
// a blank query or a failed query embedding yields no results and no error;
// only snapshot store failures are returned.
func (r *SemanticRetriever) Search(ctx context.Context, query string, topN int) ([]domain.ScoredProduct, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	snap, err := r.snapshots.GetOrBuild(ctx)
	if err != nil {
		return nil, err
	}
	if len(snap.Products) == 0 {
		return nil, nil
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, returning no results",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, nil
	}

	return Rank(vec, snap.Vectors, snap.Products, topN), nil
}
