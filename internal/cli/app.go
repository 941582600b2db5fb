package cli

import (
	"fmt"

	"inventory/internal/adapter/cache"
	"inventory/internal/adapter/embedding"
	"inventory/internal/adapter/fs"
	"inventory/internal/adapter/retriever"
	"inventory/internal/adapter/store"
	"inventory/internal/metrics"
	"inventory/internal/usecase"
)

// app holds the services one command invocation works with.
type app struct {
	store    *store.BoltStore
	cache    *cache.EmbeddingCache
	catalog  *usecase.CatalogUseCase
	search   *usecase.SearchUseCase
	trends   *usecase.TrendUseCase
	insights *usecase.InsightsUseCase
	importer *usecase.ImportUseCase
}

// openApp opens the product database under the root directory and wires
// every service onto it.
func openApp() (*app, error) {
	cfg := GetConfig()
	dir := GetRootDir()

	if err := cfg.EnsureDataDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.NewBoltStore(cfg.DBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open product store: %w", err)
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	m := metrics.New(registry)
	embeddings := cache.NewEmbeddingCache(st, st, embedder, logger, m)
	queryEmbedder := cache.NewCachedEmbedder(embedder, cache.NewQueryCache(cfg.Search.QueryCacheSize, cfg.Search.QueryCacheTTL), m)
	catalog := usecase.NewCatalogUseCase(st, logger, m)
	trends := usecase.NewTrendUseCase(st, st, logger)

	return &app{
		store:    st,
		cache:    embeddings,
		catalog:  catalog,
		search:   usecase.NewSearchUseCase(retriever.NewSemanticRetriever(embeddings, queryEmbedder, logger), cfg.Search.MinScore),
		trends:   trends,
		insights: usecase.NewInsightsUseCase(st, trends, cfg.Insights),
		importer: usecase.NewImportUseCase(catalog, fs.NewWalker(cfg.Import.Includes, cfg.Import.Excludes), logger),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
