package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"inventory/internal/domain"
	"inventory/internal/logging"
	"inventory/internal/port"
)

const (
	DefaultTrendingTopN   = 10
	DefaultTrendingWindow = 7 * 24 * time.Hour
)

// TrendUseCase ranks products by how much their stock moved recently.
type TrendUseCase struct {
	events   port.EventLog
	products port.ProductStore
	logger   *zap.Logger
}

// NewTrendUseCase creates a new trend use case.
func NewTrendUseCase(events port.EventLog, products port.ProductStore, logger *zap.Logger) *TrendUseCase {
	return &TrendUseCase{
		events:   events,
		products: products,
		logger:   logging.OrNop(logger),
	}
}

// DetectTrending returns up to topN products with the largest summed absolute
// quantity change in [now-window, now]. A product with only price changes in
// the window is listed with score 0.
func (u *TrendUseCase) DetectTrending(ctx context.Context, now time.Time, topN int, window time.Duration) ([]domain.Product, error) {
	if topN <= 0 {
		topN = DefaultTrendingTopN
	}
	if window <= 0 {
		window = DefaultTrendingWindow
	}

	events, err := u.events.EventsSince(ctx, now.Add(-window))
	if err != nil {
		return nil, fmt.Errorf("failed to read change events: %w", err)
	}

	scores := AggregateTrends(events)
	result := make([]domain.Product, 0, min(topN, len(scores)))
	for _, s := range scores {
		if len(result) == topN {
			break
		}
		p, err := u.products.GetProduct(ctx, s.SKU)
		if errors.Is(err, domain.ErrProductNotFound) {
			u.logger.Debug("skipping trending sku without product", zap.String("sku", s.SKU))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load trending product %s: %w", s.SKU, err)
		}
		result = append(result, p)
	}
	return result, nil
}

// AggregateTrends sums the quantity magnitude of every event per SKU. The
// result is ordered by score descending, then SKU ascending.
func AggregateTrends(events []domain.ProductChangeEvent) []domain.TrendScore {
	totals := make(map[string]int64)
	for _, ev := range events {
		totals[ev.SKU] += ev.Magnitude()
	}

	scores := make([]domain.TrendScore, 0, len(totals))
	for sku, score := range totals {
		scores = append(scores, domain.TrendScore{SKU: sku, Score: score})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].SKU < scores[j].SKU
	})
	return scores
}
