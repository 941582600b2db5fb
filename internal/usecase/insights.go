package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"inventory/config"
	"inventory/internal/domain"
	"inventory/internal/port"
)

// InsightsUseCase combines the low-stock ratio with the trending products.
type InsightsUseCase struct {
	products port.ProductStore
	trends   *TrendUseCase
	cfg      config.InsightsConfig
	now      func() time.Time
}

// NewInsightsUseCase creates a new insights use case.
func NewInsightsUseCase(products port.ProductStore, trends *TrendUseCase, cfg config.InsightsConfig) *InsightsUseCase {
	return &InsightsUseCase{
		products: products,
		trends:   trends,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ComposeInsights reports the share of products below the low-stock threshold
// and the current trending products. An empty catalog reports 0%.
func (u *InsightsUseCase) ComposeInsights(ctx context.Context) (domain.Insights, error) {
	products, _, err := u.products.ListProducts(ctx)
	if err != nil {
		return domain.Insights{}, fmt.Errorf("failed to list products: %w", err)
	}

	trending, err := u.trends.DetectTrending(ctx, u.now(), u.cfg.TrendingTopN, u.cfg.TrendingWindow)
	if err != nil {
		return domain.Insights{}, err
	}

	insights := domain.Insights{
		LowStockPercentage: LowStockPercentage(products, u.cfg.LowStockThreshold),
		ProductCount:       len(products),
		TrendingProducts:   make([]domain.TrendingProduct, 0, len(trending)),
	}
	for _, p := range trending {
		insights.TrendingProducts = append(insights.TrendingProducts, domain.TrendingProduct{
			Name:  p.Name,
			Price: p.Price,
			SKU:   p.SKU,
		})
	}
	return insights, nil
}

// LowStockPercentage is the share of products with quantity below threshold,
// in percent rounded to two decimals. It is 0 for no products.
func LowStockPercentage(products []domain.Product, threshold int64) float64 {
	if len(products) == 0 {
		return 0
	}
	low := 0
	for _, p := range products {
		if p.Quantity < threshold {
			low++
		}
	}
	pct := float64(low) / float64(len(products)) * 100
	return math.Round(pct*100) / 100
}
