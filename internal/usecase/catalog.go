package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"inventory/internal/domain"
	"inventory/internal/logging"
	"inventory/internal/metrics"
	"inventory/internal/port"
)

// DefaultPageSize is used when a listing does not ask for one.
const DefaultPageSize = 10

// CatalogUseCase owns every product write. Each write runs OnProductWrite in
// the same store transaction.
type CatalogUseCase struct {
	store   port.ProductStore
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// NewCatalogUseCase creates a new catalog use case.
func NewCatalogUseCase(store port.ProductStore, logger *zap.Logger, m *metrics.Metrics) *CatalogUseCase {
	if m == nil {
		m = metrics.NewNop()
	}
	return &CatalogUseCase{
		store:   store,
		logger:  logging.OrNop(logger),
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// ProductPatch carries the fields an update changes. Nil means keep.
type ProductPatch struct {
	Name     *string
	Price    *int64
	Quantity *int64
}

// CreateProduct stores a new product. The SKU must not exist yet.
func (u *CatalogUseCase) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.SKU = strings.TrimSpace(p.SKU)
	p.Name = strings.TrimSpace(p.Name)
	if err := validateProduct(p); err != nil {
		return domain.Product{}, err
	}
	p.UpdatedAt = u.now().UTC()

	err := u.store.Update(ctx, func(tx port.WriteTx) error {
		_, err := tx.GetProduct(p.SKU)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", domain.ErrDuplicateSKU, p.SKU)
		case !errors.Is(err, domain.ErrProductNotFound):
			return err
		}
		if err := tx.PutProduct(p); err != nil {
			return err
		}
		_, err = u.OnProductWrite(tx, nil, p)
		return err
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	u.metrics.ProductWrites.WithLabelValues("create").Inc()
	u.logger.Info("product created", zap.String("sku", p.SKU), zap.Int64("quantity", p.Quantity), zap.Int64("price", p.Price))
	return p, nil
}

// UpdateProduct applies patch to an existing product. A patch that changes
// nothing still refreshes UpdatedAt but records no change event.
func (u *CatalogUseCase) UpdateProduct(ctx context.Context, sku string, patch ProductPatch) (domain.Product, error) {
	var (
		cur domain.Product
		ev  *domain.ProductChangeEvent
	)
	err := u.store.Update(ctx, func(tx port.WriteTx) error {
		prev, err := tx.GetProduct(sku)
		if err != nil {
			return err
		}

		cur = prev
		if patch.Name != nil {
			cur.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Price != nil {
			cur.Price = *patch.Price
		}
		if patch.Quantity != nil {
			cur.Quantity = *patch.Quantity
		}
		if err := validateProduct(cur); err != nil {
			return err
		}
		cur.UpdatedAt = u.now().UTC()

		if err := tx.PutProduct(cur); err != nil {
			return err
		}
		ev, err = u.OnProductWrite(tx, &prev, cur)
		return err
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to update product %s: %w", sku, err)
	}

	u.metrics.ProductWrites.WithLabelValues("update").Inc()
	fields := []zap.Field{zap.String("sku", cur.SKU)}
	if ev != nil {
		u.metrics.ChangeEvents.WithLabelValues(string(ev.Kind)).Inc()
		fields = append(fields, zap.String("change", string(ev.Kind)))
	}
	u.logger.Info("product updated", fields...)
	return cur, nil
}

// SetQuantity replaces the stock level of a product.
func (u *CatalogUseCase) SetQuantity(ctx context.Context, sku string, quantity int64) (domain.Product, error) {
	return u.UpdateProduct(ctx, sku, ProductPatch{Quantity: &quantity})
}

func (u *CatalogUseCase) GetProduct(ctx context.Context, sku string) (domain.Product, error) {
	return u.store.GetProduct(ctx, sku)
}

// ListProducts returns the page of products matching filter, ordered by SKU.
func (u *CatalogUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	if isGlob(filter.SKU) && !doublestar.ValidatePattern(filter.SKU) {
		return domain.ProductPage{}, fmt.Errorf("invalid sku pattern %q: %w", filter.SKU, doublestar.ErrBadPattern)
	}

	all, _, err := u.store.ListProducts(ctx)
	if err != nil {
		return domain.ProductPage{}, fmt.Errorf("failed to list products: %w", err)
	}

	matched := make([]domain.Product, 0, len(all))
	for _, p := range all {
		ok, err := matchProduct(p, filter)
		if err != nil {
			return domain.ProductPage{}, err
		}
		if ok {
			matched = append(matched, p)
		}
	}

	result := domain.ProductPage{
		Products: []domain.Product{},
		Total:    len(matched),
		Page:     page,
		PageSize: size,
	}
	start := (page - 1) * size
	if start < len(matched) {
		end := start + size
		if end > len(matched) {
			end = len(matched)
		}
		result.Products = matched[start:end]
	}
	return result, nil
}

// OnProductWrite runs inside the write transaction of every product save. It
// records at most one change event, quantity before price, and always clears
// the embedding snapshot. prev is nil for a newly created product. An error
// aborts the whole transaction.
func (u *CatalogUseCase) OnProductWrite(tx port.WriteTx, prev *domain.Product, cur domain.Product) (*domain.ProductChangeEvent, error) {
	ev := u.changeEvent(prev, cur)
	if ev != nil {
		if err := tx.AppendEvent(*ev); err != nil {
			return nil, fmt.Errorf("failed to append change event: %w", err)
		}
	}
	if err := tx.InvalidateSnapshot(); err != nil {
		return nil, fmt.Errorf("failed to invalidate embedding snapshot: %w", err)
	}
	return ev, nil
}

func (u *CatalogUseCase) changeEvent(prev *domain.Product, cur domain.Product) *domain.ProductChangeEvent {
	if prev == nil {
		return nil
	}

	var kind domain.ChangeKind
	switch {
	case prev.Quantity != cur.Quantity:
		kind = domain.ChangeStock
	case prev.Price != cur.Price:
		kind = domain.ChangePrice
	default:
		return nil
	}

	return &domain.ProductChangeEvent{
		ID:               u.newID(),
		SKU:              cur.SKU,
		Kind:             kind,
		PreviousQuantity: prev.Quantity,
		CurrentQuantity:  cur.Quantity,
		PreviousPrice:    prev.Price,
		CurrentPrice:     cur.Price,
		OccurredAt:       cur.UpdatedAt,
	}
}

func validateProduct(p domain.Product) error {
	switch {
	case p.SKU == "":
		return fmt.Errorf("%w: sku is required", domain.ErrInvalidProduct)
	case p.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidProduct)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidProduct)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidProduct)
	}
	return nil
}

func matchProduct(p domain.Product, f domain.ProductFilter) (bool, error) {
	if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
		return false, nil
	}
	if f.SKU != "" {
		if isGlob(f.SKU) {
			ok, err := doublestar.Match(f.SKU, p.SKU)
			if err != nil {
				return false, fmt.Errorf("invalid sku pattern %q: %w", f.SKU, err)
			}
			if !ok {
				return false, nil
			}
		} else if !strings.Contains(strings.ToLower(p.SKU), strings.ToLower(f.SKU)) {
			return false, nil
		}
	}
	if f.Price != nil && p.Price != *f.Price {
		return false, nil
	}
	if f.Quantity != nil && p.Quantity != *f.Quantity {
		return false, nil
	}
	return true, nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
