package port

import (
	"context"
	"time"

	"inventory/internal/domain"
)

// ProductStore persists products. Every mutation goes through Update so the
// product row, its change event and the snapshot invalidation commit together.
type ProductStore interface {
	GetProduct(ctx context.Context, sku string) (domain.Product, error)

	// ListProducts returns every product ordered by SKU together with the
	// catalog generation the listing was read at.
	ListProducts(ctx context.Context) ([]domain.Product, uint64, error)

	CountProducts(ctx context.Context) (int, error)

	// Update runs fn inside a single write transaction. If fn returns an
	// error nothing it did is committed.
	Update(ctx context.Context, fn func(tx WriteTx) error) error
}

// WriteTx is the view of one write transaction.
type WriteTx interface {
	// GetProduct returns domain.ErrProductNotFound for an unknown SKU.
	GetProduct(sku string) (domain.Product, error)
	PutProduct(p domain.Product) error
	AppendEvent(ev domain.ProductChangeEvent) error
	// InvalidateSnapshot clears the snapshot slot and advances the catalog generation.
	InvalidateSnapshot() error
}

// EventLog is the append-only change history, queried by time.
type EventLog interface {
	// EventsSince returns events with OccurredAt >= since in occurrence order.
	EventsSince(ctx context.Context, since time.Time) ([]domain.ProductChangeEvent, error)
}

// SnapshotStore is the single named cache slot.
type SnapshotStore interface {
	// LoadSnapshot returns (nil, nil) when the slot is empty and an error
	// wrapping domain.ErrCacheCorrupt when the stored bytes cannot be used.
	LoadSnapshot(ctx context.Context) (*domain.Snapshot, error)

	// PutSnapshot stores s unless the catalog generation has moved past
	// s.Generation, in which case it reports stored=false.
	PutSnapshot(ctx context.Context, s domain.Snapshot) (stored bool, err error)

	// DeleteSnapshot is idempotent.
	DeleteSnapshot(ctx context.Context) error
}
