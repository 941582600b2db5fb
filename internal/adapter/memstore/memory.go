package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"inventory/internal/domain"
	"inventory/internal/port"
)

// MemoryStore implements the storage ports in process memory. Writes are
// staged and applied only when the transaction function succeeds.
type MemoryStore struct {
	mu         sync.RWMutex
	products   map[string]domain.Product
	events     []domain.ProductChangeEvent
	snapshot   *domain.Snapshot
	generation uint64
}

var (
	_ port.ProductStore  = (*MemoryStore)(nil)
	_ port.EventLog      = (*MemoryStore)(nil)
	_ port.SnapshotStore = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]domain.Product),
	}
}

func (s *MemoryStore) GetProduct(ctx context.Context, sku string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[sku]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, sku)
	}
	return p, nil
}

func (s *MemoryStore) ListProducts(ctx context.Context) ([]domain.Product, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].SKU < products[j].SKU
	})
	return products, s.generation, nil
}

func (s *MemoryStore) CountProducts(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), nil
}

func (s *MemoryStore) Update(ctx context.Context, fn func(tx port.WriteTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, puts: make(map[string]domain.Product)}
	if err := fn(tx); err != nil {
		return err
	}

	for sku, p := range tx.puts {
		s.products[sku] = p
	}
	s.events = append(s.events, tx.events...)
	if tx.invalidated {
		s.snapshot = nil
		s.generation++
	}
	return nil
}

func (s *MemoryStore) EventsSince(ctx context.Context, since time.Time) ([]domain.ProductChangeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ProductChangeEvent
	for _, ev := range s.events {
		if !ev.OccurredAt.Before(since) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out, nil
}

// AppendEvents seeds the change log directly, bypassing product writes.
func (s *MemoryStore) AppendEvents(events ...domain.ProductChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
}

func (s *MemoryStore) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, nil
	}
	if !s.snapshot.Consistent() {
		return nil, fmt.Errorf("%w: %d vectors for %d products", domain.ErrCacheCorrupt, len(s.snapshot.Vectors), len(s.snapshot.Products))
	}
	snap := *s.snapshot
	return &snap, nil
}

func (s *MemoryStore) PutSnapshot(ctx context.Context, snap domain.Snapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Generation != s.generation {
		return false, nil
	}
	s.snapshot = &snap
	return true, nil
}

func (s *MemoryStore) DeleteSnapshot(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	s.generation++
	return nil
}

// ForceSnapshot stores snap without the generation check.
func (s *MemoryStore) ForceSnapshot(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &snap
}

type memTx struct {
	store       *MemoryStore
	puts        map[string]domain.Product
	events      []domain.ProductChangeEvent
	invalidated bool
}

func (t *memTx) GetProduct(sku string) (domain.Product, error) {
	if p, ok := t.puts[sku]; ok {
		return p, nil
	}
	p, ok := t.store.products[sku]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, sku)
	}
	return p, nil
}

func (t *memTx) PutProduct(p domain.Product) error {
	t.puts[p.SKU] = p
	return nil
}

func (t *memTx) AppendEvent(ev domain.ProductChangeEvent) error {
	t.events = append(t.events, ev)
	return nil
}

func (t *memTx) InvalidateSnapshot() error {
	t.invalidated = true
	return nil
}
