package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"inventory/internal/adapter/memstore"
	"inventory/internal/domain"
	"inventory/internal/metrics"
	"inventory/internal/port"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCatalog(t *testing.T, st port.ProductStore) (*CatalogUseCase, *clock, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	c := &clock{t: epoch}
	u := NewCatalogUseCase(st, nil, m)
	u.now = c.now
	n := 0
	u.newID = func() string {
		n++
		return fmt.Sprintf("ev-%d", n)
	}
	return u, c, m
}

func mustCreate(t *testing.T, u *CatalogUseCase, sku, name string, qty, price int64) domain.Product {
	t.Helper()
	p, err := u.CreateProduct(context.Background(), domain.Product{SKU: sku, Name: name, Quantity: qty, Price: price})
	require.NoError(t, err)
	return p
}

func allEvents(t *testing.T, st port.EventLog) []domain.ProductChangeEvent {
	t.Helper()
	events, err := st.EventsSince(context.Background(), time.Time{})
	require.NoError(t, err)
	return events
}

func TestCatalog_CreateValidatesAndRejectsDuplicates(t *testing.T) {
	st := memstore.NewMemoryStore()
	u, _, _ := newTestCatalog(t, st)
	ctx := context.Background()

	p := mustCreate(t, u, " SKU-1 ", " Blue Mug ", 4, 1299)
	assert.Equal(t, "SKU-1", p.SKU)
	assert.Equal(t, "Blue Mug", p.Name)
	assert.Equal(t, epoch, p.UpdatedAt)

	_, err := u.CreateProduct(ctx, domain.Product{SKU: "SKU-1", Name: "Other"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)

	invalid := []domain.Product{
		{Name: "no sku"},
		{SKU: "x"},
		{SKU: "x", Name: "neg price", Price: -1},
		{SKU: "x", Name: "neg qty", Quantity: -1},
	}
	for _, p := range invalid {
		_, err := u.CreateProduct(ctx, p)
		assert.ErrorIs(t, err, domain.ErrInvalidProduct, "%+v", p)
	}

	assert.Empty(t, allEvents(t, st), "creation records no change event")
}

func TestCatalog_UnchangedWriteRecordsNoEvent(t *testing.T) {
	st := memstore.NewMemoryStore()
	u, c, m := newTestCatalog(t, st)
	ctx := context.Background()

	mustCreate(t, u, "A", "Widget", 10, 500)

	c.advance(time.Minute)
	_, err := u.SetQuantity(ctx, "A", 20)
	require.NoError(t, err)

	c.advance(time.Minute)
	p, err := u.SetQuantity(ctx, "A", 20)
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(2*time.Minute), p.UpdatedAt, "unchanged write still refreshes the timestamp")

	events := allEvents(t, st)
	require.Len(t, events, 1)
	assert.Equal(t, domain.ChangeStock, events[0].Kind)
	assert.Equal(t, int64(10), events[0].PreviousQuantity)
	assert.Equal(t, int64(20), events[0].CurrentQuantity)
	assert.Equal(t, "ev-1", events[0].ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChangeEvents.WithLabelValues("STOCK")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProductWrites.WithLabelValues("update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductWrites.WithLabelValues("create")))
}

func TestCatalog_QuantityChangeTakesPrecedence(t *testing.T) {
	st := memstore.NewMemoryStore()
	u, _, _ := newTestCatalog(t, st)
	ctx := context.Background()

	mustCreate(t, u, "A", "Widget", 10, 500)

	qty, price := int64(3), int64(450)
	_, err := u.UpdateProduct(ctx, "A", ProductPatch{Quantity: &qty, Price: &price})
	require.NoError(t, err)

	price = 400
	_, err = u.UpdateProduct(ctx, "A", ProductPatch{Price: &price})
	require.NoError(t, err)

	name := "Widget Pro"
	_, err = u.UpdateProduct(ctx, "A", ProductPatch{Name: &name})
	require.NoError(t, err)

	events := allEvents(t, st)
	require.Len(t, events, 2)
	assert.Equal(t, domain.ChangeStock, events[0].Kind)
	assert.Equal(t, int64(500), events[0].PreviousPrice)
	assert.Equal(t, int64(450), events[0].CurrentPrice)
	assert.Equal(t, domain.ChangePrice, events[1].Kind)
	assert.Zero(t, events[1].Magnitude())
}

func TestCatalog_WritesInvalidateSnapshot(t *testing.T) {
	st := memstore.NewMemoryStore()
	u, _, _ := newTestCatalog(t, st)
	ctx := context.Background()

	st.ForceSnapshot(domain.Snapshot{})
	mustCreate(t, u, "A", "Widget", 10, 500)
	snap, err := st.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap, "create must clear the snapshot")

	st.ForceSnapshot(domain.Snapshot{})
	_, err = u.SetQuantity(ctx, "A", 10)
	require.NoError(t, err)
	snap, err = st.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap, "unchanged update must still clear the snapshot")
}

func TestCatalog_UpdateUnknownSKU(t *testing.T) {
	u, _, _ := newTestCatalog(t, memstore.NewMemoryStore())
	_, err := u.SetQuantity(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

// failingEventStore wraps a MemoryStore so that appending an event fails.
type failingEventStore struct {
	*memstore.MemoryStore
}

func (s failingEventStore) Update(ctx context.Context, fn func(tx port.WriteTx) error) error {
	return s.MemoryStore.Update(ctx, func(tx port.WriteTx) error {
		return fn(failingEventTx{tx})
	})
}

type failingEventTx struct {
	port.WriteTx
}

func (failingEventTx) AppendEvent(domain.ProductChangeEvent) error {
	return errors.New("event log full")
}

func TestCatalog_HookFailureAbortsWrite(t *testing.T) {
	mem := memstore.NewMemoryStore()
	seed, _, _ := newTestCatalog(t, mem)
	mustCreate(t, seed, "A", "Widget", 10, 500)
	mem.ForceSnapshot(domain.Snapshot{Model: "kept"})

	u, _, _ := newTestCatalog(t, failingEventStore{mem})
	_, err := u.SetQuantity(context.Background(), "A", 99)
	require.Error(t, err)

	p, err := mem.GetProduct(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Quantity, "product row must not change")
	snap, err := mem.LoadSnapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap, "snapshot must survive an aborted write")
	assert.Equal(t, "kept", snap.Model)
	assert.Empty(t, allEvents(t, mem))
}

func TestCatalog_ListProducts(t *testing.T) {
	u, _, _ := newTestCatalog(t, memstore.NewMemoryStore())
	ctx := context.Background()

	mustCreate(t, u, "MUG-001", "Blue Mug", 5, 1200)
	mustCreate(t, u, "MUG-002", "Red Mug", 50, 1200)
	mustCreate(t, u, "PLT-001", "Dinner Plate", 5, 900)

	price := int64(1200)
	qty := int64(5)
	tests := []struct {
		name   string
		filter domain.ProductFilter
		want   []string
	}{
		{"all", domain.ProductFilter{}, []string{"MUG-001", "MUG-002", "PLT-001"}},
		{"name substring", domain.ProductFilter{Name: "mug"}, []string{"MUG-001", "MUG-002"}},
		{"sku substring", domain.ProductFilter{SKU: "plt"}, []string{"PLT-001"}},
		{"sku glob", domain.ProductFilter{SKU: "MUG-*"}, []string{"MUG-001", "MUG-002"}},
		{"price", domain.ProductFilter{Price: &price}, []string{"MUG-001", "MUG-002"}},
		{"quantity", domain.ProductFilter{Quantity: &qty}, []string{"MUG-001", "PLT-001"}},
		{"combined", domain.ProductFilter{Name: "mug", Quantity: &qty}, []string{"MUG-001"}},
		{"page 2", domain.ProductFilter{Page: 2, PageSize: 2}, []string{"PLT-001"}},
		{"past the end", domain.ProductFilter{Page: 5}, []string{}},
		{"no match", domain.ProductFilter{Name: "spoon"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := u.ListProducts(ctx, tt.filter)
			require.NoError(t, err)
			got := make([]string, 0, len(page.Products))
			for _, p := range page.Products {
				got = append(got, p.SKU)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	page, err := u.ListProducts(ctx, domain.ProductFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Page)

	page, err = u.ListProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, page.PageSize)

	_, err = u.ListProducts(ctx, domain.ProductFilter{SKU: "MUG-[0"})
	assert.Error(t, err)
}
