package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"inventory/internal/domain"
	"inventory/internal/port"
)

var (
	bucketProducts = []byte("products")
	bucketEvents   = []byte("events")
	bucketSnapshot = []byte("snapshot")
	bucketMeta     = []byte("meta")
	keySnapshot    = []byte("current")
	keyGeneration  = []byte("catalog_generation")
)

// BoltStore keeps products, the change log and the embedding snapshot slot in
// one bbolt file so a product write and its side effects share a transaction.
type BoltStore struct {
	db *bbolt.DB
}

var (
	_ port.ProductStore  = (*BoltStore)(nil)
	_ port.EventLog      = (*BoltStore)(nil)
	_ port.SnapshotStore = (*BoltStore)(nil)
)

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketProducts, bucketEvents, bucketSnapshot, bucketMeta}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) GetProduct(ctx context.Context, sku string) (domain.Product, error) {
	var p domain.Product
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		p, err = getProduct(tx, sku)
		return err
	})
	return p, err
}

func (s *BoltStore) ListProducts(ctx context.Context) ([]domain.Product, uint64, error) {
	var (
		products []domain.Product
		gen      uint64
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		gen = readGeneration(tx)
		return tx.Bucket(bucketProducts).ForEach(func(k, v []byte) error {
			var p domain.Product
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("decode product %s: %w", k, err)
			}
			products = append(products, p)
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}
	return products, gen, nil
}

func (s *BoltStore) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketProducts).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *BoltStore) Update(ctx context.Context, fn func(tx port.WriteTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func (s *BoltStore) EventsSince(ctx context.Context, since time.Time) ([]domain.ProductChangeEvent, error) {
	var events []domain.ProductChangeEvent
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketEvents).Cursor()
		for k, v := c.Seek(timePrefix(since)); k != nil; k, v = c.Next() {
			var ev domain.ProductChangeEvent
			if err := json.Unmarshal(v, &ev); err != nil {
				return fmt.Errorf("decode event: %w", err)
			}
			events = append(events, ev)
		}
		return nil
	})
	return events, err
}

func (s *BoltStore) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSnapshot).Get(keySnapshot)
		if data == nil {
			return nil
		}
		var decoded domain.Snapshot
		if err := json.Unmarshal(data, &decoded); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrCacheCorrupt, err)
		}
		if !decoded.Consistent() {
			return fmt.Errorf("%w: %d vectors for %d products", domain.ErrCacheCorrupt, len(decoded.Vectors), len(decoded.Products))
		}
		snap = &decoded
		return nil
	})
	return snap, err
}

func (s *BoltStore) PutSnapshot(ctx context.Context, snap domain.Snapshot) (bool, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return false, err
	}
	stored := false
	err = s.db.Update(func(tx *bbolt.Tx) error {
		if readGeneration(tx) != snap.Generation {
			return nil
		}
		if err := tx.Bucket(bucketSnapshot).Put(keySnapshot, data); err != nil {
			return err
		}
		stored = true
		return nil
	})
	return stored, err
}

func (s *BoltStore) DeleteSnapshot(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return invalidate(tx)
	})
}

// putRawSnapshot writes bytes straight into the slot; tests use it to simulate corruption.
func (s *BoltStore) putRawSnapshot(data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshot).Put(keySnapshot, data)
	})
}

type boltTx struct {
	tx *bbolt.Tx
}

func (t *boltTx) GetProduct(sku string) (domain.Product, error) {
	return getProduct(t.tx, sku)
}

func (t *boltTx) PutProduct(p domain.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return t.tx.Bucket(bucketProducts).Put([]byte(p.SKU), data)
}

func (t *boltTx) AppendEvent(ev domain.ProductChangeEvent) error {
	b := t.tx.Bucket(bucketEvents)
	seq, err := b.NextSequence()
	if err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.Put(eventKey(ev.OccurredAt, seq), data)
}

func (t *boltTx) InvalidateSnapshot() error {
	return invalidate(t.tx)
}

func getProduct(tx *bbolt.Tx, sku string) (domain.Product, error) {
	var p domain.Product
	data := tx.Bucket(bucketProducts).Get([]byte(sku))
	if data == nil {
		return p, fmt.Errorf("%w: %s", domain.ErrProductNotFound, sku)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decode product %s: %w", sku, err)
	}
	return p, nil
}

func invalidate(tx *bbolt.Tx) error {
	if err := tx.Bucket(bucketSnapshot).Delete(keySnapshot); err != nil {
		return err
	}
	gen := readGeneration(tx) + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, gen)
	return tx.Bucket(bucketMeta).Put(keyGeneration, buf)
}

func readGeneration(tx *bbolt.Tx) uint64 {
	data := tx.Bucket(bucketMeta).Get(keyGeneration)
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// Event keys sort by occurrence time, then by insertion sequence.
func eventKey(t time.Time, seq uint64) []byte {
	key := make([]byte, 16)
	copy(key[:8], timePrefix(t))
	binary.BigEndian.PutUint64(key[8:], seq)
	return key
}

// timePrefix clamps times before the epoch to zero so they sort first.
func timePrefix(t time.Time) []byte {
	key := make([]byte, 8)
	if t.Before(time.Unix(0, 0)) {
		return key
	}
	binary.BigEndian.PutUint64(key, uint64(t.UnixNano()))
	return key
}
