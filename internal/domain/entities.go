package domain

import "time"

// Product is a single stock-keeping unit in the catalog.
type Product struct {
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"` // smallest currency unit
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LastUpdateMillis returns the last modification time in epoch milliseconds.
func (p Product) LastUpdateMillis() int64 {
	return p.UpdatedAt.UnixMilli()
}

type ChangeKind string

const (
	ChangeStock ChangeKind = "STOCK"
	ChangePrice ChangeKind = "PRICE"
)

// ProductChangeEvent is an immutable record of one quantity or price change.
type ProductChangeEvent struct {
	ID               string     `json:"id"`
	SKU              string     `json:"sku"`
	Kind             ChangeKind `json:"kind"`
	PreviousQuantity int64      `json:"previous_quantity"`
	CurrentQuantity  int64      `json:"current_quantity"`
	PreviousPrice    int64      `json:"previous_price"`
	CurrentPrice     int64      `json:"current_price"`
	OccurredAt       time.Time  `json:"occurred_at"`
}

// Magnitude is the absolute quantity delta carried by the event.
func (e ProductChangeEvent) Magnitude() int64 {
	d := e.CurrentQuantity - e.PreviousQuantity
	if d < 0 {
		return -d
	}
	return d
}

// Snapshot is the single cached embedding index. Vectors[i] belongs to Products[i].
type Snapshot struct {
	Vectors    [][]float32 `json:"vectors"`
	Products   []Product   `json:"products"`
	Model      string      `json:"model"`
	Dimension  int         `json:"dimension"`
	Generation uint64      `json:"generation"`
	BuiltAt    time.Time   `json:"built_at"`
}

// Consistent reports whether the vector and product sequences pair up.
func (s Snapshot) Consistent() bool {
	if len(s.Vectors) != len(s.Products) {
		return false
	}
	for _, v := range s.Vectors {
		if len(v) != s.Dimension {
			return false
		}
	}
	return true
}

type ScoredProduct struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}

// TrendScore is a ranking intermediate; it is never persisted.
type TrendScore struct {
	SKU   string
	Score int64
}

type TrendingProduct struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	SKU   string `json:"sku"`
}

type Insights struct {
	LowStockPercentage float64           `json:"low_stock_percentage"`
	ProductCount       int               `json:"product_count"`
	TrendingProducts   []TrendingProduct `json:"trending_products"`
}

// ProductFilter narrows a product listing. Zero values mean "no constraint".
type ProductFilter struct {
	Name     string
	SKU      string // substring, or a doublestar glob when it contains a meta character
	Price    *int64
	Quantity *int64
	Page     int
	PageSize int
}

type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

type ImportChange struct {
	SKU     string `json:"sku"`
	Name    string `json:"name"`
	Changes string `json:"changes"`
}

type ImportSummary struct {
	Created   []Product           `json:"created"`
	Updated   []ImportChange      `json:"updated"`
	Discarded []map[string]string `json:"discarded"`
}
