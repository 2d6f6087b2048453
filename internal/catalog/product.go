package catalog

import (
	"errors"
	"strings"
	"time"

	"sales-dashboard/internal/store"
)

// Product is a catalog entry. Price is in currency minor units. Stock is
// mutated by catalog edits and by checkout decrements and never goes
// negative through checkout.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	ErrNameRequired  = errors.New("name is required")
	ErrNegativePrice = errors.New("price must not be negative")
	ErrNegativeStock = errors.New("stock must not be negative")
)

// ValidateProduct checks the catalog invariants before a write.
func ValidateProduct(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

func productDoc(p Product) store.Doc {
	return store.Doc{
		"name":  p.Name,
		"price": p.Price,
		"stock": p.Stock,
	}
}

func productFromDoc(doc store.Doc) Product {
	return Product{
		ID:        store.AsString(doc["id"]),
		Name:      store.AsString(doc["name"]),
		Price:     store.AsInt64(doc["price"]),
		Stock:     store.AsInt(doc["stock"]),
		CreatedAt: store.AsTime(doc["createdAt"]),
	}
}
