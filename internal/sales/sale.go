package sales

import (
	"time"

	"sales-dashboard/internal/store"
)

// Item is a frozen copy of a cart line at the moment a sale was committed.
// It does not track later price or name changes in the catalog.
type Item struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Qty       int    `json:"qty"`
	Subtotal  int64  `json:"subtotal"`
}

// Sale is an immutable record of a completed transaction. CustomerID and the
// item ProductIDs are weak references; they are not validated for existence
// at write time.
type Sale struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	Items      []Item    `json:"items"`
	Total      int64     `json:"total"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Quantity returns the total number of units across all items.
func (s Sale) Quantity() int {
	total := 0
	for _, item := range s.Items {
		total += item.Qty
	}
	return total
}

func saleDoc(s Sale) store.Doc {
	items := make([]any, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, store.Doc{
			"productId": item.ProductID,
			"name":      item.Name,
			"price":     item.Price,
			"qty":       item.Qty,
			"subtotal":  item.Subtotal,
		})
	}
	return store.Doc{
		"customerId": s.CustomerID,
		"items":      items,
		"total":      s.Total,
	}
}

func saleFromDoc(doc store.Doc) Sale {
	sale := Sale{
		ID:         store.AsString(doc["id"]),
		CustomerID: store.AsString(doc["customerId"]),
		Total:      store.AsInt64(doc["total"]),
		CreatedAt:  store.AsTime(doc["createdAt"]),
	}
	rawItems, _ := doc["items"].([]any)
	for _, raw := range rawItems {
		var item store.Doc
		switch m := raw.(type) {
		case store.Doc:
			item = m
		case map[string]any:
			item = store.Doc(m)
		default:
			continue
		}
		sale.Items = append(sale.Items, Item{
			ProductID: store.AsString(item["productId"]),
			Name:      store.AsString(item["name"]),
			Price:     store.AsInt64(item["price"]),
			Qty:       store.AsInt(item["qty"]),
			Subtotal:  store.AsInt64(item["subtotal"]),
		})
	}
	return sale
}
