package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Doc is a single document as stored in a collection. Backends decorate
// returned documents with an "id" string and a "createdAt" time.Time; both
// are assigned by the store at write time, never by the caller.
type Doc map[string]any

// ErrNotFound is returned when an update, delete or decrement targets an
// id that does not exist in the collection.
var ErrNotFound = errors.New("document not found")

// ErrConflict is returned by DecrementStock when the conditional write does
// not apply because the current stock is lower than the requested quantity.
var ErrConflict = errors.New("conditional update conflict")

// CancelFunc releases a subscription. Safe to call more than once.
type CancelFunc func()

// Store is the collaborator contract the dashboard is built against: a
// document database with tenant-scoped collections, push-based subscriptions
// and a conditional stock decrement.
type Store interface {
	// Create inserts doc and returns the store-assigned id.
	Create(ctx context.Context, col string, doc Doc) (string, error)

	// Update applies a partial update to an existing document.
	Update(ctx context.Context, col string, id string, fields Doc) error

	// Delete removes a document. Returns ErrNotFound when absent.
	Delete(ctx context.Context, col string, id string) error

	// ListOnce returns the current contents of a collection.
	ListOnce(ctx context.Context, col string) ([]Doc, error)

	// Subscribe registers fn for a collection. It fires immediately with the
	// current contents, then again after every change. Notifications for one
	// subscription are delivered sequentially on a single goroutine.
	Subscribe(ctx context.Context, col string, fn func([]Doc)) (CancelFunc, error)

	// DecrementStock subtracts qty from the document's "stock" field only
	// when stock >= qty, otherwise returns ErrConflict without writing.
	DecrementStock(ctx context.Context, col string, id string, qty int) error

	// Close releases the underlying connections.
	Close(ctx context.Context) error
}

// Collections holds the three tenant-scoped collection paths used by the
// dashboard.
type Collections struct {
	Products  string
	Customers string
	Sales     string
}

// TenantCollections resolves the collection paths for one tenant.
func TenantCollections(tenant string) Collections {
	return Collections{
		Products:  CollectionPath(tenant, "products"),
		Customers: CollectionPath(tenant, "customers"),
		Sales:     CollectionPath(tenant, "sales"),
	}
}

// CollectionPath builds a tenant-scoped path, e.g.
// "tenants/tenant_demo_1/products".
func CollectionPath(tenant, name string) string {
	return "tenants/" + tenant + "/" + name
}

// AsString reads a string field from a document.
func AsString(v any) string {
	s, _ := v.(string)
	return s
}

// AsInt64 coerces the numeric types the different backends hand back
// (BSON int32/int64, JSON float64, native ints) into an int64.
func AsInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// AsInt coerces a numeric field into an int. See AsInt64.
func AsInt(v any) int {
	return int(AsInt64(v))
}

// AsTime coerces a timestamp field. Mongo returns primitive.DateTime, the
// SQL backends and the memory store return time.Time; JSON round-trips give
// RFC 3339 strings.
func AsTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err == nil {
			return parsed
		}
	}
	return time.Time{}
}
