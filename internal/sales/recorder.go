package sales

import (
	"context"

	"sales-dashboard/internal/store"
)

// Recorder is the append-only sale store. Sales have no update or delete
// path once written.
type Recorder struct {
	store store.Store
	col   string
}

// NewRecorder scopes a recorder to one tenant's sales collection.
func NewRecorder(st store.Store, tenant string) *Recorder {
	return &Recorder{store: st, col: store.TenantCollections(tenant).Sales}
}

// Record persists one sale and returns its store-assigned id. The creation
// timestamp is assigned by the store at write time.
func (r *Recorder) Record(ctx context.Context, s Sale) (string, error) {
	return r.store.Create(ctx, r.col, saleDoc(s))
}

// List returns all persisted sales in creation order.
func (r *Recorder) List(ctx context.Context) ([]Sale, error) {
	docs, err := r.store.ListOnce(ctx, r.col)
	if err != nil {
		return nil, err
	}
	out := make([]Sale, 0, len(docs))
	for _, doc := range docs {
		out = append(out, saleFromDoc(doc))
	}
	return out, nil
}

// Watch delivers the current sales immediately, then again after every new
// sale, until the returned cancel is called.
func (r *Recorder) Watch(ctx context.Context, fn func([]Sale)) (store.CancelFunc, error) {
	return r.store.Subscribe(ctx, r.col, func(docs []store.Doc) {
		out := make([]Sale, 0, len(docs))
		for _, doc := range docs {
			out = append(out, saleFromDoc(doc))
		}
		fn(out)
	})
}
