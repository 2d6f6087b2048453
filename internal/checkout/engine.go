package checkout

import (
	"context"
	"strings"
	"sync"

	"sales-dashboard/internal/sales"
	"sales-dashboard/internal/store"
)

// Engine validates and persists a completed sale, then reconciles stock.
//
// Persistence is two-step: one sale write followed by one conditional stock
// decrement per line, fanned out concurrently. The decrements are
// compare-and-swap writes (stock >= qty), so concurrent checkouts can never
// drive stock negative; the loser gets store.ErrConflict. The sale write and
// the decrements are still not atomic with each other: a decrement failure
// leaves the sale recorded and earlier decrements applied.
type Engine struct {
	recorder *sales.Recorder
	store    store.Store
	products string
}

// NewEngine builds a checkout engine for one tenant.
func NewEngine(st store.Store, recorder *sales.Recorder, tenant string) *Engine {
	return &Engine{
		recorder: recorder,
		store:    st,
		products: store.TenantCollections(tenant).Products,
	}
}

// Checkout commits the session's cart as one sale. Validation errors
// (ErrNoCustomerSelected, ErrEmptyCart) are returned before any write. On
// full success the session is reset and the persisted sale returned.
func (e *Engine) Checkout(ctx context.Context, session *Session) (*sales.Sale, error) {
	if strings.TrimSpace(session.CustomerID) == "" {
		return nil, ErrNoCustomerSelected
	}
	lines := session.Cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Re-derive the total from the lines rather than trusting cart state.
	var total int64
	items := make([]sales.Item, 0, len(lines))
	for _, ln := range lines {
		subtotal := ln.Price * int64(ln.Qty)
		total += subtotal
		items = append(items, sales.Item{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			Price:     ln.Price,
			Qty:       ln.Qty,
			Subtotal:  subtotal,
		})
	}

	sale := sales.Sale{
		CustomerID: session.CustomerID,
		Items:      items,
		Total:      total,
	}
	id, err := e.recorder.Record(ctx, sale)
	if err != nil {
		return nil, &CheckoutError{Stage: "record sale", Err: err}
	}
	sale.ID = id

	// Fan out one conditional decrement per line and wait for all of them.
	// A failed decrement is not compensated and does not undo the others.
	errs := make([]error, len(lines))
	var wg sync.WaitGroup
	for i, ln := range lines {
		wg.Add(1)
		go func(i int, ln Line) {
			defer wg.Done()
			errs[i] = e.store.DecrementStock(ctx, e.products, ln.ProductID, ln.Qty)
		}(i, ln)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, &CheckoutError{Stage: "decrement stock", Err: err}
		}
	}

	session.Reset()
	return &sale, nil
}
