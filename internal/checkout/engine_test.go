package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/checkout"
	"sales-dashboard/internal/sales"
	"sales-dashboard/internal/store"
)

const testTenant = "tenant_test"

type EngineSuite struct {
	suite.Suite

	ctx      context.Context
	store    *store.MemoryStore
	catalog  *catalog.Service
	recorder *sales.Recorder
	engine   *checkout.Engine
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewMemoryStore()
	s.catalog = catalog.NewService(s.store, testTenant)
	s.recorder = sales.NewRecorder(s.store, testTenant)
	s.engine = checkout.NewEngine(s.store, s.recorder, testTenant)
}

func (s *EngineSuite) seedProduct(name string, price int64, stock int) catalog.Product {
	id, err := s.catalog.AddProduct(s.ctx, catalog.Product{Name: name, Price: price, Stock: stock})
	s.Require().NoError(err)
	p, err := s.catalog.GetProduct(s.ctx, id)
	s.Require().NoError(err)
	return p
}

func (s *EngineSuite) TestEmptyCartPersistsNothing() {
	session := checkout.NewSession()
	session.CustomerID = "cust1"

	_, err := s.engine.Checkout(s.ctx, session)
	s.Require().ErrorIs(err, checkout.ErrEmptyCart)

	recorded, err := s.recorder.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(recorded)
}

func (s *EngineSuite) TestNoCustomerPersistsNothing() {
	p := s.seedProduct("widget", 1000, 5)
	session := checkout.NewSession()
	s.Require().NoError(session.Cart.AddLine(p))

	_, err := s.engine.Checkout(s.ctx, session)
	s.Require().ErrorIs(err, checkout.ErrNoCustomerSelected)

	recorded, err := s.recorder.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(recorded)
	s.Equal(1, session.Cart.Len(), "cart must stay intact after a validation failure")
}

func (s *EngineSuite) TestCheckoutPersistsSaleAndDecrementsStock() {
	a := s.seedProduct("alpha", 1000, 10)
	b := s.seedProduct("beta", 500, 4)

	session := checkout.NewSession()
	session.CustomerID = "cust1"
	s.Require().NoError(session.Cart.AddLine(a))
	s.Require().NoError(session.Cart.AddLine(a))
	s.Require().NoError(session.Cart.AddLine(b))

	sale, err := s.engine.Checkout(s.ctx, session)
	s.Require().NoError(err)
	s.Require().NotNil(sale)
	s.NotEmpty(sale.ID)
	s.Equal("cust1", sale.CustomerID)
	s.Equal(int64(2500), sale.Total)
	s.Require().Len(sale.Items, 2)
	s.Equal(sales.Item{ProductID: a.ID, Name: "alpha", Price: 1000, Qty: 2, Subtotal: 2000}, sale.Items[0])
	s.Equal(sales.Item{ProductID: b.ID, Name: "beta", Price: 500, Qty: 1, Subtotal: 500}, sale.Items[1])

	// Session resets on success.
	s.Empty(session.CustomerID)
	s.Zero(session.Cart.Len())

	// Stock decremented per line.
	updatedA, err := s.catalog.GetProduct(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(8, updatedA.Stock)
	updatedB, err := s.catalog.GetProduct(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(3, updatedB.Stock)

	// Persisted record matches the returned sale.
	recorded, err := s.recorder.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(recorded, 1)
	s.Equal(sale.ID, recorded[0].ID)
	s.Equal(int64(2500), recorded[0].Total)
	s.False(recorded[0].CreatedAt.IsZero(), "store must assign the timestamp")
}

func (s *EngineSuite) TestFrozenItemsIgnoreLaterCatalogEdits() {
	p := s.seedProduct("widget", 1000, 5)

	session := checkout.NewSession()
	session.CustomerID = "cust1"
	s.Require().NoError(session.Cart.AddLine(p))

	sale, err := s.engine.Checkout(s.ctx, session)
	s.Require().NoError(err)

	s.Require().NoError(s.catalog.UpdateProduct(s.ctx, p.ID, catalog.Product{
		Name: "renamed", Price: 2000, Stock: 4,
	}))

	recorded, err := s.recorder.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(recorded, 1)
	s.Equal("widget", recorded[0].Items[0].Name)
	s.Equal(int64(1000), recorded[0].Items[0].Price)
	s.Equal(sale.Total, recorded[0].Total)
}

func (s *EngineSuite) TestConcurrentCheckoutsNeverOversell() {
	p := s.seedProduct("scarce", 1000, 1)

	// Both sessions hold the same stale snapshot showing stock 1.
	makeSession := func() *checkout.Session {
		session := checkout.NewSession()
		session.CustomerID = "cust1"
		s.Require().NoError(session.Cart.AddLine(p))
		return session
	}
	first, second := makeSession(), makeSession()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, session := range []*checkout.Session{first, second} {
		wg.Add(1)
		go func(i int, session *checkout.Session) {
			defer wg.Done()
			_, results[i] = s.engine.Checkout(s.ctx, session)
		}(i, session)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, store.ErrConflict):
			var checkoutErr *checkout.CheckoutError
			s.Require().ErrorAs(err, &checkoutErr)
			conflicts++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, successes, "exactly one checkout must win")
	s.Equal(1, conflicts, "the loser must see a conflict")

	updated, err := s.catalog.GetProduct(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(0, updated.Stock, "stock must never go negative")
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func TestCheckoutError_Unwrap(t *testing.T) {
	err := &checkout.CheckoutError{Stage: "decrement stock", Err: store.ErrConflict}
	require.ErrorIs(t, err, store.ErrConflict)
	require.Contains(t, err.Error(), "decrement stock")
}
