package catalog

import (
	"context"

	"sales-dashboard/internal/store"
)

// Service provides product and customer CRUD over the document store.
// Deletes are pass-through: sales keep weak references to products and
// customers, there is no cascading cleanup.
type Service struct {
	store store.Store
	cols  store.Collections
}

// NewService scopes a catalog service to one tenant.
func NewService(st store.Store, tenant string) *Service {
	return &Service{store: st, cols: store.TenantCollections(tenant)}
}

func (s *Service) AddProduct(ctx context.Context, p Product) (string, error) {
	if err := ValidateProduct(p); err != nil {
		return "", err
	}
	return s.store.Create(ctx, s.cols.Products, productDoc(p))
}

func (s *Service) UpdateProduct(ctx context.Context, id string, p Product) error {
	if err := ValidateProduct(p); err != nil {
		return err
	}
	return s.store.Update(ctx, s.cols.Products, id, productDoc(p))
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.store.Delete(ctx, s.cols.Products, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	docs, err := s.store.ListOnce(ctx, s.cols.Products)
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, productFromDoc(doc))
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, store.ErrNotFound
}

// WatchProducts delivers the current product list immediately, then again on
// every change, until the returned cancel is called.
func (s *Service) WatchProducts(ctx context.Context, fn func([]Product)) (store.CancelFunc, error) {
	return s.store.Subscribe(ctx, s.cols.Products, func(docs []store.Doc) {
		products := make([]Product, 0, len(docs))
		for _, doc := range docs {
			products = append(products, productFromDoc(doc))
		}
		fn(products)
	})
}

func (s *Service) AddCustomer(ctx context.Context, c Customer) (string, error) {
	if err := ValidateCustomer(c); err != nil {
		return "", err
	}
	return s.store.Create(ctx, s.cols.Customers, customerDoc(c))
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, c Customer) error {
	if err := ValidateCustomer(c); err != nil {
		return err
	}
	return s.store.Update(ctx, s.cols.Customers, id, customerDoc(c))
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	return s.store.Delete(ctx, s.cols.Customers, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	docs, err := s.store.ListOnce(ctx, s.cols.Customers)
	if err != nil {
		return nil, err
	}
	customers := make([]Customer, 0, len(docs))
	for _, doc := range docs {
		customers = append(customers, customerFromDoc(doc))
	}
	return customers, nil
}

// WatchCustomers mirrors WatchProducts for the customers collection.
func (s *Service) WatchCustomers(ctx context.Context, fn func([]Customer)) (store.CancelFunc, error) {
	return s.store.Subscribe(ctx, s.cols.Customers, func(docs []store.Doc) {
		customers := make([]Customer, 0, len(docs))
		for _, doc := range docs {
			customers = append(customers, customerFromDoc(doc))
		}
		fn(customers)
	})
}
