package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_CreateAssignsIDAndTimestamp(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, "tenants/t1/products", Doc{"name": "widget", "stock": 3})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if id == "" {
		t.Fatal("Expected a store-assigned id")
	}

	docs, err := s.ListOnce(ctx, "tenants/t1/products")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(docs))
	}
	if AsString(docs[0]["id"]) != id {
		t.Errorf("Expected id %q, got %q", id, docs[0]["id"])
	}
	if AsTime(docs[0]["createdAt"]).IsZero() {
		t.Error("Expected a store-assigned createdAt")
	}
}

func TestMemoryStore_UpdateAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	col := "tenants/t1/products"

	id, _ := s.Create(ctx, col, Doc{"name": "widget", "stock": 3})

	if err := s.Update(ctx, col, id, Doc{"stock": 7}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	docs, _ := s.ListOnce(ctx, col)
	if AsInt(docs[0]["stock"]) != 7 {
		t.Errorf("Expected stock 7, got %v", docs[0]["stock"])
	}

	if err := s.Update(ctx, col, "missing", Doc{"stock": 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}

	if err := s.Delete(ctx, col, id); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := s.Delete(ctx, col, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got: %v", err)
	}
}

func TestMemoryStore_ListPreservesInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	col := "tenants/t1/products"

	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.Create(ctx, col, Doc{"name": name}); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	docs, _ := s.ListOnce(ctx, col)
	if len(docs) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(docs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got := AsString(docs[i]["name"]); got != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestMemoryStore_DecrementStock(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	col := "tenants/t1/products"
	id, _ := s.Create(ctx, col, Doc{"name": "widget", "stock": 5})

	if err := s.DecrementStock(ctx, col, id, 3); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	docs, _ := s.ListOnce(ctx, col)
	if AsInt(docs[0]["stock"]) != 2 {
		t.Errorf("Expected stock 2, got %v", docs[0]["stock"])
	}

	// Conditional write: insufficient stock leaves the document untouched.
	if err := s.DecrementStock(ctx, col, id, 3); !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected ErrConflict, got: %v", err)
	}
	docs, _ = s.ListOnce(ctx, col)
	if AsInt(docs[0]["stock"]) != 2 {
		t.Errorf("Expected stock unchanged at 2, got %v", docs[0]["stock"])
	}

	if err := s.DecrementStock(ctx, col, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
}

func TestMemoryStore_SubscribeDeliversInitialAndChanges(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	col := "tenants/t1/products"
	s.Create(ctx, col, Doc{"name": "a"})

	updates := make(chan []Doc, 16)
	cancel, err := s.Subscribe(ctx, col, func(docs []Doc) {
		updates <- docs
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	defer cancel()

	initial := waitForDocs(t, updates)
	if len(initial) != 1 {
		t.Fatalf("Expected initial delivery with 1 document, got %d", len(initial))
	}

	s.Create(ctx, col, Doc{"name": "b"})
	for {
		next := waitForDocs(t, updates)
		if len(next) == 2 {
			break
		}
	}

	// After cancel no further notifications arrive.
	cancel()
	s.Create(ctx, col, Doc{"name": "c"})
	select {
	case docs := <-updates:
		if len(docs) == 3 {
			t.Error("Received notification after cancel")
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryStore_SubscriptionsAreIsolatedPerCollection(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	updates := make(chan []Doc, 16)
	cancel, err := s.Subscribe(ctx, "tenants/t1/products", func(docs []Doc) {
		updates <- docs
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	defer cancel()
	waitForDocs(t, updates)

	s.Create(ctx, "tenants/t1/customers", Doc{"name": "other"})
	select {
	case docs := <-updates:
		if len(docs) != 0 {
			t.Errorf("Expected no cross-collection notification, got %d docs", len(docs))
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func waitForDocs(t *testing.T, ch chan []Doc) []Doc {
	t.Helper()
	select {
	case docs := <-ch:
		return docs
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for subscription delivery")
		return nil
	}
}
