package checkout

import (
	"errors"
	"testing"

	"sales-dashboard/internal/catalog"
)

func TestCart_AddLine_OutOfStock(t *testing.T) {
	cart := NewCart()
	p := catalog.Product{ID: "p1", Name: "widget", Price: 1000, Stock: 0}

	err := cart.AddLine(p)
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("Expected ErrOutOfStock, got: %v", err)
	}
	if cart.Len() != 0 {
		t.Errorf("Expected empty cart, got %d lines", cart.Len())
	}
}

func TestCart_AddLine_CappedAtStock(t *testing.T) {
	cart := NewCart()
	p := catalog.Product{ID: "p1", Name: "widget", Price: 1000, Stock: 3}

	for i := 0; i < 3; i++ {
		if err := cart.AddLine(p); err != nil {
			t.Fatalf("Add %d: expected no error, got: %v", i+1, err)
		}
	}
	lines := cart.Lines()
	if len(lines) != 1 || lines[0].Qty != 3 {
		t.Fatalf("Expected one line with qty 3, got: %+v", lines)
	}

	err := cart.AddLine(p)
	if !errors.Is(err, ErrExceedsStock) {
		t.Fatalf("Expected ErrExceedsStock, got: %v", err)
	}
	if cart.Lines()[0].Qty != 3 {
		t.Errorf("Expected qty unchanged at 3, got %d", cart.Lines()[0].Qty)
	}
}

func TestCart_RemoveLine_Idempotent(t *testing.T) {
	cart := NewCart()
	p := catalog.Product{ID: "p1", Name: "widget", Price: 1000, Stock: 5}
	if err := cart.AddLine(p); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	cart.RemoveLine("p1")
	if cart.Len() != 0 {
		t.Fatalf("Expected empty cart after remove, got %d lines", cart.Len())
	}
	cart.RemoveLine("p1")
	if cart.Len() != 0 {
		t.Errorf("Second remove changed state: %d lines", cart.Len())
	}
}

func TestCart_Total_MatchesLines(t *testing.T) {
	cart := NewCart()
	a := catalog.Product{ID: "a", Name: "alpha", Price: 1000, Stock: 5}
	b := catalog.Product{ID: "b", Name: "beta", Price: 500, Stock: 5}

	cart.AddLine(a)
	cart.AddLine(a)
	cart.AddLine(b)
	if cart.Total() != 2500 {
		t.Errorf("Expected total 2500, got %d", cart.Total())
	}

	cart.RemoveLine("a")
	if cart.Total() != 500 {
		t.Errorf("Expected total 500 after remove, got %d", cart.Total())
	}

	cart.AddLine(b)
	if cart.Total() != 1000 {
		t.Errorf("Expected total 1000, got %d", cart.Total())
	}

	var sum int64
	for _, ln := range cart.Lines() {
		sum += ln.Price * int64(ln.Qty)
	}
	if cart.Total() != sum {
		t.Errorf("Total %d does not match line sum %d", cart.Total(), sum)
	}
}

func TestCart_PriceSnapshotAtFirstInsertion(t *testing.T) {
	cart := NewCart()
	p := catalog.Product{ID: "p1", Name: "widget", Price: 1000, Stock: 5}
	cart.AddLine(p)

	// A catalog price change after the first insertion must not affect the
	// line's subtotal.
	p.Price = 9999
	cart.AddLine(p)

	lines := cart.Lines()
	if lines[0].Price != 1000 {
		t.Errorf("Expected snapshotted price 1000, got %d", lines[0].Price)
	}
	if lines[0].Subtotal != 2000 {
		t.Errorf("Expected subtotal 2000, got %d", lines[0].Subtotal)
	}
}

func TestCart_Clear(t *testing.T) {
	cart := NewCart()
	cart.AddLine(catalog.Product{ID: "p1", Name: "widget", Price: 1000, Stock: 5})
	cart.Clear()
	if cart.Len() != 0 || cart.Total() != 0 {
		t.Errorf("Expected empty cart after clear, got %d lines, total %d", cart.Len(), cart.Total())
	}
}
