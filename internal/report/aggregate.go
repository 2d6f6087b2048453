package report

import (
	"time"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/sales"
)

// saleTime returns the sale's creation time, treating a missing timestamp as
// "now". Records written before the store stamps them can briefly have no
// timestamp; they should show up in current-period views rather than vanish.
func saleTime(s sales.Sale) time.Time {
	if s.CreatedAt.IsZero() {
		return time.Now()
	}
	return s.CreatedAt
}

// FilterByDateRange keeps sales whose creation time falls within
// [start, end] inclusive.
func FilterByDateRange(ss []sales.Sale, start, end time.Time) []sales.Sale {
	var out []sales.Sale
	for _, s := range ss {
		t := saleTime(s)
		if t.Before(start) || t.After(end) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FilterByCustomer keeps sales made to the given customer.
func FilterByCustomer(ss []sales.Sale, customerID string) []sales.Sale {
	if customerID == "" {
		return ss
	}
	var out []sales.Sale
	for _, s := range ss {
		if s.CustomerID == customerID {
			out = append(out, s)
		}
	}
	return out
}

// FilterByProduct keeps sales containing at least one line for the given
// product.
func FilterByProduct(ss []sales.Sale, productID string) []sales.Sale {
	if productID == "" {
		return ss
	}
	var out []sales.Sale
	for _, s := range ss {
		for _, item := range s.Items {
			if item.ProductID == productID {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// PeriodTotal is one chart point: a derived period key and the summed total
// of the sales that fell into it.
type PeriodTotal struct {
	Key   string `json:"key"`
	Total int64  `json:"total"`
}

// GroupByPeriod folds sales into period totals, preserving first-seen key
// order so charts render periods in encounter order.
func GroupByPeriod(ss []sales.Sale, key func(sales.Sale) string) []PeriodTotal {
	index := make(map[string]int)
	var out []PeriodTotal
	for _, s := range ss {
		k := key(s)
		if i, ok := index[k]; ok {
			out[i].Total += s.Total
			continue
		}
		index[k] = len(out)
		out = append(out, PeriodTotal{Key: k, Total: s.Total})
	}
	return out
}

// MonthKey derives a short month label ("Jan") for monthly charts.
func MonthKey(s sales.Sale) string {
	return saleTime(s).Format("Jan")
}

// DateKey derives a calendar-date label for daily charts.
func DateKey(s sales.Sale) string {
	return saleTime(s).Format("2006-01-02")
}

// Summary are the headline numbers above a report table.
type Summary struct {
	Count   int   `json:"count"`
	Revenue int64 `json:"revenue"`
	Items   int   `json:"items"`
}

// Summarize totals revenue and units over a set of sales.
func Summarize(ss []sales.Sale) Summary {
	sum := Summary{Count: len(ss)}
	for _, s := range ss {
		sum.Revenue += s.Total
		sum.Items += s.Quantity()
	}
	return sum
}

// Stats are the dashboard tiles: record counts plus total revenue, optionally
// restricted to a creation-date range.
type Stats struct {
	TotalSales int64 `json:"totalSales"`
	Customers  int   `json:"customers"`
	Products   int   `json:"products"`
}

// BuildStats computes the dashboard tiles. Zero start/end disable the range
// filter. Catalog records without a timestamp count as created now.
func BuildStats(products []catalog.Product, customers []catalog.Customer, ss []sales.Sale, start, end time.Time) Stats {
	ranged := !start.IsZero() && !end.IsZero()
	within := func(t time.Time) bool {
		if t.IsZero() {
			t = time.Now()
		}
		return !t.Before(start) && !t.After(end)
	}

	var stats Stats
	for _, p := range products {
		if !ranged || within(p.CreatedAt) {
			stats.Products++
		}
	}
	for _, c := range customers {
		if !ranged || within(c.CreatedAt) {
			stats.Customers++
		}
	}
	for _, s := range ss {
		if !ranged || within(s.CreatedAt) {
			stats.TotalSales += s.Total
		}
	}
	return stats
}
