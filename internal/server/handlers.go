package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/checkout"
	"sales-dashboard/internal/report"
	"sales-dashboard/internal/store"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := s.catalog.AddProduct(r.Context(), p)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.catalog.UpdateProduct(r.Context(), r.PathValue("id"), p); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.catalog.ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (s *Server) handleAddCustomer(w http.ResponseWriter, r *http.Request) {
	var c catalog.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := s.catalog.AddCustomer(r.Context(), c)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var c catalog.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.catalog.UpdateCustomer(r.Context(), r.PathValue("id"), c); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteCustomer(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	list, err := s.recorder.List(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type checkoutRequest struct {
	CustomerID string `json:"customer_id"`
	Items      []struct {
		ProductID string `json:"product_id"`
		Qty       int    `json:"qty"`
	} `json:"items"`
}

// handleCheckout builds a session server-side against the current catalog
// contents and runs the engine. Each requested unit goes through the cart's
// stock guards, so stale client views cannot bypass validation.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	products, err := s.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	session := checkout.NewSession()
	session.CustomerID = req.CustomerID
	for _, item := range req.Items {
		if item.Qty <= 0 {
			writeError(w, http.StatusBadRequest, "qty must be positive")
			return
		}
		p, ok := byID[item.ProductID]
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown product: %s", item.ProductID))
			return
		}
		for i := 0; i < item.Qty; i++ {
			if err := session.Cart.AddLine(p); err != nil {
				writeError(w, statusFor(err), err.Error())
				return
			}
		}
	}

	sale, err := s.engine.Checkout(r.Context(), session)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

// handleReports filters sales by date range, customer and product, then
// renders the rows as json, xlsx or pdf.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := time.Parse("2006-01-02", q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
		return
	}
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "start must not be after end")
		return
	}
	end = end.Add(24*time.Hour - time.Nanosecond)

	list, err := s.recorder.List(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	list = report.FilterByDateRange(list, start, end)
	list = report.FilterByCustomer(list, q.Get("customer"))
	list = report.FilterByProduct(list, q.Get("product"))

	customers, err := s.catalog.ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	rows := report.BuildRows(list, customers)

	switch q.Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, map[string]any{
			"summary": report.Summarize(list),
			"chart":   report.GroupByPeriod(list, report.DateKey),
			"rows":    rows,
		})
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="sales_report.xlsx"`)
		if err := report.WriteXLSX(rows, w); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="sales_report.pdf"`)
		if err := report.WritePDF(rows, "Sales Report", w); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	default:
		writeError(w, http.StatusBadRequest, "format must be json, xlsx or pdf")
	}
}

// handleStats serves the dashboard tiles and the per-month chart, plus store
// latency percentiles when the store is instrumented.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	customers, err := s.catalog.ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	list, err := s.recorder.List(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	var start, end time.Time
	q := r.URL.Query()
	if q.Get("start") != "" && q.Get("end") != "" {
		start, err = time.Parse("2006-01-02", q.Get("start"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		end, err = time.Parse("2006-01-02", q.Get("end"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
			return
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	payload := map[string]any{
		"stats": report.BuildStats(products, customers, list, start, end),
		"chart": report.GroupByPeriod(list, report.MonthKey),
	}
	if s.inst != nil {
		payload["store"] = s.inst.Snapshot()
	}
	writeJSON(w, http.StatusOK, payload)
}

// statusFor maps domain errors onto HTTP status codes: validation problems
// are client errors, stock conflicts are 409, store failures are 502.
func statusFor(err error) int {
	var checkoutErr *checkout.CheckoutError
	switch {
	case errors.Is(err, checkout.ErrOutOfStock),
		errors.Is(err, checkout.ErrExceedsStock):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrNoCustomerSelected),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, catalog.ErrNameRequired),
		errors.Is(err, catalog.ErrNegativePrice),
		errors.Is(err, catalog.ErrNegativeStock),
		errors.Is(err, catalog.ErrInvalidEmail),
		errors.Is(err, catalog.ErrInvalidPhone):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &checkoutErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
