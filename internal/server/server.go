package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/checkout"
	"sales-dashboard/internal/sales"
	"sales-dashboard/internal/store"
)

// Server exposes the dashboard operations over HTTP. Auth is a static
// bearer token standing in for the hosted identity provider; /health and
// /metrics stay open.
type Server struct {
	catalog   *catalog.Service
	recorder  *sales.Recorder
	engine    *checkout.Engine
	inst      *store.Instrumented
	authToken string
	metrics   *Metrics
}

// New wires the dashboard services into a server. inst may be nil when the
// store is not instrumented.
func New(cat *catalog.Service, rec *sales.Recorder, eng *checkout.Engine, inst *store.Instrumented, authToken string) *Server {
	return &Server{
		catalog:   cat,
		recorder:  rec,
		engine:    eng,
		inst:      inst,
		authToken: authToken,
		metrics:   NewMetrics(),
	}
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.Handle("GET /products", s.protect("products", s.handleListProducts))
	mux.Handle("POST /products", s.protect("products", s.handleAddProduct))
	mux.Handle("PUT /products/{id}", s.protect("products", s.handleUpdateProduct))
	mux.Handle("DELETE /products/{id}", s.protect("products", s.handleDeleteProduct))

	mux.Handle("GET /customers", s.protect("customers", s.handleListCustomers))
	mux.Handle("POST /customers", s.protect("customers", s.handleAddCustomer))
	mux.Handle("PUT /customers/{id}", s.protect("customers", s.handleUpdateCustomer))
	mux.Handle("DELETE /customers/{id}", s.protect("customers", s.handleDeleteCustomer))

	mux.Handle("GET /sales", s.protect("sales", s.handleListSales))
	mux.Handle("POST /checkout", s.protect("checkout", s.handleCheckout))

	mux.Handle("GET /reports", s.protect("reports", s.handleReports))
	mux.Handle("GET /stats", s.protect("stats", s.handleStats))

	return mux
}

// protect wraps a handler with bearer-token auth and metrics recording.
func (s *Server) protect(name string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authToken != "" {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == token || token != s.authToken {
				s.metrics.Requests.WithLabelValues(name, strconv.Itoa(http.StatusUnauthorized)).Inc()
				writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
				return
			}
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		s.metrics.Requests.WithLabelValues(name, strconv.Itoa(rec.status)).Inc()
		s.metrics.LatencyMS.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
