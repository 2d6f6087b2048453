package store

import (
	"context"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Instrumented wraps a Store and records per-operation latency in HDR
// histograms (1µs..10s, 3 significant figures).
type Instrumented struct {
	inner Store

	mu    sync.Mutex
	hists map[string]*hdrhistogram.Histogram
}

// OpStats is a latency snapshot for one store operation.
type OpStats struct {
	Count   int64         `json:"count"`
	Average time.Duration `json:"average"`
	P95     time.Duration `json:"p95"`
	P99     time.Duration `json:"p99"`
}

// Instrument wraps st with latency recording.
func Instrument(st Store) *Instrumented {
	return &Instrumented{inner: st, hists: make(map[string]*hdrhistogram.Histogram)}
}

func (s *Instrumented) record(op string, start time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hist, ok := s.hists[op]
	if !ok {
		hist = hdrhistogram.New(1, 10_000_000_000, 3)
		s.hists[op] = hist
	}
	_ = hist.RecordValue(time.Since(start).Microseconds())
}

// Snapshot returns latency stats per operation observed so far.
func (s *Instrumented) Snapshot() map[string]OpStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]OpStats, len(s.hists))
	for op, hist := range s.hists {
		out[op] = OpStats{
			Count:   hist.TotalCount(),
			Average: time.Duration(hist.Mean()) * time.Microsecond,
			P95:     time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond,
			P99:     time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond,
		}
	}
	return out
}

func (s *Instrumented) Create(ctx context.Context, col string, doc Doc) (string, error) {
	defer s.record("create", time.Now())
	return s.inner.Create(ctx, col, doc)
}

func (s *Instrumented) Update(ctx context.Context, col string, id string, fields Doc) error {
	defer s.record("update", time.Now())
	return s.inner.Update(ctx, col, id, fields)
}

func (s *Instrumented) Delete(ctx context.Context, col string, id string) error {
	defer s.record("delete", time.Now())
	return s.inner.Delete(ctx, col, id)
}

func (s *Instrumented) ListOnce(ctx context.Context, col string) ([]Doc, error) {
	defer s.record("list", time.Now())
	return s.inner.ListOnce(ctx, col)
}

func (s *Instrumented) Subscribe(ctx context.Context, col string, fn func([]Doc)) (CancelFunc, error) {
	return s.inner.Subscribe(ctx, col, fn)
}

func (s *Instrumented) DecrementStock(ctx context.Context, col string, id string, qty int) error {
	defer s.record("decrement_stock", time.Now())
	return s.inner.DecrementStock(ctx, col, id, qty)
}

func (s *Instrumented) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}
