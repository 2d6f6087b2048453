package bench

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Result summarizes a load run against an operation.
type Result struct {
	Operations     int64         `json:"operations"`
	Errors         int64         `json:"errors"`
	Throughput     float64       `json:"throughput"`
	AverageLatency time.Duration `json:"average_latency"`
	P95Latency     time.Duration `json:"p95_latency"`
	P99Latency     time.Duration `json:"p99_latency"`
	TotalTime      time.Duration `json:"total_time"`
}

// Run drives op from `concurrency` workers for `duration` and aggregates
// latency into an HDR histogram (1µs..10s, 3 significant figures). Failed
// operations count as errors and are excluded from latency stats.
func Run(ctx context.Context, concurrency int, duration time.Duration, op func(context.Context) error) *Result {
	var (
		operations int64
		errors     int64
		mu         sync.Mutex
	)
	histogram := hdrhistogram.New(1, 10_000_000_000, 3)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Since(start) < duration {
				if ctx.Err() != nil {
					return
				}
				opStart := time.Now()
				if err := op(ctx); err != nil {
					atomic.AddInt64(&errors, 1)
					continue
				}
				atomic.AddInt64(&operations, 1)
				latency := time.Since(opStart).Microseconds()
				mu.Lock()
				_ = histogram.RecordValue(latency)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	total := time.Since(start)
	return &Result{
		Operations:     operations,
		Errors:         errors,
		Throughput:     float64(operations) / total.Seconds(),
		AverageLatency: time.Duration(histogram.Mean()) * time.Microsecond,
		P95Latency:     time.Duration(histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99Latency:     time.Duration(histogram.ValueAtQuantile(99)) * time.Microsecond,
		TotalTime:      total,
	}
}
