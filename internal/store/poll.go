package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"
)

// DefaultPollInterval is used by backends that emulate push subscriptions by
// polling when no interval is configured.
const DefaultPollInterval = 2 * time.Second

// pollSubscribe emulates a push subscription: it delivers the current
// contents immediately, then re-lists every interval and delivers again
// whenever the fingerprint of the contents changes. Delivery happens on one
// goroutine, satisfying the single-dispatch-queue contract.
func pollSubscribe(ctx context.Context, col string, interval time.Duration,
	list func(context.Context, string) ([]Doc, error), fn func([]Doc)) (CancelFunc, error) {

	if interval <= 0 {
		interval = DefaultPollInterval
	}

	initial, err := list(ctx, col)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		fn(initial)
		last := fingerprint(initial)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				docs, err := list(ctx, col)
				if err != nil {
					continue
				}
				fp := fingerprint(docs)
				if bytes.Equal(fp, last) {
					continue
				}
				last = fp
				fn(docs)
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

// fingerprint is a cheap change detector. encoding/json sorts map keys, so
// equal contents always produce equal bytes.
func fingerprint(docs []Doc) []byte {
	data, err := json.Marshal(docs)
	if err != nil {
		return nil
	}
	return data
}
