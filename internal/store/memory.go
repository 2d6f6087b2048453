package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and local runs. It is safe
// for concurrent use via an internal mutex; each subscription drains its own
// channel so notifications never run under the store lock.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memCollection
}

type memCollection struct {
	order []string
	docs  map[string]Doc
	subs  map[int]*memSubscriber
	next  int
}

type memSubscriber struct {
	ch chan []Doc
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

func (s *MemoryStore) collection(col string) *memCollection {
	c, ok := s.collections[col]
	if !ok {
		c = &memCollection{
			docs: make(map[string]Doc),
			subs: make(map[int]*memSubscriber),
		}
		s.collections[col] = c
	}
	return c
}

func (s *MemoryStore) Create(_ context.Context, col string, doc Doc) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(col)
	id := uuid.NewString()
	stored := cloneDoc(doc)
	stored["id"] = id
	stored["createdAt"] = time.Now().UTC()
	c.docs[id] = stored
	c.order = append(c.order, id)
	s.notifyLocked(c)
	return id, nil
}

func (s *MemoryStore) Update(_ context.Context, col string, id string, fields Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(col)
	doc, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		doc[k] = cloneValue(v)
	}
	s.notifyLocked(c)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, col string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(col)
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	s.notifyLocked(c)
	return nil
}

func (s *MemoryStore) ListOnce(_ context.Context, col string) ([]Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(s.collection(col)), nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, col string, fn func([]Doc)) (CancelFunc, error) {
	s.mu.Lock()
	c := s.collection(col)
	sub := &memSubscriber{ch: make(chan []Doc, 16)}
	key := c.next
	c.next++
	c.subs[key] = sub
	sub.ch <- s.snapshotLocked(c)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case docs, ok := <-sub.ch:
				if !ok {
					return
				}
				fn(docs)
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(c.subs, key)
			s.mu.Unlock()
			close(done)
		})
	}
	return cancel, nil
}

func (s *MemoryStore) DecrementStock(_ context.Context, col string, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(col)
	doc, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	stock := AsInt(doc["stock"])
	if stock < qty {
		return ErrConflict
	}
	doc["stock"] = stock - qty
	s.notifyLocked(c)
	return nil
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}

// snapshotLocked copies current contents in insertion order.
func (s *MemoryStore) snapshotLocked(c *memCollection) []Doc {
	docs := make([]Doc, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, cloneDoc(c.docs[id]))
	}
	return docs
}

// notifyLocked pushes a fresh snapshot to every subscriber. When a
// subscriber's buffer is full the oldest pending snapshot is dropped; only
// the latest contents matter.
func (s *MemoryStore) notifyLocked(c *memCollection) {
	if len(c.subs) == 0 {
		return
	}
	docs := s.snapshotLocked(c)
	for _, sub := range c.subs {
		select {
		case sub.ch <- docs:
		default:
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- docs
		}
	}
}

func cloneDoc(doc Doc) Doc {
	out := make(Doc, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Doc:
		return cloneDoc(val)
	case map[string]any:
		return cloneDoc(Doc(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []Doc:
		out := make([]Doc, len(val))
		for i, item := range val {
			out[i] = cloneDoc(item)
		}
		return out
	default:
		return v
	}
}
