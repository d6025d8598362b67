package docstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory keeps documents in process memory. Used in tests and for local runs.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]map[string]Fields
	clock func() time.Time
}

type MemoryOption func(*Memory)

// WithClock replaces the clock used to resolve ServerTimestamp.
func WithClock(clock func() time.Time) MemoryOption {
	return func(m *Memory) { m.clock = clock }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		data:  make(map[string]map[string]Fields),
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Collection(name string) Collection {
	return &memoryCollection{store: m, name: name}
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) Close() error {
	return nil
}

type memoryCollection struct {
	store *Memory
	name  string
}

func (c *memoryCollection) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	doc, ok := c.store.data[c.name][id]
	if !ok {
		return &Snapshot{ID: id}, nil
	}
	return &Snapshot{ID: id, Exists: true, Data: copyFields(doc)}, nil
}

func (c *memoryCollection) Set(ctx context.Context, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	docs, ok := c.store.data[c.name]
	if !ok {
		docs = make(map[string]Fields)
		c.store.data[c.name] = docs
	}
	docs[id] = c.resolve(fields, make(Fields, len(fields)))
	return nil
}

func (c *memoryCollection) Update(ctx context.Context, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	doc, ok := c.store.data[c.name][id]
	if !ok {
		return ErrNotFound
	}
	c.resolve(fields, doc)
	return nil
}

func (c *memoryCollection) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	delete(c.store.data[c.name], id)
	return nil
}

// OrderedScan orders only by time.Time values. A document holding anything else in
// field makes the ordering unavailable, as a missing index would.
func (c *memoryCollection) OrderedScan(ctx context.Context, field string) ([]*Snapshot, error) {
	snaps, err := c.Scan(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]time.Time, len(snaps))
	for i, s := range snaps {
		t, ok := s.Data[field].(time.Time)
		if !ok {
			return nil, ErrOrderingUnavailable
		}
		keys[i] = t
	}
	idx := make([]int, len(snaps))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]].Before(keys[idx[b]]) })

	out := make([]*Snapshot, len(snaps))
	for i, j := range idx {
		out[i] = snaps[j]
	}
	return out, nil
}

func (c *memoryCollection) Scan(ctx context.Context) ([]*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	docs := c.store.data[c.name]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*Snapshot, 0, len(ids))
	for _, id := range ids {
		out = append(out, &Snapshot{ID: id, Exists: true, Data: copyFields(docs[id])})
	}
	return out, nil
}

// resolve copies fields into dst, replacing sentinels with the store clock.
func (c *memoryCollection) resolve(fields, dst Fields) Fields {
	now := c.store.clock()
	for k, v := range fields {
		if IsServerTimestamp(v) {
			v = now
		}
		dst[k] = v
	}
	return dst
}

func copyFields(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
