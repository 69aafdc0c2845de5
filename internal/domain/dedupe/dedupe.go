// Package dedupe remembers which forecast fingerprints have already been
// recorded so identical requests are persisted once.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper records seen fingerprints.
type Deduper interface {
	// SeenAndRecord atomically checks if fp was seen and records it if not.
	// Returns true if fp was already seen.
	SeenAndRecord(ctx context.Context, fp string) bool

	// Unrecord forgets fp so a failed write can be retried.
	Unrecord(ctx context.Context, fp string)

	Size() int64
}

// inMemoryDeduper keeps at most maxSize fingerprints and evicts the oldest
// first. maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front is oldest
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, fp string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[fp]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(string))
	}
	d.seen[fp] = d.order.PushBack(fp)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, fp string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[fp]; ok {
		d.order.Remove(el)
		delete(d.seen, fp)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
