package gust

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
)

// Digest is the content hash used to key cached results.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}

func cacheKey(op Op, id string, data []byte) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(op.String())
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(id)
	_, _ = h.WriteString("\x00")
	_, _ = h.Write(data)
	return h.Sum64()
}

// Cache keeps the outputs of recent codec calls so that identical files in
// a batch are only transformed once. It is safe for concurrent use.
// Returned slices are shared and must not be modified.
type Cache struct {
	mu  sync.Mutex
	lfu *tinylfu.T[uint64, []byte]
}

// NewCache returns a cache holding up to size results.
func NewCache(size int) *Cache {
	if size < 1 {
		size = 1
	}
	return &Cache{
		lfu: tinylfu.New[uint64, []byte](size, size*10, func(k uint64) uint64 { return k }),
	}
}

func (c *Cache) get(key uint64) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lfu.Get(key)
}

func (c *Cache) add(key uint64, v []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lfu.Add(key, v)
}

// Do returns the cached result of op on in, calling fn on a miss.
// Failures are not cached. A nil cache always calls fn.
func (c *Cache) Do(op Op, id string, in []byte, fn func([]byte) ([]byte, error)) ([]byte, error) {
	if c == nil {
		return fn(in)
	}
	key := cacheKey(op, id, in)
	if out, ok := c.get(key); ok {
		if DebugLog != nil {
			DebugLog.Printf("cache: %s hit %016x", op, key)
		}
		return out, nil
	}
	out, err := fn(in)
	if err != nil {
		return nil, err
	}
	c.add(key, out)
	return out, nil
}
