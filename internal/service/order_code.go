package service

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// orderCodePrefix marks storefront order codes.
const orderCodePrefix = "ORD"

// orderCodeGenerator produces unique, time-sortable order codes.
// MonotonicEntropy is not safe for concurrent use, hence the mutex.
type orderCodeGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

func newOrderCodeGenerator() *orderCodeGenerator {
	return &orderCodeGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Next returns ORD followed by a 26-character ULID.
func (g *orderCodeGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
	return orderCodePrefix + id.String()
}
