// Package id provides entity identifier generators for the ecs package.
// Entity ids are opaque strings; the default generator emits numeric
// strings counting up from the minimum safe integer a 53-bit float can
// represent exactly, matching the source runtime's id format.
package id

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Generator produces the next entity identifier. Implementations must be
// safe for the single-threaded world that owns them; no concurrency
// guarantees are required.
type Generator interface {
	Next() string
}

// minSafeInteger is -(2^53 - 1), the smallest integer a float64 (and the
// source runtime's number type) represents exactly.
const minSafeInteger int64 = -9007199254740991

// CounterGenerator is the default Generator: a monotonic counter starting
// at minSafeInteger and incrementing by one per call.
type CounterGenerator struct {
	mu   sync.Mutex
	next int64
}

// NewCounterGenerator returns a CounterGenerator starting at the minimum
// safe integer, as documented for the world's default id generator.
func NewCounterGenerator() *CounterGenerator {
	return &CounterGenerator{next: minSafeInteger}
}

// Next returns the next numeric string and advances the counter.
func (g *CounterGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := g.next
	g.next++
	return strconv.FormatInt(v, 10)
}

// UUIDGenerator generates RFC 4122 v4 identifiers via google/uuid. It is
// an alternative Generator implementation for callers who want globally
// unique, non-sequential entity ids rather than the default numeric
// counter — useful once entities start round-tripping through storage or
// a network layer that cannot tolerate id reuse across worlds.
type UUIDGenerator struct{}

// NewUUIDGenerator returns a Generator backed by google/uuid.
func NewUUIDGenerator() *UUIDGenerator { return &UUIDGenerator{} }

// Next returns a freshly generated UUID string.
func (UUIDGenerator) Next() string {
	return uuid.NewString()
}
