package memory

import (
	"sync"

	"github.com/Amansingh-afk/nanoedge/hdc"
)

// Accumulator is a bundling accumulator that may be shared between
// goroutines, such as a long-lived policy memory fed by several samplers.
// The zero value is an empty accumulator ready to use.
type Accumulator struct {
	mu    sync.Mutex
	vec   hdc.Vector
	count uint64
}

// Add bundles p into the accumulator.
func (a *Accumulator) Add(p hdc.Vector) {
	a.mu.Lock()
	a.vec.Bundle(p)
	a.count++
	a.mu.Unlock()
}

// Vector returns a copy of the accumulated vector.
func (a *Accumulator) Vector() hdc.Vector {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vec
}

// Count returns how many patterns have been added since the last Reset.
func (a *Accumulator) Count() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Similarity compares v with the accumulated vector.
func (a *Accumulator) Similarity(v hdc.Vector) int {
	return hdc.Similarity(a.Vector(), v)
}

// Reset clears the accumulator.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	a.vec.Clear()
	a.count = 0
	a.mu.Unlock()
}
