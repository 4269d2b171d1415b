// Package memory implements a thread-safe labeled pattern memory backed by
// bundled hypervectors. Each label ("good", "bad", "idle", ...) owns an
// accumulator that observed patterns are OR-bundled into; Match returns the
// label whose accumulator is most similar to a query.
package memory

import (
	"container/list"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Amansingh-afk/nanoedge/hdc"
)

// Options configures a Memory.
type Options struct {
	Threshold int                // minimum similarity in (0, hdc.Dims] for a match (default 96)
	Capacity  int                // max labels before LRU eviction (default 16)
	Logger    logrus.FieldLogger // nil discards
	Metrics   *Metrics           // nil disables metrics
}

// DefaultOptions returns production-ready defaults.
func DefaultOptions() Options {
	return Options{Threshold: 96, Capacity: 16}
}

// Stats is a point-in-time snapshot of memory metrics.
type Stats struct {
	Entries     int
	Hits        uint64
	Misses      uint64
	Learns      uint64
	Evictions   uint64
	HitRate     float64
	AvgSimOnHit float64
}

// Entry is an exported copy of one label's state, used for persistence.
type Entry struct {
	ID        uuid.UUID
	Label     string
	Vector    hdc.Vector
	Count     uint64 // observations bundled in
	UpdatedAt time.Time
}

// Result is one ranked label from Nearest.
type Result struct {
	Label      string
	Similarity int
}

// Memory is a thread-safe labeled pattern memory.
type Memory struct {
	mu        sync.Mutex
	lru       *list.List
	index     map[string]*list.Element // label → LRU element
	threshold int
	capacity  int
	logger    logrus.FieldLogger
	metrics   *Metrics

	hits      uint64
	misses    uint64
	learns    uint64
	evictions uint64
	simSum    uint64
}

// New creates a Memory.
// Panics if Capacity <= 0 or Threshold is outside (0, hdc.Dims].
func New(opts Options) *Memory {
	if opts.Capacity <= 0 {
		panic("memory: Options.Capacity must be positive")
	}
	if opts.Threshold <= 0 || opts.Threshold > hdc.Dims {
		panic("memory: Options.Threshold must be in (0, hdc.Dims]")
	}
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		logger = l
	}
	return &Memory{
		lru:       list.New(),
		index:     make(map[string]*list.Element),
		threshold: opts.Threshold,
		capacity:  opts.Capacity,
		logger:    logger.WithField("component", "memory"),
		metrics:   opts.Metrics,
	}
}

// Threshold returns the minimum similarity for a match.
func (m *Memory) Threshold() int { return m.threshold }

// Learn bundles v into the accumulator for label, creating it if needed.
// The entry is promoted to most-recently-used. If a new label arrives while
// the memory is at capacity, the least-recently-used label is evicted first.
func (m *Memory) Learn(label string, v hdc.Vector) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.learns++
	m.metrics.learn()

	if elem, ok := m.index[label]; ok {
		e := elem.Value.(*Entry)
		e.Vector.Bundle(v)
		e.Count++
		e.UpdatedAt = time.Now()
		m.lru.MoveToFront(elem)
		return
	}

	if m.lru.Len() >= m.capacity {
		m.evictLocked()
	}

	e := &Entry{ID: uuid.New(), Label: label, Vector: v, Count: 1, UpdatedAt: time.Now()}
	m.index[label] = m.lru.PushFront(e)
	m.metrics.setEntries(m.lru.Len())
	m.logger.WithField("label", label).Debug("new pattern label")
}

// Match returns the label whose accumulator is most similar to v, provided
// the similarity reaches the threshold. Returns (label, true, similarity) on
// a hit, or ("", false, 0) on a miss. Equal similarities resolve to the more
// recently used label. A hit is promoted to most-recently-used.
func (m *Memory) Match(v hdc.Vector) (string, bool, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bestElem, bestSim := m.scanLocked(v)
	if bestElem == nil {
		m.misses++
		m.metrics.miss()
		return "", false, 0
	}

	m.lru.MoveToFront(bestElem)
	m.hits++
	m.simSum += uint64(bestSim)
	m.metrics.hit(bestSim)
	return bestElem.Value.(*Entry).Label, true, bestSim
}

// Nearest ranks every label by similarity to v, most similar first.
// It ignores the threshold and does not touch recency or statistics.
func (m *Memory) Nearest(v hdc.Vector) []Result {
	m.mu.Lock()
	out := make([]Result, 0, m.lru.Len())
	for elem := m.lru.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*Entry)
		out = append(out, Result{Label: e.Label, Similarity: hdc.Similarity(v, e.Vector)})
	}
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	return out
}

// Forget removes the label. Returns true if it was present.
func (m *Memory) Forget(label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.index[label]
	if !ok {
		return false
	}
	m.removeLocked(elem)
	return true
}

// Len returns the current number of labels.
func (m *Memory) Len() int {
	m.mu.Lock()
	n := m.lru.Len()
	m.mu.Unlock()
	return n
}

// Labels returns the labels, most recently used first.
func (m *Memory) Labels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, m.lru.Len())
	for elem := m.lru.Front(); elem != nil; elem = elem.Next() {
		out = append(out, elem.Value.(*Entry).Label)
	}
	return out
}

// Stats returns a point-in-time snapshot of memory metrics.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.hits + m.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(m.hits) / float64(total)
	}
	avgSim := 0.0
	if m.hits > 0 {
		avgSim = float64(m.simSum) / float64(m.hits)
	}

	return Stats{
		Entries:     m.lru.Len(),
		Hits:        m.hits,
		Misses:      m.misses,
		Learns:      m.learns,
		Evictions:   m.evictions,
		HitRate:     hitRate,
		AvgSimOnHit: avgSim,
	}
}

// Snapshot returns copies of all entries, most recently used first.
func (m *Memory) Snapshot() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, 0, m.lru.Len())
	for elem := m.lru.Front(); elem != nil; elem = elem.Next() {
		out = append(out, *elem.Value.(*Entry))
	}
	return out
}

// Restore replaces the memory contents with entries, given most recently used
// first (the Snapshot order). Entries beyond capacity are dropped from the
// tail; a later duplicate label is ignored. Statistics are not reset.
func (m *Memory) Restore(entries []Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lru.Init()
	m.index = make(map[string]*list.Element, len(entries))
	for i := range entries {
		if m.lru.Len() >= m.capacity {
			m.logger.WithField("dropped", len(entries)-i).Warn("restore exceeds capacity")
			break
		}
		if _, dup := m.index[entries[i].Label]; dup {
			continue
		}
		e := entries[i]
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		m.index[e.Label] = m.lru.PushBack(&e)
	}
	m.metrics.setEntries(m.lru.Len())
}

// scanLocked performs a linear similarity scan and returns the best-matching
// element at or above m.threshold, or nil if no match is found.
// Must be called with m.mu held.
func (m *Memory) scanLocked(v hdc.Vector) (*list.Element, int) {
	var bestElem *list.Element
	bestSim := -1

	for elem := m.lru.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*Entry)
		if s := hdc.Similarity(v, e.Vector); s >= m.threshold && s > bestSim {
			bestSim = s
			bestElem = elem
		}
	}
	return bestElem, bestSim
}

func (m *Memory) evictLocked() {
	if back := m.lru.Back(); back != nil {
		m.evictions++
		m.metrics.evict()
		m.logger.WithField("label", back.Value.(*Entry).Label).Debug("evicting least recently used label")
		m.removeLocked(back)
	}
}

func (m *Memory) removeLocked(elem *list.Element) {
	e := elem.Value.(*Entry)
	delete(m.index, e.Label)
	m.lru.Remove(elem)
	m.metrics.setEntries(m.lru.Len())
}
