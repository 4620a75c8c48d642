package record

import "sync"

// ActivityTable tracks how many records have been normalized per author.
//
// Counts live only for the lifetime of the owning process and are never
// persisted or reset; a restarted pipeline starts counting from zero again.
// The table is injected into the Normalizer rather than held as package
// state so tests and concurrent pipelines get isolated tables.
type ActivityTable struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewActivityTable creates an empty activity table.
func NewActivityTable() *ActivityTable {
	return &ActivityTable{counts: make(map[string]int)}
}

// Bump increments the count for the given author and returns the
// post-increment value. The first record for an author returns 1.
func (t *ActivityTable) Bump(author string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[author]++
	return t.counts[author]
}

// Count returns the current count for the given author without mutating it.
func (t *ActivityTable) Count(author string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[author]
}

// Authors returns the number of distinct authors seen so far.
func (t *ActivityTable) Authors() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.counts)
}
