package streaks

import (
	"sync"

	"github.com/google/uuid"
)

// summaryCache holds per-user optimistic summaries so a confirmation can be
// reflected immediately while the ledger write is in flight. Entries are
// replaced with the authoritative summary after every successful write and
// reverted if the write fails.
type summaryCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Summary
}

func newSummaryCache() *summaryCache {
	return &summaryCache{entries: make(map[uuid.UUID]Summary)}
}

func (c *summaryCache) Get(userID uuid.UUID) (Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	summary, ok := c.entries[userID]
	return summary, ok
}

func (c *summaryCache) Put(userID uuid.UUID, summary Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = summary
}

func (c *summaryCache) Delete(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}
