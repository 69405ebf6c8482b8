package structure

import "sync"

// RootCache remembers the synthetic root node ID of each structure.
type RootCache struct {
	mu    sync.RWMutex
	nodes map[int64]int64
}

// NewRootCache creates an empty cache.
func NewRootCache() *RootCache {
	return &RootCache{nodes: make(map[int64]int64)}
}

// Get returns the cached root node ID for structureID.
func (c *RootCache) Get(structureID int64) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.nodes[structureID]
	return id, ok
}

// Put records nodeID as the root of structureID.
func (c *RootCache) Put(structureID, nodeID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes[structureID] = nodeID
}

// Invalidate forgets the root of structureID.
func (c *RootCache) Invalidate(structureID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.nodes, structureID)
}

// Reset forgets every root.
func (c *RootCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.nodes)
}

// Len returns the number of cached roots.
func (c *RootCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}
