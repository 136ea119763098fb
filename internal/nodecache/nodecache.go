// Package nodecache resolves OSM node ids to coordinates while ways are
// being assembled. The in-memory cache suits city extracts; the flat-file
// variant memory-maps a sparse file so planet-scale node sets stay off
// the heap.
package nodecache

// Cache maps node ids to WGS84 coordinates. Implementations are safe for
// single-writer use during the node pass and read-only afterwards.
type Cache interface {
	Put(id int64, lon, lat float64)
	Get(id int64) (lon, lat float64, ok bool)
	Len() int64
	Close() error
}

// Memory is a heap-backed cache.
type Memory struct {
	m map[int64][2]float64
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{m: make(map[int64][2]float64)}
}

// Put stores a node's coordinates.
func (c *Memory) Put(id int64, lon, lat float64) {
	c.m[id] = [2]float64{lon, lat}
}

// Get retrieves a node's coordinates.
func (c *Memory) Get(id int64) (lon, lat float64, ok bool) {
	v, ok := c.m[id]
	return v[0], v[1], ok
}

// Len returns the number of cached nodes.
func (c *Memory) Len() int64 {
	return int64(len(c.m))
}

// Close releases the cache.
func (c *Memory) Close() error {
	c.m = nil
	return nil
}
