package nodecache

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

const (
	// Each entry holds lon and lat as 1e7 fixed-point int32s.
	entrySize = 8
	// Address space for node ids; the file is sparse, so disk usage
	// tracks only the ids actually written.
	maxNodeID = 10_000_000_000
)

// FlatFile is a cache backed by a memory-mapped sparse file addressed by
// node id. Lookups are O(1) byte offsets; the zero entry doubles as the
// absent marker, losing only the one node sitting exactly on (0, 0).
type FlatFile struct {
	file *os.File
	data mmap.MMap
	n    int64
}

// NewFlatFile creates (or truncates) the backing file and maps it.
func NewFlatFile(path string) (*FlatFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create node cache file: %w", err)
	}

	size := int64(maxNodeID) * entrySize
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to size node cache file: %w", err)
	}

	data, err := mmap.MapRegion(f, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap node cache: %w", err)
	}

	return &FlatFile{file: f, data: data}, nil
}

// Put stores a node's coordinates. Out-of-range ids are ignored.
func (c *FlatFile) Put(id int64, lon, lat float64) {
	if id < 0 || id >= maxNodeID {
		return
	}
	off := id * entrySize
	binary.LittleEndian.PutUint32(c.data[off:], uint32(int32(lon*1e7)))
	binary.LittleEndian.PutUint32(c.data[off+4:], uint32(int32(lat*1e7)))
	c.n++
}

// Get retrieves a node's coordinates.
func (c *FlatFile) Get(id int64) (lon, lat float64, ok bool) {
	if id < 0 || id >= maxNodeID {
		return 0, 0, false
	}
	off := id * entrySize
	lonInt := int32(binary.LittleEndian.Uint32(c.data[off:]))
	latInt := int32(binary.LittleEndian.Uint32(c.data[off+4:]))
	if lonInt == 0 && latInt == 0 {
		return 0, 0, false
	}
	return float64(lonInt) / 1e7, float64(latInt) / 1e7, true
}

// Len returns the number of Put calls.
func (c *FlatFile) Len() int64 {
	return c.n
}

// Close unmaps and removes the backing file.
func (c *FlatFile) Close() error {
	path := c.file.Name()
	if err := c.data.Unmap(); err != nil {
		c.file.Close()
		return err
	}
	if err := c.file.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}
