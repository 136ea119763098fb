package nodecache

import "testing"

func TestMemoryCache(t *testing.T) {
	c := NewMemory()
	defer c.Close()

	c.Put(42, -89.384, 43.074)
	lon, lat, ok := c.Get(42)
	if !ok || lon != -89.384 || lat != 43.074 {
		t.Errorf("Get(42) = %v, %v, %v", lon, lat, ok)
	}

	if _, _, ok := c.Get(7); ok {
		t.Error("Get on missing id should report not found")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
