package aggregate

import (
	"testing"

	"github.com/ctessum/geom"
)

func TestNearBoundary(t *testing.T) {
	ix := NewIndex([]Building{
		{Centroid: geom.Point{X: 0, Y: 0}, Population: 10},
	})

	// Exactly on the radius: inclusive.
	pop, jobs := ix.Near(geom.Point{X: 100, Y: 0}, 100)
	if pop != 10 || jobs != 0 {
		t.Errorf("at 100m: pop = %d, jobs = %d, want 10, 0", pop, jobs)
	}

	// Just past the radius: excluded.
	pop, _ = ix.Near(geom.Point{X: 100.01, Y: 0}, 100)
	if pop != 0 {
		t.Errorf("at 100.01m: pop = %d, want 0", pop)
	}
}

func TestNearSums(t *testing.T) {
	ix := NewIndex([]Building{
		{Centroid: geom.Point{X: 10, Y: 0}, Population: 5},
		{Centroid: geom.Point{X: 0, Y: 10}, Population: 7, Jobs: 2},
		{Centroid: geom.Point{X: 500, Y: 500}, Population: 100},
	})

	pop, jobs := ix.Near(geom.Point{}, 100)
	if pop != 12 || jobs != 2 {
		t.Errorf("pop = %d, jobs = %d, want 12, 2", pop, jobs)
	}
}

func TestNearMultiCount(t *testing.T) {
	// One building, two nodes in range: it contributes to both.
	ix := NewIndex([]Building{
		{Centroid: geom.Point{X: 50, Y: 0}, Jobs: 40},
	})

	for _, p := range []geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}} {
		if _, jobs := ix.Near(p, 100); jobs != 40 {
			t.Errorf("node %+v: jobs = %d, want 40", p, jobs)
		}
	}
}

func TestNearEmptyIndex(t *testing.T) {
	ix := NewIndex(nil)
	if pop, jobs := ix.Near(geom.Point{}, 100); pop != 0 || jobs != 0 {
		t.Errorf("empty index should answer zeros, got %d, %d", pop, jobs)
	}
	if ix.Len() != 0 {
		t.Errorf("Len = %d, want 0", ix.Len())
	}

	var nilIx *Index
	if pop, _ := nilIx.Near(geom.Point{}, 100); pop != 0 {
		t.Error("nil index should answer zeros")
	}
}

func TestNearManyBuildings(t *testing.T) {
	// A grid of buildings; only the ones inside the circle count.
	var bs []Building
	for x := -500; x <= 500; x += 50 {
		for y := -500; y <= 500; y += 50 {
			bs = append(bs, Building{
				Centroid:   geom.Point{X: float64(x), Y: float64(y)},
				Population: 1,
			})
		}
	}
	ix := NewIndex(bs)

	pop, _ := ix.Near(geom.Point{}, 100)
	// Grid points with x,y in {-100..100} step 50 inside r=100:
	// 13 points satisfy x^2+y^2 <= 100^2.
	if pop != 13 {
		t.Errorf("pop = %d, want 13", pop)
	}
}
