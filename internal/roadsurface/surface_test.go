package roadsurface

import (
	"testing"

	"github.com/ctessum/geom"

	"github.com/urbanforge/osm2scene/internal/geo"
	"github.com/urbanforge/osm2scene/internal/params"
)

func shapeArea(s geo.Shape) float64 {
	ring := func(pts [][2]float64) float64 {
		var a float64
		for i := 0; i < len(pts); i++ {
			j := (i + 1) % len(pts)
			a += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
		}
		if a < 0 {
			a = -a
		}
		return a / 2
	}
	a := ring(s.Outer)
	for _, h := range s.Holes {
		a -= ring(h)
	}
	return a
}

func TestBuildMergesOverlap(t *testing.T) {
	prm := params.Default()

	// Two residential streets (width 6) sharing a junction node. Their
	// buffers overlap around the junction; the union must not double
	// that area.
	roads := []Road{
		{Tags: map[string]string{"highway": "residential"}, Line: geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}}},
		{Tags: map[string]string{"highway": "residential"}, Line: geom.LineString{{X: 100, Y: 0}, {X: 100, Y: 100}}},
	}

	shapes, stats := Build(roads, prm, geo.Center{})
	if stats.Roads != 2 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(shapes) != 1 {
		t.Fatalf("touching buffers should merge into one shape, got %d", len(shapes))
	}

	// Each square-capped buffer covers (100+6)*6 m2.
	single := 106.0 * 6.0
	total := shapeArea(shapes[0])
	if total >= 2*single {
		t.Errorf("union area %v should be under the %v sum of parts", total, 2*single)
	}
	if total <= single {
		t.Errorf("union area %v should exceed a single buffer %v", total, single)
	}
}

func TestBuildDisjointRoads(t *testing.T) {
	prm := params.Default()

	roads := []Road{
		{Tags: map[string]string{"highway": "service"}, Line: geom.LineString{{X: 0, Y: 0}, {X: 50, Y: 0}}},
		{Tags: map[string]string{"highway": "service"}, Line: geom.LineString{{X: 0, Y: 1000}, {X: 50, Y: 1000}}},
	}

	shapes, _ := Build(roads, prm, geo.Center{})
	if len(shapes) != 2 {
		t.Fatalf("disjoint buffers should stay separate shapes, got %d", len(shapes))
	}
}

func TestBuildBlockHole(t *testing.T) {
	prm := params.Default()

	// A closed loop of four streets around a 200 m block: the enclosed
	// block must come out as a hole of the merged ring surface.
	sq := []geom.Point{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 200}, {X: 0, Y: 200}}
	var roads []Road
	for i := range sq {
		roads = append(roads, Road{
			Tags: map[string]string{"highway": "residential"},
			Line: geom.LineString{sq[i], sq[(i+1)%len(sq)]},
		})
	}

	shapes, _ := Build(roads, prm, geo.Center{})
	if len(shapes) != 1 {
		t.Fatalf("loop should merge into one shape, got %d", len(shapes))
	}
	if len(shapes[0].Holes) != 1 {
		t.Fatalf("enclosed block should be a hole, got %d holes", len(shapes[0].Holes))
	}
}

func TestBuildEmptyAndDegenerate(t *testing.T) {
	prm := params.Default()

	shapes, stats := Build(nil, prm, geo.Center{})
	if shapes != nil || stats.Roads != 0 {
		t.Errorf("empty input should produce nothing, got %v %+v", shapes, stats)
	}

	shapes, stats = Build([]Road{
		{Tags: map[string]string{}, Line: geom.LineString{{X: 1, Y: 1}}},
	}, prm, geo.Center{})
	if shapes != nil || stats.Skipped != 1 {
		t.Errorf("degenerate centerline should be skipped, got %v %+v", shapes, stats)
	}
}

func TestGroupRings(t *testing.T) {
	// Outer square with an inner square ring: the inner is a hole.
	p := geom.Polygon{
		{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
		{{X: 3, Y: 3}, {X: 7, Y: 3}, {X: 7, Y: 7}, {X: 3, Y: 7}},
	}
	grouped := groupRings(p)
	if len(grouped) != 1 {
		t.Fatalf("got %d polygons, want 1", len(grouped))
	}
	if len(grouped[0]) != 2 {
		t.Fatalf("hole not attached to its outer, rings = %d", len(grouped[0]))
	}
}
