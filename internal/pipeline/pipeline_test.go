package pipeline

import (
	"context"
	"reflect"
	"testing"

	"github.com/ctessum/geom"

	"github.com/urbanforge/osm2scene/internal/config"
	"github.com/urbanforge/osm2scene/internal/osmload"
)

// square returns a closed CCW ring of side s with min corner at (x, y).
func square(x, y, s float64) []geom.Point {
	return []geom.Point{
		{X: x, Y: y}, {X: x + s, Y: y}, {X: x + s, Y: y + s}, {X: x, Y: y + s}, {X: x, Y: y},
	}
}

func testInput() *osmload.Result {
	return &osmload.Result{
		Features: []osmload.Feature{
			{
				ID:       1,
				Category: osmload.CategoryBuilding,
				Tags:     map[string]string{"building": "apartments", "height": "14"},
				Polygons: []geom.Polygon{{square(0, 0, 20)}},
			},
			{
				ID:       2,
				Category: osmload.CategoryBuilding,
				Tags:     map[string]string{"building": "garage"},
				Polygons: []geom.Polygon{{square(30, 0, 5)}},
			},
			{
				ID:       3,
				Category: osmload.CategoryWater,
				Tags:     map[string]string{"natural": "water"},
				Polygons: []geom.Polygon{{square(100, 100, 40)}},
			},
			{
				ID:       4,
				Category: osmload.CategoryPark,
				Tags:     map[string]string{"leisure": "park"},
				Polygons: []geom.Polygon{{square(-100, 50, 30)}},
			},
		},
		Graph: &osmload.Graph{
			Nodes: map[int64]geom.Point{
				10: {X: 0, Y: 0},
				11: {X: 200, Y: 0},
			},
			Edges: []osmload.Edge{
				{
					U: 10, V: 11,
					Tags: map[string]string{"highway": "residential"},
					Line: geom.LineString{{X: 0, Y: 0}, {X: 200, Y: 0}},
				},
			},
		},
	}
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Workers = 2
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestRunProducesBothDocuments(t *testing.T) {
	p := newTestPipeline(t)
	defer p.Close()

	sceneDoc, graphDoc, sum, err := p.Run(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sceneDoc.Buildings) != 2 {
		t.Fatalf("buildings = %d, want 2", len(sceneDoc.Buildings))
	}
	if len(sceneDoc.Water) != 1 || len(sceneDoc.Parks) != 1 {
		t.Errorf("water = %d, parks = %d, want 1 each", len(sceneDoc.Water), len(sceneDoc.Parks))
	}
	if len(sceneDoc.Roads) != 1 {
		t.Errorf("road shapes = %d, want 1", len(sceneDoc.Roads))
	}

	// Apartments: tagged height wins.
	apt := sceneDoc.Buildings[0]
	if apt.Height != 14.0 {
		t.Errorf("apartment height = %v, want 14.0", apt.Height)
	}
	if apt.Data == nil || apt.Data.Type != "residential" {
		t.Fatalf("apartment data = %+v, want residential", apt.Data)
	}
	// 20x20 footprint at 14 m is 5600 m3, so 280 residents.
	if apt.Data.Pop != 280 {
		t.Errorf("apartment pop = %d, want 280", apt.Data.Pop)
	}

	// The garage is rendered but carries no use data.
	garage := sceneDoc.Buildings[1]
	if garage.Data != nil {
		t.Errorf("garage should have nil data, got %+v", garage.Data)
	}
	if garage.Height != 8.0 {
		t.Errorf("garage height = %v, want default 8.0", garage.Height)
	}

	if len(graphDoc.Nodes) != 2 || len(graphDoc.Edges) != 1 {
		t.Fatalf("graph = %d nodes, %d edges", len(graphDoc.Nodes), len(graphDoc.Edges))
	}
	// Node 10 sits at the apartment corner, well within the join radius.
	if graphDoc.Nodes[10].Pop != 280 {
		t.Errorf("node 10 pop = %d, want 280", graphDoc.Nodes[10].Pop)
	}
	// Node 11 is 200 m from everything.
	if graphDoc.Nodes[11].Pop != 0 || graphDoc.Nodes[11].Jobs != 0 {
		t.Errorf("node 11 stats = %d/%d, want 0/0", graphDoc.Nodes[11].Pop, graphDoc.Nodes[11].Jobs)
	}

	e := graphDoc.Edges[0]
	if e.Length != 200.0 {
		t.Errorf("edge length = %v, want 200.0", e.Length)
	}
	if len(e.Points) != 2 {
		t.Errorf("edge points = %d, want 2", len(e.Points))
	}

	if sum.GraphEdges != 1 || sum.Buildings != 2 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	p := newTestPipeline(t)
	defer p.Close()

	s1, g1, _, err := p.Run(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s2, g2, _, err := p.Run(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(s1, s2) {
		t.Error("scene documents differ between runs")
	}
	if !reflect.DeepEqual(g1, g2) {
		t.Error("graph documents differ between runs")
	}
}

func TestRunEmptyInput(t *testing.T) {
	p := newTestPipeline(t)
	defer p.Close()

	in := &osmload.Result{Graph: &osmload.Graph{Nodes: map[int64]geom.Point{}}}
	sceneDoc, graphDoc, _, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sceneDoc.Buildings) != 0 || len(sceneDoc.Roads) != 0 {
		t.Error("empty input should produce an empty scene")
	}
	if sceneDoc.Buildings == nil || sceneDoc.Water == nil {
		t.Error("document lists must be present even when empty")
	}
	if len(graphDoc.Nodes) != 0 || len(graphDoc.Edges) != 0 {
		t.Error("empty input should produce an empty graph")
	}
}

func TestDegeneratePartKeepsCentroidPairing(t *testing.T) {
	p := newTestPipeline(t)
	defer p.Close()

	// The first part is a two-point sliver far away from the valid part.
	// It must not contribute a centroid, and the valid part's centroid
	// must stay paired with the building that survives.
	in := &osmload.Result{
		Features: []osmload.Feature{
			{
				ID:       6,
				Category: osmload.CategoryBuilding,
				Tags:     map[string]string{"building": "apartments"},
				Polygons: []geom.Polygon{
					{[]geom.Point{{X: 500, Y: 500}, {X: 501, Y: 500}}},
					{square(0, 0, 10)},
				},
			},
		},
		Graph: &osmload.Graph{
			Nodes: map[int64]geom.Point{10: {X: 5, Y: 5}},
		},
	}
	sceneDoc, graphDoc, _, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sceneDoc.Buildings) != 1 {
		t.Fatalf("buildings = %d, want 1", len(sceneDoc.Buildings))
	}
	// 100 m2 at the 8 m default is 800 m3, 40 residents. The node sits
	// inside the valid part, so it must see that population; it would
	// see zero if the sliver's far-away vertices supplied the centroid.
	if graphDoc.Nodes[10].Pop != 40 {
		t.Errorf("node pop = %d, want 40", graphDoc.Nodes[10].Pop)
	}
}

func TestMultiPartBuildingSharesAttributes(t *testing.T) {
	p := newTestPipeline(t)
	defer p.Close()

	in := &osmload.Result{
		Features: []osmload.Feature{
			{
				ID:       5,
				Category: osmload.CategoryBuilding,
				Tags:     map[string]string{"building": "apartments", "building:levels": "2"},
				Polygons: []geom.Polygon{
					{square(0, 0, 10)},
					{square(40, 0, 10)},
				},
			},
		},
		Graph: &osmload.Graph{Nodes: map[int64]geom.Point{}},
	}
	sceneDoc, _, _, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sceneDoc.Buildings) != 2 {
		t.Fatalf("parts = %d, want 2", len(sceneDoc.Buildings))
	}
	// Both parts inherit the whole feature's attributes, including the
	// population computed from the combined footprint.
	a, b := sceneDoc.Buildings[0], sceneDoc.Buildings[1]
	if a.Height != b.Height || !reflect.DeepEqual(a.Data, b.Data) {
		t.Errorf("parts differ: %+v vs %+v", a, b)
	}
	if a.Data == nil || a.Data.Pop != 70 {
		// 200 m2 at 7 m is 1400 m3, 70 residents.
		t.Errorf("part pop = %+v, want 70", a.Data)
	}
}
