package osmload

import "github.com/ctessum/geom"

// Feature is one tagged area entity in local planar meters. Geometry and
// tags are read-only after loading; derived attributes are computed
// downstream and never written back.
type Feature struct {
	ID       int64
	Category Category
	Tags     map[string]string
	Polygons []geom.Polygon
}

// Graph is the road network extracted from highway ways. Node ids are
// the source OSM node ids.
type Graph struct {
	Nodes map[int64]geom.Point
	Edges []Edge
}

// Edge is one road segment between two graph nodes. It references its
// endpoints by id and carries the full centerline geometry.
type Edge struct {
	U, V   int64
	Oneway bool
	Tags   map[string]string
	Line   geom.LineString
}

// Stats counts what the loader saw and what it had to drop. Nothing in
// here is fatal; the counts surface in the run summary.
type Stats struct {
	NodesCached  int64
	WaysSeen     int64
	Relations    int64
	Buildings    int
	Water        int
	Parks        int
	RoadWays     int
	GraphNodes   int
	GraphEdges   int
	DroppedWays  int   // ways with unresolvable node refs
	DroppedEdges int   // graph edges with unresolvable node refs
	DroppedRings int   // relation members that were not usable rings
	Ignored      int64
}
