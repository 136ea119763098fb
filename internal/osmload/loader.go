// Package osmload reads an OSM PBF extract into the pipeline's input
// model: categorized area features and the road graph, both projected to
// local planar meters. Loading is two-pass: the first pass caches node
// coordinates, the second assembles ways and relations against the cache.
package osmload

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ctessum/geom"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"

	"github.com/urbanforge/osm2scene/internal/config"
	"github.com/urbanforge/osm2scene/internal/geo"
	"github.com/urbanforge/osm2scene/internal/logger"
	"github.com/urbanforge/osm2scene/internal/nodecache"
	"github.com/urbanforge/osm2scene/internal/proj"
)

// Result is everything the pipeline needs from an extract.
type Result struct {
	Features []Feature
	Graph    *Graph
	Stats    Stats
}

// Loader reads one PBF file.
type Loader struct {
	cfg   *config.Config
	cache nodecache.Cache
}

// NewLoader creates a loader. With FlatNodesFile set, node coordinates
// go to a memory-mapped sparse file instead of the heap.
func NewLoader(cfg *config.Config) (*Loader, error) {
	var cache nodecache.Cache
	if cfg.FlatNodesFile != "" {
		ff, err := nodecache.NewFlatFile(cfg.FlatNodesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open flat node cache: %w", err)
		}
		cache = ff
	} else {
		cache = nodecache.NewMemory()
	}
	return &Loader{cfg: cfg, cache: cache}, nil
}

// Close releases the node cache.
func (l *Loader) Close() error {
	return l.cache.Close()
}

// wayRef is a highway way held back for graph construction.
type wayRef struct {
	id    int64
	tags  map[string]string
	nodes []int64
}

// Run executes the two-pass load.
func (l *Loader) Run(ctx context.Context) (*Result, error) {
	log := logger.Get()

	f, err := os.Open(l.cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	res := &Result{Graph: &Graph{Nodes: map[int64]geom.Point{}}}

	// Pass 1: cache node coordinates and find the projection origin.
	start := time.Now()
	planar, err := l.cacheNodes(ctx, f, res)
	if err != nil {
		return nil, err
	}
	log.Info("Node pass complete",
		zap.Int64("nodes", res.Stats.NodesCached),
		zap.Duration("duration", time.Since(start).Round(time.Millisecond)))
	if planar == nil {
		log.Warn("Extract contains no nodes, output will be empty")
		return res, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind input: %w", err)
	}

	// Pass 2: assemble ways and relations.
	start = time.Now()
	roads, err := l.assemble(ctx, f, planar, res)
	if err != nil {
		return nil, err
	}
	l.buildGraph(roads, planar, res)
	log.Info("Way pass complete",
		zap.Int64("ways", res.Stats.WaysSeen),
		zap.Int("features", len(res.Features)),
		zap.Int("graph_nodes", res.Stats.GraphNodes),
		zap.Int("graph_edges", res.Stats.GraphEdges),
		zap.Duration("duration", time.Since(start).Round(time.Millisecond)))

	return res, nil
}

// cacheNodes scans nodes only, stopping at the first way.
func (l *Loader) cacheNodes(ctx context.Context, f *os.File, res *Result) (*proj.Planar, error) {
	scanner := osmpbf.New(ctx, f, l.cfg.Workers)
	defer scanner.Close()

	minLon, minLat := 180.0, 90.0
	maxLon, maxLat := -180.0, -90.0

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if l.cfg.BBox != nil && !l.cfg.BBox.Contains(o.Lat, o.Lon) {
				continue
			}
			l.cache.Put(int64(o.ID), o.Lon, o.Lat)
			res.Stats.NodesCached++
			if o.Lon < minLon {
				minLon = o.Lon
			}
			if o.Lon > maxLon {
				maxLon = o.Lon
			}
			if o.Lat < minLat {
				minLat = o.Lat
			}
			if o.Lat > maxLat {
				maxLat = o.Lat
			}
		case *osm.Way:
			// Nodes precede ways in PBF ordering; done.
			if res.Stats.NodesCached == 0 {
				return nil, nil
			}
			return proj.NewPlanar((minLon+maxLon)/2, (minLat+maxLat)/2), nil
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to scan nodes: %w", err)
	}
	if res.Stats.NodesCached == 0 {
		return nil, nil
	}
	return proj.NewPlanar((minLon+maxLon)/2, (minLat+maxLat)/2), nil
}

// assemble scans ways and relations, producing area features and
// collecting highway ways for graph construction.
func (l *Loader) assemble(ctx context.Context, f *os.File, planar *proj.Planar, res *Result) ([]wayRef, error) {
	scanner := osmpbf.New(ctx, f, l.cfg.Workers)
	defer scanner.Close()

	var roads []wayRef
	// Closed-way rings kept for multipolygon relation assembly.
	rings := map[int64][]geom.Point{}

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Way:
			res.Stats.WaysSeen++
			ids := wayNodeIDs(o)
			closed := len(ids) >= 4 && ids[0] == ids[len(ids)-1]

			if closed {
				if ring, ok := l.resolve(ids, planar); ok {
					rings[int64(o.ID)] = ring
				}
			}

			tags := o.Tags.Map()
			if len(tags) == 0 {
				continue
			}
			switch cat := Categorize(tags); cat {
			case CategoryBuilding, CategoryWater, CategoryPark:
				if !closed {
					res.Stats.Ignored++
					continue
				}
				ring, ok := rings[int64(o.ID)]
				if !ok {
					res.Stats.DroppedWays++
					continue
				}
				l.addFeature(res, Feature{
					ID:       int64(o.ID),
					Category: cat,
					Tags:     tags,
					Polygons: []geom.Polygon{{ring}},
				})
			case CategoryRoad:
				roads = append(roads, wayRef{id: int64(o.ID), tags: tags, nodes: ids})
			default:
				res.Stats.Ignored++
			}

		case *osm.Relation:
			res.Stats.Relations++
			l.assembleRelation(o, rings, res)
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to scan ways: %w", err)
	}
	return roads, nil
}

// assembleRelation turns a multipolygon relation into one multi-part
// feature. Only members that are themselves closed ways participate;
// open-ring stitching is not attempted and such members are counted as
// dropped.
func (l *Loader) assembleRelation(rel *osm.Relation, rings map[int64][]geom.Point, res *Result) {
	tags := rel.Tags.Map()
	if tags["type"] != "multipolygon" {
		return
	}
	cat := Categorize(tags)
	if cat != CategoryBuilding && cat != CategoryWater && cat != CategoryPark {
		return
	}

	var outers, inners [][]geom.Point
	for _, m := range rel.Members {
		if m.Type != osm.TypeWay {
			continue
		}
		ring, ok := rings[m.Ref]
		if !ok {
			res.Stats.DroppedRings++
			continue
		}
		if m.Role == "inner" {
			inners = append(inners, ring)
		} else {
			outers = append(outers, ring)
		}
	}
	if len(outers) == 0 {
		return
	}

	polys := make([]geom.Polygon, len(outers))
	for i, outer := range outers {
		polys[i] = geom.Polygon{outer}
	}
	for _, inner := range inners {
		for i, outer := range outers {
			if geo.PointInRing(inner[0], outer) {
				polys[i] = append(polys[i], inner)
				break
			}
		}
	}

	l.addFeature(res, Feature{
		ID:       int64(rel.ID),
		Category: cat,
		Tags:     tags,
		Polygons: polys,
	})
}

func (l *Loader) addFeature(res *Result, ft Feature) {
	res.Features = append(res.Features, ft)
	switch ft.Category {
	case CategoryBuilding:
		res.Stats.Buildings++
	case CategoryWater:
		res.Stats.Water++
	case CategoryPark:
		res.Stats.Parks++
	}
}

// buildGraph splits highway ways into edges at endpoints and at nodes
// shared by more than one way. Edges with unresolvable coordinates are
// dropped and counted: losing one segment beats aborting the run.
func (l *Loader) buildGraph(roads []wayRef, planar *proj.Planar, res *Result) {
	res.Stats.RoadWays = len(roads)

	usage := map[int64]int{}
	for _, w := range roads {
		for _, id := range w.nodes {
			usage[id]++
		}
	}

	for _, w := range roads {
		oneway, reversed := onewayFlag(w.tags)
		nodes := w.nodes
		if reversed {
			nodes = reverseIDs(nodes)
		}

		start := 0
		for i := 1; i < len(nodes); i++ {
			// Split at the far endpoint and at every shared node. The
			// check goes by node id, so it holds for reversed ways too.
			if i != len(nodes)-1 && usage[nodes[i]] < 2 {
				continue
			}
			line, ok := l.resolve(nodes[start:i+1], planar)
			if !ok {
				res.Stats.DroppedEdges++
				start = i
				continue
			}
			u, v := nodes[start], nodes[i]
			res.Graph.Nodes[u] = line[0]
			res.Graph.Nodes[v] = line[len(line)-1]
			res.Graph.Edges = append(res.Graph.Edges, Edge{
				U: u, V: v,
				Oneway: oneway,
				Tags:   w.tags,
				Line:   line,
			})
			start = i
		}
	}

	res.Stats.GraphNodes = len(res.Graph.Nodes)
	res.Stats.GraphEdges = len(res.Graph.Edges)
}

// resolve projects a node id sequence, failing when any id is missing
// from the cache (filtered by bbox or absent from the extract).
func (l *Loader) resolve(ids []int64, planar *proj.Planar) ([]geom.Point, bool) {
	pts := make([]geom.Point, len(ids))
	for i, id := range ids {
		lon, lat, ok := l.cache.Get(id)
		if !ok {
			return nil, false
		}
		x, y := planar.Project(lon, lat)
		pts[i] = geom.Point{X: x, Y: y}
	}
	return pts, true
}

func wayNodeIDs(w *osm.Way) []int64 {
	ids := make([]int64, len(w.Nodes))
	for i, n := range w.Nodes {
		ids[i] = int64(n.ID)
	}
	return ids
}

// onewayFlag parses the oneway tag. A "-1" value means the way runs
// against its drawn direction, so the caller must flip the node order.
func onewayFlag(tags map[string]string) (oneway, reversed bool) {
	switch tags["oneway"] {
	case "yes", "true", "1":
		return true, false
	case "-1", "reverse":
		return true, true
	}
	if tags["junction"] == "roundabout" {
		return true, false
	}
	return false, false
}

func reverseIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}
