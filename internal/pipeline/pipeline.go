// Package pipeline runs the full transformation: loaded features and
// road graph in, scene and routing documents out. Stages run in order
// because each depends on the previous one's output; within the
// per-feature and per-node stages, work fans out across a bounded
// worker group and lands in index-addressed slices so results are
// deterministic regardless of scheduling.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ctessum/geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/urbanforge/osm2scene/internal/aggregate"
	"github.com/urbanforge/osm2scene/internal/config"
	"github.com/urbanforge/osm2scene/internal/estimate"
	"github.com/urbanforge/osm2scene/internal/geo"
	"github.com/urbanforge/osm2scene/internal/graph"
	"github.com/urbanforge/osm2scene/internal/logger"
	"github.com/urbanforge/osm2scene/internal/osmload"
	"github.com/urbanforge/osm2scene/internal/params"
	"github.com/urbanforge/osm2scene/internal/roadsurface"
	"github.com/urbanforge/osm2scene/internal/scene"
	"github.com/urbanforge/osm2scene/internal/script"
)

// Summary reports what a run produced.
type Summary struct {
	Buildings    int
	Water        int
	Parks        int
	RoadShapes   int
	GraphNodes   int
	GraphEdges   int
	DroppedEdges int
	Skipped      int
	Duration     time.Duration
}

// Pipeline holds the run configuration and heuristics.
type Pipeline struct {
	cfg  *config.Config
	prm  *params.Params
	hook *script.Hook
}

// New prepares a pipeline: heuristic params layered from the params
// file and the optional Lua classification hook.
func New(cfg *config.Config) (*Pipeline, error) {
	prm := params.Default()
	if cfg.ParamsFile != "" {
		var err error
		if prm, err = params.Load(cfg.ParamsFile); err != nil {
			return nil, err
		}
	}

	var hook *script.Hook
	if cfg.ScriptFile != "" {
		var err error
		if hook, err = script.Load(cfg.ScriptFile); err != nil {
			return nil, err
		}
	}

	return &Pipeline{cfg: cfg, prm: prm, hook: hook}, nil
}

// Close releases the script hook if one was loaded.
func (p *Pipeline) Close() {
	if p.hook != nil {
		p.hook.Close()
	}
}

// Run transforms loaded input into the two output documents.
func (p *Pipeline) Run(ctx context.Context, in *osmload.Result) (*scene.Document, *graph.Document, *Summary, error) {
	log := logger.Get()
	start := time.Now()
	sum := &Summary{}

	center := computeCenter(in)
	log.Debug("Dataset center computed",
		zap.Float64("x", center.X), zap.Float64("y", center.Y))

	buildings, water, parks, centroids, err := p.transformFeatures(ctx, in.Features, center, sum)
	if err != nil {
		return nil, nil, nil, err
	}

	roadShapes := p.buildRoadSurface(in.Graph, center, sum)

	nodes, err := p.aggregateNodes(ctx, in.Graph, centroids, center)
	if err != nil {
		return nil, nil, nil, err
	}
	edges := p.convertEdges(in.Graph, center)

	graphDoc, dropped := graph.Assemble(nodes, edges)
	sceneDoc := scene.Assemble(buildings, water, parks, scene.AreasFromShapes(roadShapes))

	sum.Buildings = len(sceneDoc.Buildings)
	sum.Water = len(sceneDoc.Water)
	sum.Parks = len(sceneDoc.Parks)
	sum.RoadShapes = len(sceneDoc.Roads)
	sum.GraphNodes = len(graphDoc.Nodes)
	sum.GraphEdges = len(graphDoc.Edges)
	sum.DroppedEdges = dropped
	sum.Duration = time.Since(start)

	log.Info("Pipeline complete",
		zap.Int("buildings", sum.Buildings),
		zap.Int("water", sum.Water),
		zap.Int("parks", sum.Parks),
		zap.Int("road_shapes", sum.RoadShapes),
		zap.Int("graph_nodes", sum.GraphNodes),
		zap.Int("graph_edges", sum.GraphEdges),
		zap.Int("skipped", sum.Skipped),
		zap.Duration("duration", sum.Duration.Round(time.Millisecond)))

	return sceneDoc, graphDoc, sum, nil
}

// computeCenter folds every feature part and edge centerline into the
// shared recentring origin. Both documents must use the same center or
// the spatial join between them breaks.
func computeCenter(in *osmload.Result) geo.Center {
	acc := geo.NewCenterAccum()
	for _, ft := range in.Features {
		for _, part := range ft.Polygons {
			acc.AddPolygon(part)
		}
	}
	for _, e := range in.Graph.Edges {
		acc.AddLine(e.Line)
	}
	return acc.Center()
}

// featureOut is one feature's transform result, slotted by input index.
type featureOut struct {
	buildings []scene.Building
	water     []scene.Area
	parks     []scene.Area
	centroids []aggregate.Building
	skipped   bool
}

// transformFeatures derives per-feature attributes and shapes in
// parallel. A multi-part feature emits one record per part, each part
// carrying the parent's derived attributes; a campus of three halls
// therefore counts its population three times, which is deliberate.
func (p *Pipeline) transformFeatures(ctx context.Context, feats []osmload.Feature, c geo.Center, sum *Summary) (
	[]scene.Building, []scene.Area, []scene.Area, []aggregate.Building, error) {

	outs := make([]featureOut, len(feats))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i := range feats {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := p.transformOne(&feats[i], c)
			if err != nil {
				return err
			}
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, nil, err
	}

	var buildings []scene.Building
	var water, parks []scene.Area
	var centroids []aggregate.Building
	log := logger.Get()
	for i := range outs {
		if outs[i].skipped {
			log.Debug("Skipping feature with no usable geometry",
				zap.Int64("id", feats[i].ID),
				zap.String("category", feats[i].Category.String()))
			sum.Skipped++
			continue
		}
		buildings = append(buildings, outs[i].buildings...)
		water = append(water, outs[i].water...)
		parks = append(parks, outs[i].parks...)
		centroids = append(centroids, outs[i].centroids...)
	}
	return buildings, water, parks, centroids, nil
}

func (p *Pipeline) transformOne(ft *osmload.Feature, c geo.Center) (featureOut, error) {
	var out featureOut

	switch ft.Category {
	case osmload.CategoryBuilding:
		height := estimate.Height(ft.Tags, p.prm)
		area := geo.PolygonArea(ft.Polygons)
		cls := estimate.Classify(ft.Tags, height, area, p.prm)
		if p.hook.HasClassify() {
			var err error
			cls, err = p.hook.Classify(ft.Tags, height, area, cls)
			if err != nil {
				return out, fmt.Errorf("failed to classify building %d: %w", ft.ID, err)
			}
		}

		var data *scene.BuildingData
		if cls.Type != estimate.UseNone {
			data = &scene.BuildingData{
				Type:    cls.Type,
				Density: cls.Density,
				Pop:     cls.Population,
				Jobs:    cls.Jobs,
			}
		}
		// Extract part by part so a degenerate part cannot shift the
		// centroid pairing of the parts that survive.
		for _, part := range ft.Polygons {
			shapes := geo.ExtractPolygons([]geom.Polygon{part}, c)
			if len(shapes) == 0 {
				continue
			}
			out.buildings = append(out.buildings, scene.Building{
				Shape:  shapes[0],
				Height: height,
				Data:   data,
			})
			if data != nil {
				out.centroids = append(out.centroids, aggregate.Building{
					Centroid:   geo.PolygonCentroid(part),
					Population: cls.Population,
					Jobs:       cls.Jobs,
				})
			}
		}
		if len(out.buildings) == 0 {
			out.skipped = true
		}

	case osmload.CategoryWater:
		shapes := geo.ExtractPolygons(ft.Polygons, c)
		if len(shapes) == 0 {
			out.skipped = true
			break
		}
		out.water = scene.AreasFromShapes(shapes)
	case osmload.CategoryPark:
		shapes := geo.ExtractPolygons(ft.Polygons, c)
		if len(shapes) == 0 {
			out.skipped = true
			break
		}
		out.parks = scene.AreasFromShapes(shapes)
	default:
		out.skipped = true
	}
	return out, nil
}

// buildRoadSurface feeds every edge centerline through the width
// estimator and the buffer/union builder.
func (p *Pipeline) buildRoadSurface(rg *osmload.Graph, c geo.Center, sum *Summary) []geo.Shape {
	roads := make([]roadsurface.Road, len(rg.Edges))
	for i, e := range rg.Edges {
		roads[i] = roadsurface.Road{Tags: e.Tags, Line: e.Line}
	}
	shapes, stats := roadsurface.Build(roads, p.prm, c)
	sum.Skipped += stats.Skipped
	return shapes
}

// aggregateNodes joins building stats onto graph nodes within the
// configured radius. Node order is fixed by sorting ids so the fan-out
// is deterministic.
func (p *Pipeline) aggregateNodes(ctx context.Context, rg *osmload.Graph, centroids []aggregate.Building, c geo.Center) (map[int64]*graph.Node, error) {
	ix := aggregate.NewIndex(centroids)
	radius := p.prm.Aggregate.Radius

	ids := make([]int64, 0, len(rg.Nodes))
	for id := range rg.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	results := make([]*graph.Node, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pt := rg.Nodes[id]
			pop, jobs := ix.Near(pt, radius)
			rel := c.Rel(pt)
			results[i] = &graph.Node{X: rel[0], Y: rel[1], Pop: pop, Jobs: jobs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	nodes := make(map[int64]*graph.Node, len(ids))
	for i, id := range ids {
		nodes[id] = results[i]
	}
	return nodes, nil
}

func (p *Pipeline) convertEdges(rg *osmload.Graph, c geo.Center) []graph.Edge {
	edges := make([]graph.Edge, 0, len(rg.Edges))
	for _, e := range rg.Edges {
		edges = append(edges, graph.Edge{
			U:      e.U,
			V:      e.V,
			Oneway: e.Oneway,
			Points: geo.ExtractLine(e.Line, c),
			Length: geo.RoundScalar(lineLength(e.Line)),
		})
	}
	return edges
}

// lineLength sums segment lengths in meters.
func lineLength(l geom.LineString) float64 {
	var d float64
	for i := 1; i < len(l); i++ {
		d += math.Hypot(l[i].X-l[i-1].X, l[i].Y-l[i-1].Y)
	}
	return d
}
