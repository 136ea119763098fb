// Package sink loads generated documents into PostgreSQL so the scene
// and routing data can be queried alongside other city datasets.
// Geometry is stored as JSONB rather than PostGIS types: the shapes are
// recentred local meters, not georeferenced coordinates.
package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/urbanforge/osm2scene/internal/config"
	"github.com/urbanforge/osm2scene/internal/graph"
	"github.com/urbanforge/osm2scene/internal/logger"
	"github.com/urbanforge/osm2scene/internal/scene"
)

// Stats reports rows written per table group.
type Stats struct {
	Buildings int64
	Areas     int64
	Nodes     int64
	Edges     int64
}

// Sink writes documents into PostgreSQL.
type Sink struct {
	cfg          *config.Config
	pool         *pgxpool.Pool
	dropExisting bool
}

// New connects to the database.
func New(cfg *config.Config, dropExisting bool) (*Sink, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Workers)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return &Sink{cfg: cfg, pool: pool, dropExisting: dropExisting}, nil
}

// Close releases the connection pool.
func (s *Sink) Close() {
	s.pool.Close()
}

// Load writes both documents inside one transaction.
func (s *Sink) Load(ctx context.Context, sceneDoc *scene.Document, graphDoc *graph.Document) (*Stats, error) {
	log := logger.Get()
	stats := &Stats{}

	if s.cfg.DBSchema != "public" {
		if _, err := s.pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", s.cfg.DBSchema)); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	if err := s.createTables(ctx); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if stats.Buildings, err = s.copyBuildings(ctx, tx, sceneDoc.Buildings); err != nil {
		return nil, err
	}
	if stats.Areas, err = s.copyAreas(ctx, tx, sceneDoc); err != nil {
		return nil, err
	}
	if stats.Nodes, err = s.copyNodes(ctx, tx, graphDoc.Nodes); err != nil {
		return nil, err
	}
	if stats.Edges, err = s.copyEdges(ctx, tx, graphDoc.Edges); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	log.Info("Database load complete",
		zap.Int64("buildings", stats.Buildings),
		zap.Int64("areas", stats.Areas),
		zap.Int64("nodes", stats.Nodes),
		zap.Int64("edges", stats.Edges))
	return stats, nil
}

func (s *Sink) table(name string) string {
	return fmt.Sprintf("%s.%s", s.cfg.DBSchema, name)
}

func (s *Sink) createTables(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			height DOUBLE PRECISION NOT NULL,
			use_type TEXT,
			density DOUBLE PRECISION,
			pop INTEGER,
			jobs INTEGER,
			shape JSONB NOT NULL
		)`, s.table("scene_buildings")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			shape JSONB NOT NULL
		)`, s.table("scene_areas")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY,
			x DOUBLE PRECISION NOT NULL,
			y DOUBLE PRECISION NOT NULL,
			pop INTEGER NOT NULL,
			jobs INTEGER NOT NULL
		)`, s.table("graph_nodes")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			u BIGINT NOT NULL,
			v BIGINT NOT NULL,
			oneway BOOLEAN NOT NULL,
			length DOUBLE PRECISION NOT NULL,
			points JSONB NOT NULL
		)`, s.table("graph_edges")),
	}

	tables := []string{"scene_buildings", "scene_areas", "graph_nodes", "graph_edges"}
	if s.dropExisting {
		for _, t := range tables {
			if _, err := s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", s.table(t))); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", t, err)
			}
		}
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	if !s.dropExisting {
		for _, t := range tables {
			if _, err := s.pool.Exec(ctx, fmt.Sprintf("TRUNCATE %s", s.table(t))); err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", t, err)
			}
		}
	}
	return nil
}

func (s *Sink) copyBuildings(ctx context.Context, tx pgx.Tx, buildings []scene.Building) (int64, error) {
	rows := make([][]interface{}, 0, len(buildings))
	for _, b := range buildings {
		shape, err := json.Marshal(b.Shape)
		if err != nil {
			return 0, fmt.Errorf("failed to encode building shape: %w", err)
		}
		var useType interface{}
		var density, pop, jobs interface{}
		if b.Data != nil {
			useType = b.Data.Type
			density = b.Data.Density
			pop = b.Data.Pop
			jobs = b.Data.Jobs
		}
		rows = append(rows, []interface{}{b.Height, useType, density, pop, jobs, shape})
	}
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{s.cfg.DBSchema, "scene_buildings"},
		[]string{"height", "use_type", "density", "pop", "jobs", "shape"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to copy buildings: %w", err)
	}
	return n, nil
}

func (s *Sink) copyAreas(ctx context.Context, tx pgx.Tx, doc *scene.Document) (int64, error) {
	var rows [][]interface{}
	add := func(kind string, areas []scene.Area) error {
		for _, a := range areas {
			shape, err := json.Marshal(a.Shape)
			if err != nil {
				return fmt.Errorf("failed to encode %s shape: %w", kind, err)
			}
			rows = append(rows, []interface{}{kind, shape})
		}
		return nil
	}
	if err := add("water", doc.Water); err != nil {
		return 0, err
	}
	if err := add("park", doc.Parks); err != nil {
		return 0, err
	}
	if err := add("road", doc.Roads); err != nil {
		return 0, err
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{s.cfg.DBSchema, "scene_areas"},
		[]string{"kind", "shape"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to copy areas: %w", err)
	}
	return n, nil
}

func (s *Sink) copyNodes(ctx context.Context, tx pgx.Tx, nodes map[int64]*graph.Node) (int64, error) {
	rows := make([][]interface{}, 0, len(nodes))
	for id, n := range nodes {
		rows = append(rows, []interface{}{id, n.X, n.Y, n.Pop, n.Jobs})
	}
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{s.cfg.DBSchema, "graph_nodes"},
		[]string{"id", "x", "y", "pop", "jobs"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to copy nodes: %w", err)
	}
	return n, nil
}

func (s *Sink) copyEdges(ctx context.Context, tx pgx.Tx, edges []graph.Edge) (int64, error) {
	rows := make([][]interface{}, 0, len(edges))
	for _, e := range edges {
		points, err := json.Marshal(e.Points)
		if err != nil {
			return 0, fmt.Errorf("failed to encode edge points: %w", err)
		}
		rows = append(rows, []interface{}{e.U, e.V, e.Oneway, e.Length, points})
	}
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{s.cfg.DBSchema, "graph_edges"},
		[]string{"u", "v", "oneway", "length", "points"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to copy edges: %w", err)
	}
	return n, nil
}
