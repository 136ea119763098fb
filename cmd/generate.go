package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/urbanforge/osm2scene/internal/config"
	"github.com/urbanforge/osm2scene/internal/logger"
	"github.com/urbanforge/osm2scene/internal/metrics"
	"github.com/urbanforge/osm2scene/internal/osmload"
	"github.com/urbanforge/osm2scene/internal/pipeline"
)

var (
	bboxStr       string
	paramsFile    string
	scriptFile    string
	flatNodesFile string
)

var generateCmd = &cobra.Command{
	Use:   "generate <input.osm.pbf>",
	Short: "Generate scene and graph documents from a PBF extract",
	Long: `Read an OSM PBF extract and write two JSON documents into the
output directory:

  scene.json  - buildings (height, use, synthetic demographics), water,
                parks, and the merged road surface
  graph.json  - routing nodes with aggregated population/jobs and edges
                with centerline geometry

All coordinates are local meters relative to the dataset center.`,
	Args: cobra.ExactArgs(1),
	Run:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&bboxStr, "bbox", "b", "", "Bounding box filter: minlon,minlat,maxlon,maxlat")
	generateCmd.Flags().StringVar(&paramsFile, "params", "", "YAML file overriding heuristic constants")
	generateCmd.Flags().StringVar(&scriptFile, "script", "", "Lua script with a classify() override")
	generateCmd.Flags().StringVar(&flatNodesFile, "flat-nodes", "", "Memory-mapped node cache file (for large extracts)")
}

func runGenerate(cmd *cobra.Command, args []string) {
	log := logger.Get()

	cfg.InputFile = args[0]
	cfg.ParamsFile = paramsFile
	cfg.ScriptFile = scriptFile
	cfg.FlatNodesFile = flatNodesFile

	bbox, err := config.ParseBBox(bboxStr)
	if err != nil {
		exitWithError("invalid bbox", err)
	}
	cfg.BBox = bbox

	if err := cfg.Validate(); err != nil {
		exitWithError("invalid configuration", err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		exitWithError("failed to create output directory", err)
	}

	log.Info("Starting scene generation",
		zap.String("input", cfg.InputFile),
		zap.String("output_dir", cfg.OutputDir),
		zap.Int("workers", cfg.Workers),
	)
	start := time.Now()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go metrics.NewCollector(cfg.MetricsInterval, log).Start(ctx)

	ldr, err := osmload.NewLoader(cfg)
	if err != nil {
		exitWithError("failed to create loader", err)
	}
	defer ldr.Close()

	input, err := ldr.Run(ctx)
	if err != nil {
		exitWithError("load failed", err)
	}

	pipe, err := pipeline.New(cfg)
	if err != nil {
		exitWithError("failed to create pipeline", err)
	}
	defer pipe.Close()

	sceneDoc, graphDoc, sum, err := pipe.Run(ctx, input)
	if err != nil {
		exitWithError("pipeline failed", err)
	}

	if err := writeJSON(filepath.Join(cfg.OutputDir, "scene.json"), sceneDoc); err != nil {
		exitWithError("failed to write scene document", err)
	}
	if err := writeJSON(filepath.Join(cfg.OutputDir, "graph.json"), graphDoc); err != nil {
		exitWithError("failed to write graph document", err)
	}

	log.Info("Generation complete",
		zap.Duration("duration", time.Since(start).Round(time.Millisecond)),
		zap.Int("buildings", sum.Buildings),
		zap.Int("road_shapes", sum.RoadShapes),
		zap.Int("graph_nodes", sum.GraphNodes),
		zap.Int("graph_edges", sum.GraphEdges),
	)
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
