package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/urbanforge/osm2scene/internal/graph"
	"github.com/urbanforge/osm2scene/internal/logger"
	"github.com/urbanforge/osm2scene/internal/scene"
	"github.com/urbanforge/osm2scene/internal/sink"
)

var dropExisting bool

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load generated documents into PostgreSQL",
	Long: `Bulk load scene.json and graph.json from the output directory
into PostgreSQL tables (scene_buildings, scene_areas, graph_nodes,
graph_edges) using COPY.`,
	Run: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().BoolVar(&dropExisting, "drop-existing", false, "Drop existing tables before loading")
}

func runLoad(cmd *cobra.Command, args []string) {
	log := logger.Get()
	log.Info("Starting PostgreSQL load",
		zap.String("input_dir", cfg.OutputDir),
		zap.String("database", cfg.DBName),
		zap.String("host", cfg.DBHost),
		zap.String("schema", cfg.DBSchema),
	)
	start := time.Now()

	var sceneDoc scene.Document
	if err := readJSON(filepath.Join(cfg.OutputDir, "scene.json"), &sceneDoc); err != nil {
		exitWithError("failed to read scene document", err)
	}
	var graphDoc graph.Document
	if err := readJSON(filepath.Join(cfg.OutputDir, "graph.json"), &graphDoc); err != nil {
		exitWithError("failed to read graph document", err)
	}

	snk, err := sink.New(cfg, dropExisting)
	if err != nil {
		exitWithError("failed to connect", err)
	}
	defer snk.Close()

	stats, err := snk.Load(cmd.Context(), &sceneDoc, &graphDoc)
	if err != nil {
		exitWithError("load failed", err)
	}

	log.Info("Load complete",
		zap.Duration("duration", time.Since(start).Round(time.Second)),
		zap.Int64("buildings", stats.Buildings),
		zap.Int64("areas", stats.Areas),
		zap.Int64("nodes", stats.Nodes),
		zap.Int64("edges", stats.Edges),
	)
}

func readJSON(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
