package main

import (
	"os"

	"github.com/urbanforge/osm2scene/cmd"
	"github.com/urbanforge/osm2scene/internal/logger"
)

func main() {
	err := cmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
