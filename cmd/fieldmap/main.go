package main

import (
	"flag"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fieldmap/internal/altimetry"
	"fieldmap/internal/board"
	"fieldmap/internal/config"
	"fieldmap/internal/editor"
	"fieldmap/internal/geodesy"
	"fieldmap/internal/tui"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file")
	savePath := flag.String("save", "", "document save path (default fieldmap.json)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store := board.NewStore()

	// profiles are optional; without a credential the engine reports the
	// missing key on first use instead of failing at startup
	var altimeter editor.Altimeter
	client := altimetry.NewClient(cfg.Elevation.APIKey, cfg.Elevation.BaseURL, cfg.Elevation.Timeout, logger)
	altimeter = altimetry.NewService(client, logger)

	opts := tui.Options{
		Center:   geodesy.LatLng{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLng},
		Zoom:     cfg.Map.Zoom,
		SavePath: *savePath,
	}
	if err := tui.Run(store, altimeter, logger, opts); err != nil {
		logger.Error("program exited", zap.Error(err))
		log.Fatal(err)
	}
}

// newLogger writes structured logs to a file; the TUI owns the terminal.
func newLogger(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{cfg.File}
	zc.ErrorOutputPaths = []string{cfg.File}
	return zc.Build()
}
