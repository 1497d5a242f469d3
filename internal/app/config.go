package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/tilecomp/internal/operation"
)

// Config holds all the necessary configuration for an App instance to run.
// Zero render fields fall back to the graph file's settings block.
type Config struct {
	GraphPaths   []string // .hcl, .yaml or directories
	OutputDir    string
	OutputFormat string // png or tiff

	Width     int
	Height    int
	ChunkSize int
	Workers   int
	Quality   string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	ProgressURL     string
	TraceExporter   string // none or stdout
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.GraphPaths) == 0 {
		return nil, errors.New("at least one graph path is required")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	switch cfg.OutputFormat {
	case "":
		cfg.OutputFormat = "png"
	case "png", "tiff":
	default:
		return nil, fmt.Errorf("invalid output format %q: must be 'png' or 'tiff'", cfg.OutputFormat)
	}
	if cfg.Width < 0 || cfg.Height < 0 || cfg.ChunkSize < 0 || cfg.Workers < 0 {
		return nil, errors.New("render sizes and worker counts must not be negative")
	}
	if cfg.Quality != "" {
		if _, err := operation.ParseQuality(cfg.Quality); err != nil {
			return nil, err
		}
	}
	switch cfg.TraceExporter {
	case "":
		cfg.TraceExporter = "none"
	case "none", "stdout":
	default:
		return nil, fmt.Errorf("invalid trace exporter %q: must be 'none' or 'stdout'", cfg.TraceExporter)
	}
	return &cfg, nil
}
