package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/tilecomp/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// pathList collects a repeatable path flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("tilecomp", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
tilecomp - A tiled node-graph image compositor.

Usage:
  tilecomp [options] [GRAPH_PATH...]

Arguments:
  GRAPH_PATH
    A .hcl, .yaml or .yml graph file, or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	var graphs pathList
	flagSet.Var(&graphs, "graph", "Path to a graph file or directory. Repeatable.")
	flagSet.Var(&graphs, "g", "Path to a graph file or directory (shorthand).")
	outFlag := flagSet.String("out", ".", "Directory receiving one image per declared output.")
	formatFlag := flagSet.String("format", "png", "Output image format. Options: 'png' or 'tiff'.")
	widthFlag := flagSet.Int("width", 0, "Render width. 0 uses the graph settings.")
	heightFlag := flagSet.Int("height", 0, "Render height. 0 uses the graph settings.")
	chunkFlag := flagSet.Int("chunk-size", 0, "Tile edge in pixels. 0 uses the graph settings.")
	workersFlag := flagSet.Int("workers", 0, "Number of tile workers. 0 uses one per CPU.")
	qualityFlag := flagSet.String("quality", "", "Render quality. Options: 'high', 'medium', 'low'.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	progressFlag := flagSet.String("progress-url", "", "socket.io server receiving progress events.")
	traceFlag := flagSet.String("trace", "none", "Trace exporter. Options: 'none' or 'stdout'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths := append([]string(nil), graphs...)
	paths = append(paths, flagSet.Args()...)
	if len(paths) == 0 {
		slog.Debug("No graph path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	if _, err := app.ParseLevel(logLevel); err != nil {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		GraphPaths:      paths,
		OutputDir:       *outFlag,
		OutputFormat:    strings.ToLower(*formatFlag),
		Width:           *widthFlag,
		Height:          *heightFlag,
		ChunkSize:       *chunkFlag,
		Workers:         *workersFlag,
		Quality:         strings.ToLower(*qualityFlag),
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		ProgressURL:     *progressFlag,
		TraceExporter:   strings.ToLower(*traceFlag),
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
