package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/tilecomp/internal/builder"
	"github.com/specialistvlad/tilecomp/internal/config"
	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/specialistvlad/tilecomp/internal/execution"
	"github.com/specialistvlad/tilecomp/internal/fsutil"
	"github.com/specialistvlad/tilecomp/internal/imageio"
	"github.com/specialistvlad/tilecomp/internal/memory"
	"github.com/specialistvlad/tilecomp/internal/operation"
	"github.com/specialistvlad/tilecomp/internal/progress"
	"github.com/specialistvlad/tilecomp/internal/registry"
)

// Run loads the graph description, renders it and writes one image per
// declared output into the output directory. It returns the written paths
// in declaration order.
func (app *App) Run(ctx context.Context) ([]string, error) {
	ctx = ctxlog.WithLogger(ctx, app.logger)
	app.logger.Debug("App.Run method started.")

	app.startHealthCheckServer()
	defer app.closeHealthCheckServer()

	shutdownTracing, err := app.initTracing()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			app.logger.Warn("Tracer shutdown failed.", "error", err)
		}
	}()

	model, err := app.loadModel(ctx)
	if err != nil {
		return nil, err
	}

	images, err := imageio.LoadAll(ctx, inputPaths(model))
	if err != nil {
		return nil, fmt.Errorf("failed to load input images: %w", err)
	}

	settings, err := app.settings(model, images)
	if err != nil {
		return nil, err
	}

	g, err := builder.Build(ctx, model, app.registry, &registry.Env{Images: images})
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	app.logger.Debug("Graph built.", "operations", g.Len())

	reporter, err := app.reporter(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reporter.Close(); err != nil {
			app.logger.Warn("Progress reporter close failed.", "error", err)
		}
	}()

	app.logger.Info("🚀 Starting render...",
		"width", settings.Resolution.Width,
		"height", settings.Resolution.Height,
		"quality", settings.Quality.String(),
	)
	system := execution.New(g, settings, execution.WithReporter(reporter))
	outputs, err := system.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("execution failed: %w", err)
	}

	written, err := app.writeOutputs(outputs)
	if err != nil {
		return nil, err
	}
	app.logger.Info("🏁 Render finished.", "run_id", system.RunID(), "outputs", len(written))
	return written, nil
}

// loadModel runs every loader over the configured paths and merges the
// results.
func (app *App) loadModel(ctx context.Context) (*config.Model, error) {
	var exts []string
	for _, l := range app.loaders {
		exts = append(exts, l.Extensions()...)
	}
	files, err := fsutil.CollectFiles(app.config.GraphPaths, exts...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no graph files found in %v", app.config.GraphPaths)
	}

	model := &config.Model{}
	for _, l := range app.loaders {
		part, err := l.Load(ctx, app.config.GraphPaths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load graph: %w", err)
		}
		model.Merge(part)
	}
	app.logger.Info("Graph description loaded.",
		"files", len(files),
		"nodes", len(model.Nodes),
		"groups", len(model.Groups),
		"outputs", len(model.Outputs),
	)
	return model, nil
}

func inputPaths(model *config.Model) map[string]string {
	paths := make(map[string]string, len(model.Inputs))
	for _, in := range model.Inputs {
		paths[in.Name] = in.Path
	}
	return paths
}

// settings merges the command line over the graph's settings block. Without
// an explicit size the frame takes the size of the first declared input.
func (app *App) settings(model *config.Model, images map[string]*memory.Buffer) (execution.Settings, error) {
	file := config.Settings{}
	if model.Settings != nil {
		file = *model.Settings
	}
	pick := func(flag, fromFile int) int {
		if flag != 0 {
			return flag
		}
		return fromFile
	}

	s := execution.Settings{
		Resolution: operation.Resolution{
			Width:  pick(app.config.Width, file.Width),
			Height: pick(app.config.Height, file.Height),
		},
		ChunkSize: pick(app.config.ChunkSize, file.ChunkSize),
		Workers:   pick(app.config.Workers, file.Workers),
	}

	quality := app.config.Quality
	if quality == "" {
		quality = file.Quality
	}
	if quality != "" {
		q, err := operation.ParseQuality(quality)
		if err != nil {
			return s, err
		}
		s.Quality = q
	}

	if s.Resolution.IsZero() && len(model.Inputs) > 0 {
		if buf, ok := images[model.Inputs[0].Name]; ok {
			s.Resolution = operation.Resolution{Width: buf.Width(), Height: buf.Height()}
			app.logger.Debug("Render size taken from input.", "input", model.Inputs[0].Name)
		}
	}
	if s.Resolution.IsZero() {
		return s, errors.New("render size unknown: set width and height or declare an input image")
	}
	return s, nil
}

// reporter builds the progress reporter chain.
func (app *App) reporter(ctx context.Context) (progress.Reporter, error) {
	reporters := progress.Multi{progress.NewLogReporter(app.logger)}
	if app.config.ProgressURL != "" {
		sio, err := progress.DialSocketIO(ctx, progress.SocketIOConfig{URL: app.config.ProgressURL})
		if err != nil {
			return nil, fmt.Errorf("failed to connect progress reporter: %w", err)
		}
		reporters = append(reporters, sio)
	}
	return reporters, nil
}

func (app *App) writeOutputs(outputs []execution.Output) ([]string, error) {
	if err := os.MkdirAll(app.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	written := make([]string, 0, len(outputs))
	for _, out := range outputs {
		path := filepath.Join(app.config.OutputDir, out.Name+"."+app.config.OutputFormat)
		if err := imageio.WriteFile(path, out.Buffer); err != nil {
			return written, err
		}
		app.logger.Info("Output written.", "name", out.Name, "type", out.DataType.String(), "path", path)
		written = append(written, path)
	}
	return written, nil
}
