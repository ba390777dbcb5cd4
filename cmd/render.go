package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/df07/go-mis-pathtracer/pkg/integrator"
	"github.com/df07/go-mis-pathtracer/pkg/loaders"
	"github.com/df07/go-mis-pathtracer/pkg/material"
	"github.com/df07/go-mis-pathtracer/pkg/renderer"
	"github.com/df07/go-mis-pathtracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a scene progressively and save the averaged frame.
func RenderFrame(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	sc, err := createScene(ctx.String("scene"))
	if err != nil {
		return err
	}

	if meshFile := ctx.String("mesh"); meshFile != "" {
		if err := addMesh(sc, meshFile, ctx.Float64("mesh-size"), ctx.String("mesh-material")); err != nil {
			return err
		}
	}
	if ctx.Bool("bvh") {
		sc.UseBVH()
	}

	integ, err := createIntegrator(ctx)
	if err != nil {
		return err
	}

	opts := renderer.Config{
		Width:    ctx.Int("width"),
		Height:   ctx.Int("height"),
		TileSize: ctx.Int("tile-size"),
		Workers:  ctx.Int("workers"),
		Seed:     uint64(ctx.Int64("seed")),
		Exposure: ctx.Float64("exposure"),
	}

	iterations := ctx.Int("iterations")
	if iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", iterations)
	}

	toneMap := ctx.String("tonemap")
	if toneMap != "gamma" && toneMap != "log" {
		return fmt.Errorf("unknown tone mapping %q", toneMap)
	}

	outFile := ctx.String("out")
	if outFile == "" {
		outFile = filepath.Join("output", sc.Name, fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405")))
	}
	if _, err := renderer.FormatFromPath(outFile); err != nil {
		return err
	}

	r, err := renderer.NewProgressiveRenderer(sc, integ, opts)
	if err != nil {
		return err
	}

	// Interrupting stops the render after the current iteration
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef("rendering %q at %dx%d, %d iterations", sc.Name, opts.Width, opts.Height, iterations)
	results, errs := r.RenderProgressive(runCtx, iterations)
	for result := range results {
		logger.Debugf("iteration %d/%d done", result.Iteration, iterations)
	}
	if err := <-errs; err != nil {
		if runCtx.Err() == nil || r.Iterations() == 0 {
			return err
		}
		logger.Warningf("render interrupted after %d iterations", r.Iterations())
	}

	img := r.Image()
	if toneMap == "log" {
		img = r.ToneMappedImage()
	}

	if err := os.MkdirAll(filepath.Dir(outFile), 0o755); err != nil {
		return fmt.Errorf("while creating output directory: %w", err)
	}
	if err := renderer.SaveImage(outFile, img); err != nil {
		return err
	}
	logger.Noticef("saved %s", outFile)

	displayRenderStats(r.Stats())
	return nil
}

// createScene resolves a built-in scene by name
func createScene(name string) (*scene.Scene, error) {
	return scene.ByName(name)
}

// addMesh loads a PLY mesh and places it at the center of the scene,
// scaled so its largest side is size.
func addMesh(sc *scene.Scene, filename string, size float64, materialName string) error {
	m, ok := material.Presets[materialName]
	if !ok {
		return fmt.Errorf("unknown material preset %q", materialName)
	}
	if size <= 0 {
		return fmt.Errorf("mesh size must be positive, got %g", size)
	}

	mesh, err := loaders.LoadPLY(filename)
	if err != nil {
		return err
	}
	mesh.Fit(sc.Bounds().Center(), size)

	triangles := mesh.Triangles()
	if len(triangles) == 0 {
		return fmt.Errorf("mesh %s has no triangles", filename)
	}
	sc.AddTriangles(triangles, m)
	logger.Infof("added %d triangles from %s", len(triangles), filename)
	return nil
}

// createIntegrator builds the integrator selected on the command line
func createIntegrator(ctx *cli.Context) (integrator.Integrator, error) {
	switch name := ctx.String("integrator"); name {
	case "eyelight":
		return integrator.NewEyeLightIntegrator(), nil
	case "pt":
		config := integrator.DefaultConfig()
		config.MaxPathLength = ctx.Int("max-path-length")
		config.RussianRoulette = !ctx.Bool("no-rr")

		heuristic, err := integrator.ParseHeuristic(ctx.String("heuristic"))
		if err != nil {
			return nil, err
		}
		config.Heuristic = heuristic

		strategy, err := integrator.ParseStrategy(ctx.String("strategy"))
		if err != nil {
			return nil, err
		}
		config.Strategy = strategy

		return integrator.NewPathTracingIntegrator(config), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q", name)
	}
}

func displayRenderStats(stats renderer.RenderStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Iteration", "Paths", "Avg path length", "Escaped", "Paths/s", "Render time"})
	for _, it := range stats.Iterations {
		table.Append([]string{
			fmt.Sprintf("%d", it.Iteration),
			fmt.Sprintf("%d", it.Paths),
			fmt.Sprintf("%.2f", it.AveragePathLength()),
			fmt.Sprintf("%d", it.Escaped),
			fmt.Sprintf("%.0f", it.PathsPerSecond()),
			it.Duration.String(),
		})
	}
	table.SetFooter([]string{
		"TOTAL",
		fmt.Sprintf("%d", stats.TotalSamples),
		fmt.Sprintf("%.2f", stats.AveragePathLength()),
		"",
		fmt.Sprintf("%.1f spp", stats.AverageSamples),
		stats.TotalDuration.String(),
	})

	table.Render()
	logger.Noticef("render statistics\n%s", buf.String())
}
