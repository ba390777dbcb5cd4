package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/df07/go-mis-pathtracer/pkg/core"
	"github.com/df07/go-mis-pathtracer/pkg/integrator"
	"github.com/df07/go-mis-pathtracer/pkg/log"
	"github.com/df07/go-mis-pathtracer/pkg/scene"
)

var logger = log.New("renderer")

var (
	// ErrInvalidResolution is returned for non-positive image sizes
	ErrInvalidResolution = errors.New("invalid resolution")

	// ErrNonFiniteSample is returned when an integrator produces NaN or Inf
	ErrNonFiniteSample = errors.New("non-finite sample")
)

// Config contains configuration for progressive rendering
type Config struct {
	Width    int
	Height   int
	TileSize int     // Size of each square tile
	Workers  int     // Number of tiles rendered in parallel (0 = use CPU count)
	Seed     uint64  // Base seed of every per-pixel random stream
	Exposure float64 // Multiplier applied before gamma when producing images
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:    512,
		Height:   512,
		TileSize: 32,
		Workers:  0,
		Seed:     1,
		Exposure: 1,
	}
}

// ProgressiveRenderer adds one sample per pixel to its framebuffer on every
// iteration. Iterations are not safe to run concurrently with each other.
type ProgressiveRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	camera     *PerspectiveCamera
	config     Config
	tiles      []Tile
	frame      *Framebuffer
	iteration  int // completed iterations
	stats      RenderStats
}

// NewProgressiveRenderer validates the scene and prepares an empty framebuffer
func NewProgressiveRenderer(s *scene.Scene, integ integrator.Integrator, config Config) (*ProgressiveRenderer, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidResolution, config.Width, config.Height)
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultConfig().TileSize
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Exposure <= 0 {
		config.Exposure = 1
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("while preparing scene %q: %w", s.Name, err)
	}

	tiles := NewTileGrid(config.Width, config.Height, config.TileSize)
	logger.Debugf("scene %q: %+v, %d tiles of %dpx", s.Name, s.Stats(), len(tiles), config.TileSize)

	return &ProgressiveRenderer{
		scene:      s,
		integrator: integ,
		camera:     NewPerspectiveCamera(s.Camera, config.Width, config.Height),
		config:     config,
		tiles:      tiles,
		frame:      NewFramebuffer(config.Width, config.Height),
		stats:      RenderStats{TotalPixels: config.Width * config.Height},
	}, nil
}

// Iterate traces one path per pixel and accumulates the result. ctx is
// checked before the iteration starts; an iteration that has started runs
// to completion. If a tile fails the framebuffer holds a partial iteration.
func (pr *ProgressiveRenderer) Iterate(ctx context.Context) (IterationStats, error) {
	if err := ctx.Err(); err != nil {
		return IterationStats{}, err
	}

	start := time.Now()
	iteration := pr.iteration
	perTile := make([]tileStats, len(pr.tiles))

	sem := semaphore.NewWeighted(int64(pr.config.Workers))
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	for _, tile := range pr.tiles {
		// Only fails once a tile has failed and cancelled gctx
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			stats, err := pr.renderTile(gctx, tile, iteration)
			perTile[tile.ID] = stats
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return IterationStats{}, fmt.Errorf("while rendering iteration %d: %w", iteration+1, err)
	}

	pr.iteration++
	stats := IterationStats{
		Iteration: pr.iteration,
		Duration:  time.Since(start),
		Workers:   pr.config.Workers,
		Tiles:     len(pr.tiles),
	}
	for _, ts := range perTile {
		stats.Paths += ts.paths
		stats.Vertices += ts.vertices
		stats.Escaped += ts.escaped
	}
	pr.stats.add(stats)

	logger.Infof("iteration %d: %d paths in %s (%.2f vertices/path, %d workers)",
		stats.Iteration, stats.Paths, stats.Duration, stats.AveragePathLength(), stats.Workers)
	return stats, nil
}

// renderTile traces the pixels of one tile. Each pixel draws from its own
// stream seeded by (seed, iteration, pixel index), so the result does not
// depend on the worker count or the order tiles are scheduled in.
func (pr *ProgressiveRenderer) renderTile(ctx context.Context, tile Tile, iteration int) (tileStats, error) {
	var stats tileStats
	sampler := core.NewRandomSampler(0, 0)
	bounds := tile.Bounds

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sampler.SeedPixel(pr.config.Seed, iteration, y*pr.config.Width+x)

			jitter := sampler.Get2D()
			ray := pr.camera.RayFromScreen(core.NewVec2(float64(x)+jitter.X, float64(y)+jitter.Y))
			color, info := pr.integrator.RayColor(ray, pr.scene, sampler)
			if !color.IsFinite() {
				return stats, fmt.Errorf("%w at pixel (%d, %d): %v", ErrNonFiniteSample, x, y, color)
			}
			pr.frame.AddColor(x, y, color)

			stats.paths++
			stats.vertices += info.Length
			if info.Escaped {
				stats.escaped++
			}
		}
	}
	return stats, nil
}

// IterationResult is sent after every completed iteration
type IterationResult struct {
	Iteration int
	Image     *image.RGBA // average of all iterations so far
	Stats     IterationStats
	IsLast    bool
}

// RenderProgressive runs iterations in the background and sends a result
// after each one. Cancellation is honoured between iterations. The error
// channel receives at most one error and is closed when rendering stops.
func (pr *ProgressiveRenderer) RenderProgressive(ctx context.Context, iterations int) (<-chan IterationResult, <-chan error) {
	results := make(chan IterationResult, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(results)
		defer close(errs)

		logger.Infof("starting progressive rendering of %q: %d iterations at %dx%d",
			pr.scene.Name, iterations, pr.config.Width, pr.config.Height)

		for i := 0; i < iterations; i++ {
			stats, err := pr.Iterate(ctx)
			if err != nil {
				errs <- err
				return
			}

			result := IterationResult{
				Iteration: stats.Iteration,
				Image:     pr.Image(),
				Stats:     stats,
				IsLast:    i == iterations-1,
			}
			select {
			case results <- result:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return results, errs
}

// Image returns the average of the completed iterations with exposure and gamma applied
func (pr *ProgressiveRenderer) Image() *image.RGBA {
	return pr.frame.ToImage(pr.scale(), pr.config.Exposure)
}

// ToneMappedImage returns the average of the completed iterations through the log tone mapper
func (pr *ProgressiveRenderer) ToneMappedImage() *image.RGBA {
	return pr.frame.ToneMapLog(pr.scale() * pr.config.Exposure)
}

// scale converts accumulated sums to averages
func (pr *ProgressiveRenderer) scale() float64 {
	if pr.iteration == 0 {
		return 0
	}
	return 1 / float64(pr.iteration)
}

// Framebuffer returns the accumulation buffer
func (pr *ProgressiveRenderer) Framebuffer() *Framebuffer {
	return pr.frame
}

// Iterations returns the number of completed iterations
func (pr *ProgressiveRenderer) Iterations() int {
	return pr.iteration
}

// Stats returns the statistics of all completed iterations
func (pr *ProgressiveRenderer) Stats() RenderStats {
	return pr.stats
}

// Config returns the effective configuration, with defaults filled in
func (pr *ProgressiveRenderer) Config() Config {
	return pr.config
}
