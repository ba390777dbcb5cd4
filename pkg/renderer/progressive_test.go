package renderer

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/df07/go-mis-pathtracer/pkg/core"
	"github.com/df07/go-mis-pathtracer/pkg/integrator"
	"github.com/df07/go-mis-pathtracer/pkg/lights"
	"github.com/df07/go-mis-pathtracer/pkg/scene"
)

var update = flag.Bool("update", false, "rewrite golden files")

func testConfig(width, height, workers int) Config {
	config := DefaultConfig()
	config.Width = width
	config.Height = height
	config.TileSize = 8
	config.Workers = workers
	config.Seed = 2024
	return config
}

func newTestRenderer(t *testing.T, s *scene.Scene, config Config) *ProgressiveRenderer {
	t.Helper()
	pr, err := NewProgressiveRenderer(s, integrator.NewPathTracingIntegrator(integrator.DefaultConfig()), config)
	if err != nil {
		t.Fatalf("NewProgressiveRenderer: %v", err)
	}
	return pr
}

func TestProgressiveConfig(t *testing.T) {
	config := DefaultConfig()
	if config.TileSize != 32 || config.Exposure != 1 || config.Workers != 0 {
		t.Errorf("unexpected defaults %+v", config)
	}

	pr := newTestRenderer(t, scene.NewCornellBox(), Config{Width: 16, Height: 8})
	got := pr.Config()
	if got.TileSize != 32 || got.Workers <= 0 || got.Exposure != 1 {
		t.Errorf("defaults not filled in: %+v", got)
	}
}

func TestProgressiveInvalidInput(t *testing.T) {
	pt := integrator.NewPathTracingIntegrator(integrator.DefaultConfig())

	for _, size := range [][2]int{{0, 10}, {10, 0}, {-1, 5}} {
		_, err := NewProgressiveRenderer(scene.NewCornellBox(), pt, Config{Width: size[0], Height: size[1]})
		if !errors.Is(err, ErrInvalidResolution) {
			t.Errorf("%dx%d: expected ErrInvalidResolution, got %v", size[0], size[1], err)
		}
	}

	broken := scene.New("broken", core.Vec3{})
	broken.AddLight(lights.Light{Kind: lights.KindLuminous, Intensity: core.Splat(1)})
	if _, err := NewProgressiveRenderer(broken, pt, testConfig(4, 4, 1)); !errors.Is(err, scene.ErrInvalidScene) {
		t.Errorf("expected ErrInvalidScene, got %v", err)
	}
}

func TestProgressiveIterate(t *testing.T) {
	pr := newTestRenderer(t, scene.NewCornellBox(), testConfig(20, 12, 3))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		stats, err := pr.Iterate(ctx)
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		if stats.Iteration != i || stats.Paths != 20*12 || stats.Tiles != 6 || stats.Workers != 3 {
			t.Errorf("unexpected stats %+v", stats)
		}
		if stats.AveragePathLength() <= 0 {
			t.Errorf("iteration %d: paths never hit the box", i)
		}
	}

	totals := pr.Stats()
	if totals.TotalSamples != 3*20*12 || len(totals.Iterations) != 3 || totals.AverageSamples != 3 {
		t.Errorf("unexpected totals %+v", totals)
	}
	if pr.Iterations() != 3 {
		t.Errorf("expected 3 iterations, got %d", pr.Iterations())
	}

	img := pr.Image()
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 12 {
		t.Errorf("unexpected image bounds %v", img.Bounds())
	}
	if tm := pr.ToneMappedImage(); tm.Bounds() != img.Bounds() {
		t.Errorf("tone mapped image bounds %v differ from %v", tm.Bounds(), img.Bounds())
	}
}

// Per-pixel seeding makes the image independent of scheduling
func TestProgressiveDeterministicAcrossWorkers(t *testing.T) {
	render := func(workers int) []core.Vec3 {
		pr := newTestRenderer(t, scene.NewCornellSphereLight(), testConfig(24, 16, workers))
		for i := 0; i < 2; i++ {
			if _, err := pr.Iterate(context.Background()); err != nil {
				t.Fatalf("Iterate: %v", err)
			}
		}
		return pr.Framebuffer().AsSlice()
	}

	want := render(1)
	for _, workers := range []int{2, 7} {
		if diff := cmp.Diff(want, render(workers)); diff != "" {
			t.Errorf("%d workers differ from 1 worker (-want +got):\n%s", workers, diff)
		}
	}
}

func TestProgressiveCancelledBeforeIteration(t *testing.T) {
	pr := newTestRenderer(t, scene.NewCornellBox(), testConfig(8, 8, 2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pr.Iterate(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if pr.Iterations() != 0 {
		t.Errorf("cancelled iteration was counted")
	}
	for _, p := range pr.Framebuffer().AsSlice() {
		if !p.IsZero() {
			t.Fatal("cancelled iteration wrote to the framebuffer")
		}
	}
}

func TestRenderProgressive(t *testing.T) {
	pr := newTestRenderer(t, scene.NewCornellPointLight(), testConfig(16, 16, 4))
	results, errs := pr.RenderProgressive(context.Background(), 3)

	var got []int
	for result := range results {
		got = append(got, result.Iteration)
		if result.Image == nil {
			t.Errorf("iteration %d: missing image", result.Iteration)
		}
		if result.IsLast != (result.Iteration == 3) {
			t.Errorf("iteration %d: IsLast = %v", result.Iteration, result.IsLast)
		}
	}
	if err := <-errs; err != nil {
		t.Fatalf("RenderProgressive: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
		t.Errorf("iterations mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderProgressiveCancelled(t *testing.T) {
	pr := newTestRenderer(t, scene.NewCornellBox(), testConfig(8, 8, 1))
	ctx, cancel := context.WithCancel(context.Background())
	results, errs := pr.RenderProgressive(ctx, 1000)

	<-results
	cancel()
	for range results {
	}
	if err := <-errs; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if pr.Iterations() >= 1000 {
		t.Error("cancellation did not stop the render")
	}
}

// nanIntegrator returns NaN for every ray
type nanIntegrator struct{}

func (nanIntegrator) RayColor(core.Ray, *scene.Scene, core.Sampler) (core.Vec3, integrator.PathInfo) {
	return core.Splat(math.NaN()), integrator.PathInfo{}
}

func TestProgressiveRejectsNonFiniteSamples(t *testing.T) {
	pr, err := NewProgressiveRenderer(scene.NewCornellBox(), nanIntegrator{}, testConfig(8, 8, 2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pr.Iterate(context.Background()); !errors.Is(err, ErrNonFiniteSample) {
		t.Errorf("expected ErrNonFiniteSample, got %v", err)
	}
}

// directionIntegrator returns the primary ray direction as the color
type directionIntegrator struct{}

func (directionIntegrator) RayColor(ray core.Ray, _ *scene.Scene, _ core.Sampler) (core.Vec3, integrator.PathInfo) {
	return ray.Direction, integrator.PathInfo{}
}

func TestProgressiveJittersEveryIteration(t *testing.T) {
	config := testConfig(4, 4, 1)
	pr, err := NewProgressiveRenderer(scene.NewCornellBox(), directionIntegrator{}, config)
	if err != nil {
		t.Fatal(err)
	}

	for iteration := 0; iteration < 2; iteration++ {
		pr.Framebuffer().Clear()
		if _, err := pr.Iterate(context.Background()); err != nil {
			t.Fatalf("Iterate: %v", err)
		}

		for y := 0; y < config.Height; y++ {
			for x := 0; x < config.Width; x++ {
				jitter := core.NewPixelSampler(config.Seed, iteration, y*config.Width+x).Get2D()
				want := pr.camera.RayFromScreen(core.NewVec2(float64(x)+jitter.X, float64(y)+jitter.Y)).Direction
				center := pr.camera.RayFromScreen(core.NewVec2(float64(x)+0.5, float64(y)+0.5)).Direction

				got := pr.Framebuffer().Color(x, y)
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("iteration %d pixel (%d, %d) ray mismatch (-want +got):\n%s", iteration, x, y, diff)
				}
				if got == center {
					t.Errorf("iteration %d pixel (%d, %d) sampled the pixel center", iteration, x, y)
				}
			}
		}
	}
}

// goldenFrame is the stored form of a rendered framebuffer
type goldenFrame struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Pixels []core.Vec3 `json:"pixels"`
}

// The Cornell box at one sample per pixel is fully determined by the seed.
// Run with -update to rewrite testdata/cornell_1spp.golden.
func TestCornellBoxGolden(t *testing.T) {
	pr := newTestRenderer(t, scene.NewCornellBox(), testConfig(32, 32, 4))
	if _, err := pr.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	got := goldenFrame{Width: 32, Height: 32, Pixels: pr.Framebuffer().AsSlice()}

	path := filepath.Join("testdata", "cornell_1spp.golden")
	if *update {
		data, err := json.MarshalIndent(got, "", " ")
		if err != nil {
			t.Fatal(err)
		}
		if err := os.MkdirAll("testdata", 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s (run with -update to create it): %v", path, err)
	}

	var want goldenFrame
	if err := json.Unmarshal(data, &want); err != nil {
		t.Fatalf("corrupt golden file: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(1e-9, 1e-12)); diff != "" {
		t.Errorf("Cornell box render changed (-want +got):\n%s", diff)
	}
}
