package integrator

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-mis-pathtracer/pkg/core"
	"github.com/df07/go-mis-pathtracer/pkg/geometry"
	"github.com/df07/go-mis-pathtracer/pkg/lights"
	"github.com/df07/go-mis-pathtracer/pkg/material"
	"github.com/df07/go-mis-pathtracer/pkg/scene"
)

// greyFloor is a diffuse material reflecting half of the incoming light
var greyFloor = material.NewDiffuse(core.Splat(0.5))

// createFloorScene creates a large grey floor in the y=0 plane. The quad is
// offset so the origin is away from its diagonal.
func createFloorScene(background core.Vec3) *scene.Scene {
	s := scene.New("floor", background)
	for _, tri := range geometry.NewQuad(core.NewVec3(-50, 0, -37), core.NewVec3(100, 0, 0), core.NewVec3(0, 0, 100)) {
		s.AddObject(tri, greyFloor)
	}
	return s
}

// floorRay looks down at the origin from the side
func floorRay() core.Ray {
	return core.NewRay(core.NewVec3(3, 3, 0), core.NewVec3(-1, -1, 0).Normalize())
}

// estimate averages n paths along the same ray
func estimate(integ Integrator, s *scene.Scene, ray core.Ray, n int, seed uint64) core.Vec3 {
	sampler := core.NewRandomSampler(seed, 7)
	var sum core.Vec3
	for i := 0; i < n; i++ {
		color, _ := integ.RayColor(ray, s, sampler)
		sum = sum.Add(color)
	}
	return sum.Multiply(1 / float64(n))
}

func TestPathTracingCameraSeesEmission(t *testing.T) {
	s := scene.New("sky", core.NewVec3(0.2, 0.4, 0.6))
	s.AddLuminousObject(geometry.NewSphere(core.NewVec3(0, 0, 5), 1), core.Splat(3))
	pt := NewPathTracingIntegrator(DefaultConfig())
	sampler := core.NewRandomSampler(1, 2)

	tests := []struct {
		name     string
		dir      core.Vec3
		expected core.Vec3
	}{
		{"background", core.NewVec3(0, 0, -1), core.NewVec3(0.2, 0.4, 0.6)},
		{"luminous sphere", core.NewVec3(0, 0, 1), core.Splat(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color, info := pt.RayColor(core.NewRay(core.Vec3{}, tt.dir), s, sampler)
			if color != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, color)
			}
			if info.Length != 0 || !info.Escaped {
				t.Errorf("expected an escaped path of length 0, got %+v", info)
			}
		})
	}
}

// A floor under a uniform sky reflects exactly albedo times the sky
// radiance, because nothing above it can be hit again
func TestPathTracingFloorUnderSky(t *testing.T) {
	s := createFloorScene(core.Splat(1))
	const paths = 20000
	const tolerance = 0.02

	for _, rr := range []bool{false, true} {
		for _, strategy := range []Strategy{StrategyMIS, StrategyLight, StrategyBRDF} {
			config := DefaultConfig()
			config.RussianRoulette = rr
			config.Strategy = strategy

			name := strategy.String()
			if rr {
				name += "/roulette"
			}
			t.Run(name, func(t *testing.T) {
				got := estimate(NewPathTracingIntegrator(config), s, floorRay(), paths, 42)
				if math.Abs(got.X-0.5) > tolerance || math.Abs(got.Y-0.5) > tolerance || math.Abs(got.Z-0.5) > tolerance {
					t.Errorf("expected radiance 0.5, got %v", got)
				}
			})
		}
	}
}

// A sphere light of radius r at height d above a diffuse floor gives the
// point below it a radiance of albedo * L * (r/d)^2
func TestPathTracingSphereLightStrategiesAgree(t *testing.T) {
	s := createFloorScene(core.Vec3{})
	s.AddLuminousObject(geometry.NewSphere(core.NewVec3(0, 2, 0), 0.5), core.Splat(4))
	expected := 0.5 * 4 * (0.5 / 2) * (0.5 / 2)

	const paths = 40000
	const tolerance = 0.015

	heuristics := map[string]core.Heuristic{
		"power":   core.PowerHeuristic,
		"balance": core.BalanceHeuristic,
		"max":     core.MaxHeuristic,
	}

	for _, rr := range []bool{false, true} {
		for _, strategy := range []Strategy{StrategyMIS, StrategyLight, StrategyBRDF} {
			config := DefaultConfig()
			config.RussianRoulette = rr
			config.Strategy = strategy

			name := strategy.String()
			if rr {
				name += "/roulette"
			}
			t.Run(name, func(t *testing.T) {
				got := estimate(NewPathTracingIntegrator(config), s, floorRay(), paths, 3)
				if math.Abs(got.X-expected) > tolerance {
					t.Errorf("expected %f, got %f", expected, got.X)
				}
			})
		}
	}

	for name, h := range heuristics {
		t.Run("mis/"+name, func(t *testing.T) {
			config := DefaultConfig()
			config.Heuristic = h
			got := estimate(NewPathTracingIntegrator(config), s, floorRay(), paths, 5)
			if math.Abs(got.X-expected) > tolerance {
				t.Errorf("expected %f, got %f", expected, got.X)
			}
		})
	}
}

// Point lights are delta lights and only reachable by next-event estimation
func TestPathTracingPointLight(t *testing.T) {
	s := createFloorScene(core.Vec3{})
	s.AddLight(lights.NewPoint(core.NewVec3(0, 2, 0), core.Splat(8)))

	// albedo/pi * I * cos / d^2
	expected := 0.5 / math.Pi * 8 / 4
	const tolerance = 0.01

	for _, strategy := range []Strategy{StrategyMIS, StrategyLight} {
		t.Run(strategy.String(), func(t *testing.T) {
			config := DefaultConfig()
			config.Strategy = strategy
			got := estimate(NewPathTracingIntegrator(config), s, floorRay(), 20000, 11)
			if math.Abs(got.X-expected) > tolerance {
				t.Errorf("expected %f, got %f", expected, got.X)
			}
		})
	}

	t.Run("brdf cannot reach it", func(t *testing.T) {
		config := DefaultConfig()
		config.Strategy = StrategyBRDF
		got := estimate(NewPathTracingIntegrator(config), s, floorRay(), 1000, 11)
		if !got.IsZero() {
			t.Errorf("expected black, got %v", got)
		}
	})
}

func TestPathTracingMaxPathLength(t *testing.T) {
	s := createFloorScene(core.Splat(1))

	tests := []struct {
		name      string
		maxLength int
	}{
		{"no interactions", 0},
		{"direct light only", 1},
		{"default", MaxPathLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.MaxPathLength = tt.maxLength
			pt := NewPathTracingIntegrator(config)
			sampler := core.NewRandomSampler(9, 9)

			for i := 0; i < 1000; i++ {
				color, info := pt.RayColor(floorRay(), s, sampler)
				if info.Length > tt.maxLength {
					t.Fatalf("path length %d exceeds %d", info.Length, tt.maxLength)
				}
				if tt.maxLength == 0 && !color.IsZero() {
					t.Fatalf("expected black without interactions, got %v", color)
				}
			}
		})
	}
}

// Inside a closed box with a light the path length is bounded only by
// Russian roulette and the cap
func TestPathTracingCornellBoxIsFinite(t *testing.T) {
	for _, name := range []string{"cornell", "cornell-light", "cornell-point", "cornell-glossy", "isosurfaces"} {
		t.Run(name, func(t *testing.T) {
			s, err := scene.ByName(name)
			if err != nil {
				t.Fatal(err)
			}
			pt := NewPathTracingIntegrator(DefaultConfig())
			sampler := core.NewRandomSampler(1, 1)

			var sum core.Vec3
			for i := 0; i < 500; i++ {
				dir, _ := core.SampleUniformSphere(sampler.Get2D())
				color, info := pt.RayColor(core.NewRay(core.NewVec3(0, 0, -1), dir), s, sampler)
				if !color.IsFinite() || color.X < 0 || color.Y < 0 || color.Z < 0 {
					t.Fatalf("invalid color %v", color)
				}
				if info.Length > MaxPathLength {
					t.Fatalf("path length %d exceeds the cap", info.Length)
				}
				sum = sum.Add(color)
			}
			if sum.IsZero() {
				t.Error("scene rendered completely black")
			}
		})
	}
}

func TestPathTracingDeterministic(t *testing.T) {
	s, _ := scene.ByName("cornell-light")
	pt := NewPathTracingIntegrator(DefaultConfig())
	ray := core.NewRay(s.Camera.Position, core.NewVec3(0.1, -0.2, 1).Normalize())

	a := estimate(pt, s, ray, 200, 77)
	b := estimate(pt, s, ray, 200, 77)
	if a != b {
		t.Errorf("same seed gave %v and %v", a, b)
	}
}

func TestParseOptions(t *testing.T) {
	for _, name := range []string{"mis", "light", "brdf"} {
		s, err := ParseStrategy(name)
		if err != nil || s.String() != name {
			t.Errorf("ParseStrategy(%q) = %v, %v", name, s, err)
		}
	}
	if _, err := ParseStrategy("bdpt"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("expected ErrUnknownOption, got %v", err)
	}

	for _, name := range []string{"power", "balance", "max"} {
		h, err := ParseHeuristic(name)
		if err != nil || h == nil {
			t.Errorf("ParseHeuristic(%q) failed: %v", name, err)
			continue
		}
		if w := h(1, 1); math.Abs(w-0.5) > 1e-12 {
			t.Errorf("%s heuristic with equal pdfs = %f, expected 0.5", name, w)
		}
	}
	if _, err := ParseHeuristic("cubic"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("expected ErrUnknownOption, got %v", err)
	}
}
