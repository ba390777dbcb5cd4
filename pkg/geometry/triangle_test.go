package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-mis-pathtracer/pkg/core"
)

func TestTriangle_Intersect(t *testing.T) {
	tri := NewTriangle(core.NewVec3(1, -1, -3), core.NewVec3(-1, -1, -3), core.NewVec3(-1, 1, -3))

	tests := []struct {
		name         string
		ray          core.Ray
		expectHit    bool
		expectedDist float64
	}{
		{"through interior along normal", core.NewRay(core.NewVec3(-0.5, -0.5, -5), core.NewVec3(0, 0, 1)), true, 2},
		{"through interior from the other side", core.NewRay(core.NewVec3(-0.5, -0.5, 0), core.NewVec3(0, 0, -1)), true, 3},
		{"on an edge", core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1)), true, 2},
		{"outside the edges", core.NewRay(core.NewVec3(0.9, 0.9, -5), core.NewVec3(0, 0, 1)), false, 0},
		{"behind the origin", core.NewRay(core.NewVec3(-0.5, -0.5, -2), core.NewVec3(0, 0, 1)), false, 0},
		{"parallel to the plane", core.NewRay(core.NewVec3(-0.5, -0.5, -3.5), core.NewVec3(1, 0, 0)), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isect, ok := tri.Intersect(tt.ray)
			if ok != tt.expectHit {
				t.Fatalf("hit = %v, expected %v", ok, tt.expectHit)
			}
			if ok && math.Abs(isect.Distance-tt.expectedDist) > 1e-9 {
				t.Errorf("distance = %f, expected %f", isect.Distance, tt.expectedDist)
			}
		})
	}
}

func TestTriangle_NormalAndArea(t *testing.T) {
	tri := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0))
	if tri.Normal() != core.NewVec3(0, 0, 1) {
		t.Errorf("normal = %v, expected +z", tri.Normal())
	}
	if tri.Area() != 2 {
		t.Errorf("area = %f, expected 2", tri.Area())
	}
}

func TestNewQuad(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0))
	for i, tri := range quad {
		if tri.Normal() != core.NewVec3(0, 0, 1) {
			t.Errorf("triangle %d normal = %v, expected +z", i, tri.Normal())
		}
	}

	hits := 0
	for _, tri := range quad {
		if _, ok := tri.Intersect(core.NewRay(core.NewVec3(0.7, 0.2, 1), core.NewVec3(0, 0, -1))); ok {
			hits++
		}
	}
	if hits != 1 {
		t.Errorf("interior point covered by %d triangles, expected 1", hits)
	}
}

func TestTriangle_SampleDirection(t *testing.T) {
	tri := NewTriangle(core.NewVec3(-1, -1, 1), core.NewVec3(1, -1, 1), core.NewVec3(0, 1, 1))
	from := core.Vec3{}
	sampler := core.NewRandomSampler(3, 4)

	for i := 0; i < 1000; i++ {
		dir, dist, pdf, ok := tri.SampleDirection(from, sampler.Get2D())
		if !ok {
			t.Fatal("sampling failed")
		}
		evalPdf, ok := tri.DirectionPdf(from, dir)
		if !ok {
			continue // edge samples may fall just outside
		}
		if math.Abs(evalPdf-pdf) > 1e-6*pdf {
			t.Fatalf("DirectionPdf = %f, expected %f", evalPdf, pdf)
		}
		if isect, _ := tri.Intersect(core.NewRay(from, dir)); math.Abs(isect.Distance-dist) > 1e-9 {
			t.Fatalf("distance %f, intersection says %f", dist, isect.Distance)
		}
	}

	// The solid angle pdf must integrate to one over the directions that see the triangle
	n := 400000
	sum := 0.0
	for i := 0; i < n; i++ {
		dir, spherePdf := core.SampleUniformSphere(sampler.Get2D())
		if pdf, ok := tri.DirectionPdf(from, dir); ok {
			sum += pdf / spherePdf
		}
	}
	if integral := sum / float64(n); math.Abs(integral-1) > 0.05 {
		t.Errorf("pdf integrates to %f, expected 1", integral)
	}
}
