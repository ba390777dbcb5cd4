package integrator

import (
	"math"

	"github.com/df07/go-mis-pathtracer/pkg/core"
	"github.com/df07/go-mis-pathtracer/pkg/material"
	"github.com/df07/go-mis-pathtracer/pkg/scene"
)

// missColor is what the eye-light integrator shows for rays that escape
var missColor = core.Splat(0.5)

// EyeLightIntegrator shades every hit as if lit from the camera. It
// ignores the scene lights and is meant for previewing geometry.
type EyeLightIntegrator struct{}

// NewEyeLightIntegrator creates the debug integrator
func NewEyeLightIntegrator() *EyeLightIntegrator {
	return &EyeLightIntegrator{}
}

// RayColor returns the diffuse color scaled by the cosine to the viewer,
// black on light surfaces and grey on a miss
func (e *EyeLightIntegrator) RayColor(ray core.Ray, s *scene.Scene, _ core.Sampler) (core.Vec3, PathInfo) {
	hit, ok := s.NearestIntersection(ray)
	if !ok {
		return missColor, PathInfo{Escaped: true}
	}
	if hit.Surface.IsLight() {
		return core.Vec3{}, PathInfo{Escaped: true}
	}

	cos := math.Abs(hit.Normal.Dot(ray.Direction.Negate()))
	return s.Material(material.ID(hit.Surface.ID)).Diffuse.Multiply(cos), PathInfo{Length: 1}
}
