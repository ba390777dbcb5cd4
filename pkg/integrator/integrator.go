package integrator

import (
	"github.com/df07/go-mis-pathtracer/pkg/core"
	"github.com/df07/go-mis-pathtracer/pkg/scene"
)

// PathInfo describes one traced path
type PathInfo struct {
	Length  int  // surface interactions before termination
	Escaped bool // the path ended on the background or a light
}

// Integrator defines the interface for light transport algorithms.
// Implementations are read-only after construction and may be shared by
// all render workers; the sampler is owned by the caller.
type Integrator interface {
	// RayColor estimates the radiance arriving along ray
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) (core.Vec3, PathInfo)
}
