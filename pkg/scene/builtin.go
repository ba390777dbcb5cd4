package scene

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/df07/go-mis-pathtracer/pkg/core"
	"github.com/df07/go-mis-pathtracer/pkg/geometry"
	"github.com/df07/go-mis-pathtracer/pkg/lights"
	"github.com/df07/go-mis-pathtracer/pkg/material"
)

// ErrUnknownScene is returned by ByName for unregistered names
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string
	Description string
	build       func() *Scene
}

var builtins = []SceneInfo{
	{"cornell", "Cornell box lit by the sky through its open front", NewCornellBox},
	{"cornell-light", "Cornell box lit by a luminous sphere", NewCornellSphereLight},
	{"cornell-area", "Cornell box lit by a triangle area light under the ceiling", NewCornellAreaLight},
	{"cornell-point", "Cornell box lit by a point light", NewCornellPointLight},
	{"cornell-glossy", "Cornell box with Phong mirror and ceramic spheres", NewCornellGlossy},
	{"isosurfaces", "Blended, carved and displaced distance fields", NewIsosurfaces},
}

// List returns the built-in scenes sorted by ID
func List() []SceneInfo {
	infos := slices.Clone(builtins)
	slices.SortFunc(infos, func(a, b SceneInfo) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return infos
}

// ByName builds the built-in scene with the given ID
func ByName(name string) (*Scene, error) {
	for _, info := range builtins {
		if info.ID == name {
			return info.build(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
}

// Corners of the Cornell box, a 5 unit cube around the origin
var cornellCorners = [8]core.Vec3{
	core.NewVec3(-2.5, 2.5, -2.5),  // 0
	core.NewVec3(2.5, 2.5, -2.5),   // 1
	core.NewVec3(2.5, 2.5, 2.5),    // 2
	core.NewVec3(-2.5, 2.5, 2.5),   // 3
	core.NewVec3(-2.5, -2.5, -2.5), // 4
	core.NewVec3(2.5, -2.5, -2.5),  // 5
	core.NewVec3(2.5, -2.5, 2.5),   // 6
	core.NewVec3(-2.5, -2.5, 2.5),  // 7
}

// addCornellWalls adds floor, ceiling and back wall in white, the left wall
// in red and the right wall in green. The front stays open.
func addCornellWalls(s *Scene) {
	cb := cornellCorners
	tri := func(a, b, c int, m material.Material) {
		s.AddObject(geometry.NewTriangle(cb[a], cb[b], cb[c]), m)
	}

	// floor
	tri(5, 4, 7, material.WhiteDiffuse)
	tri(7, 6, 5, material.WhiteDiffuse)

	// ceiling
	tri(2, 3, 0, material.WhiteDiffuse)
	tri(0, 1, 2, material.WhiteDiffuse)

	// back wall
	tri(2, 6, 7, material.WhiteDiffuse)
	tri(7, 3, 2, material.WhiteDiffuse)

	// left wall
	tri(3, 7, 4, material.RedDiffuse)
	tri(4, 0, 3, material.RedDiffuse)

	// right wall
	tri(1, 5, 6, material.GreenDiffuse)
	tri(6, 2, 1, material.GreenDiffuse)
}

// NewCornellBox creates the reference box: five diffuse walls, one diffuse
// sphere and daylight from the background
func NewCornellBox() *Scene {
	s := New("cornell", material.DaylightColor.Multiply(4))
	addCornellWalls(s)
	s.AddObject(geometry.NewSphere(core.NewVec3(-1, -1.4, 0.2), 0.8), material.BlueDiffuse)
	return s
}

// NewCornellSphereLight replaces the daylight by a small luminous sphere
func NewCornellSphereLight() *Scene {
	s := New("cornell-light", core.Vec3{})
	addCornellWalls(s)
	s.AddObject(geometry.NewSphere(core.NewVec3(-1, -1.4, 0.2), 0.8), material.SkyBlueDiffuse)
	s.AddObject(geometry.NewSphere(core.NewVec3(1, -1.9, 0), 0.6), material.MagentaDiffuse)
	s.AddLuminousObject(geometry.NewSphere(core.NewVec3(0, 1.8, 0), 0.4), material.DaylightColor.Multiply(20))
	return s
}

// NewCornellAreaLight hangs an emitting square just under the ceiling
func NewCornellAreaLight() *Scene {
	s := New("cornell-area", core.Vec3{})
	addCornellWalls(s)
	s.AddObject(geometry.NewSphere(core.NewVec3(-1, -1.4, 0.2), 0.8), material.SkyBlueDiffuse)
	s.AddObject(geometry.NewSphere(core.NewVec3(1, -1.9, 0), 0.6), material.MagentaDiffuse)

	quad := geometry.NewQuad(core.NewVec3(-0.75, 2.48, -0.75), core.NewVec3(1.5, 0, 0), core.NewVec3(0, 0, 1.5))
	for _, tri := range quad {
		s.AddLuminousObject(tri, material.DaylightColor.Multiply(12))
	}
	return s
}

// NewCornellPointLight lights the box with a point light near the ceiling
func NewCornellPointLight() *Scene {
	s := New("cornell-point", core.Vec3{})
	addCornellWalls(s)
	s.AddObject(geometry.NewSphere(core.NewVec3(-1, -1.4, 0.2), 0.8), material.BlueDiffuse)
	s.AddObject(geometry.NewSphere(core.NewVec3(1, -1.9, 0), 0.6), material.MagentaDiffuse)
	s.AddLight(lights.NewPoint(core.NewVec3(0, 1.5, 0), material.DaylightColor.Multiply(8)))
	return s
}

// NewCornellGlossy shows the Phong lobe at several exponents
func NewCornellGlossy() *Scene {
	s := New("cornell-glossy", material.DaylightColor.Multiply(4))
	addCornellWalls(s)
	s.AddObject(geometry.NewSphere(core.NewVec3(-1.2, -1.7, 0.5), 0.8), material.DarkMirror)
	s.AddObject(geometry.NewSphere(core.NewVec3(1.2, -1.7, 0.3), 0.8), material.WhiteCeramics)
	s.AddObject(geometry.NewSphere(core.NewVec3(0, -2, -1.2), 0.5), material.GoldenSpecular)
	s.AddLuminousObject(geometry.NewSphere(core.NewVec3(0, 1.9, 0), 0.3), material.DaylightColor.Multiply(15))
	return s
}

// NewIsosurfaces places distance-field objects inside the box
func NewIsosurfaces() *Scene {
	s := New("isosurfaces", material.DaylightColor.Multiply(4))
	addCornellWalls(s)

	// Two spheres melted together
	s.AddIsosurface(geometry.Blend{
		A:   geometry.NewSphere(core.NewVec3(-0.5, 0, 0), 0.6),
		B:   geometry.NewSphere(core.NewVec3(0.5, 0, 0), 0.6),
		K:   0.4,
		Pos: core.NewVec3(-1, -1.6, 0.5),
	}, material.GoldenMirror)

	// A rounded box with a spherical bite taken out
	s.AddIsosurface(geometry.Subtraction{
		A:   geometry.RoundBox{Dim: core.Splat(0.5), R: 0.1},
		B:   geometry.NewSphere(core.NewVec3(0, 0.3, -0.3), 0.6),
		Pos: core.NewVec3(1.3, -1.9, 0),
	}, material.WhiteCeramics)

	// A rippled torus
	s.AddIsosurface(geometry.Displace{
		A: geometry.Torus{Center: core.NewVec3(0, 1, 0.5), Radius: 0.8, Thickness: 0.2},
		Disp: func(p core.Vec3) float64 {
			return 0.02 * math.Sin(10*p.X) * math.Sin(10*p.Y) * math.Sin(10*p.Z)
		},
	}, material.RedDiffuse)

	return s
}
