package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-mis-pathtracer/pkg/core"
	"github.com/df07/go-mis-pathtracer/pkg/geometry"
	"github.com/df07/go-mis-pathtracer/pkg/lights"
	"github.com/df07/go-mis-pathtracer/pkg/material"
)

// ErrInvalidScene is wrapped by every Validate failure
var ErrInvalidScene = errors.New("invalid scene")

// CameraSpec describes where a scene wants to be viewed from
type CameraSpec struct {
	Position core.Vec3
	LookAt   core.Vec3
	Up       core.Vec3
	VFov     float64 // vertical field of view in degrees
}

// Scene owns the geometry, materials and lights of a render. It is built
// once and then only read, so it can be shared by all render workers.
type Scene struct {
	Name   string
	Camera CameraSpec

	geometry  *geometry.GeometryList
	accel     geometry.Manager // nil until UseBVH
	materials []material.Material
	lights    []lights.Light
}

// New creates an empty scene whose light 0 is a background of the given intensity
func New(name string, background core.Vec3) *Scene {
	return &Scene{
		Name:     name,
		geometry: geometry.NewGeometryList(),
		lights:   []lights.Light{lights.NewBackground(background)},
		Camera: CameraSpec{
			Position: core.NewVec3(0, 0, -8.6),
			LookAt:   core.NewVec3(0, 0, 1),
			Up:       core.NewVec3(0, 1, 0),
			VFov:     45,
		},
	}
}

// AddMaterial registers a material and returns its ID. Identical materials share an ID.
func (s *Scene) AddMaterial(m material.Material) material.ID {
	for i, existing := range s.materials {
		if existing == m {
			return material.ID(i)
		}
	}
	s.materials = append(s.materials, m)
	return material.ID(len(s.materials) - 1)
}

// AddObject adds discrete geometry shaded by m
func (s *Scene) AddObject(prim geometry.Primitive, m material.Material) material.ID {
	id := s.AddMaterial(m)
	s.geometry.AddSurface(geometry.Surface{Primitive: prim, Ref: geometry.MaterialRef(int(id))})
	s.accel = nil
	return id
}

// AddTriangles adds a triangle mesh shaded by m
func (s *Scene) AddTriangles(triangles []*geometry.Triangle, m material.Material) material.ID {
	id := s.AddMaterial(m)
	for _, t := range triangles {
		s.geometry.AddSurface(geometry.Surface{Primitive: t, Ref: geometry.MaterialRef(int(id))})
	}
	s.accel = nil
	return id
}

// AddSurface adds a surface with a caller-chosen reference. Validate
// reports references that do not resolve.
func (s *Scene) AddSurface(surface geometry.Surface) {
	s.geometry.AddSurface(surface)
	s.accel = nil
}

// AddIsosurface adds the zero level set of field shaded by m
func (s *Scene) AddIsosurface(field geometry.DistanceField, m material.Material) material.ID {
	id := s.AddMaterial(m)
	s.geometry.AddIsosurface(geometry.Isosurface{Field: field, Ref: geometry.MaterialRef(int(id))})
	s.accel = nil
	return id
}

// AddLight adds a light without geometry, such as a point light
func (s *Scene) AddLight(l lights.Light) lights.ID {
	s.lights = append(s.lights, l)
	return lights.ID(len(s.lights) - 1)
}

// AddLuminousObject adds shape as both geometry and an emitter of the given intensity
func (s *Scene) AddLuminousObject(shape lights.LuminousShape, intensity core.Vec3) lights.ID {
	id := s.AddLight(lights.NewLuminous(shape, intensity))
	s.geometry.AddSurface(geometry.Surface{Primitive: shape, Ref: geometry.LightRef(int(id))})
	s.accel = nil
	return id
}

// SetBackground replaces the intensity of light 0
func (s *Scene) SetBackground(intensity core.Vec3) {
	s.lights[0] = lights.NewBackground(intensity)
}

// UseBVH switches queries to a bounding volume hierarchy over the current
// geometry. Adding geometry afterwards falls back to the linear list.
func (s *Scene) UseBVH() {
	s.accel = geometry.NewBVH(s.geometry)
}

// manager returns the structure queries run against
func (s *Scene) manager() geometry.Manager {
	if s.accel != nil {
		return s.accel
	}
	return s.geometry
}

// NearestIntersection returns the closest surface hit along the ray
func (s *Scene) NearestIntersection(ray core.Ray) (geometry.SurfaceIntersection, bool) {
	return s.manager().NearestIntersection(ray)
}

// WasOccluded reports whether anything blocks the ray before maxDistance
func (s *Scene) WasOccluded(ray core.Ray, maxDistance float64) bool {
	return s.manager().WasOccluded(ray, maxDistance)
}

// Material returns the material with the given ID
func (s *Scene) Material(id material.ID) material.Material {
	return s.materials[id]
}

// Light returns the light with the given ID
func (s *Scene) Light(id lights.ID) lights.Light {
	return s.lights[id]
}

// Background returns light 0
func (s *Scene) Background() lights.Light {
	return s.lights[0]
}

// Materials returns all materials indexed by ID
func (s *Scene) Materials() []material.Material {
	return s.materials
}

// Lights returns all lights indexed by ID
func (s *Scene) Lights() []lights.Light {
	return s.lights
}

// LightSampler returns a uniform picker over all lights, background included
func (s *Scene) LightSampler() lights.UniformLightSampler {
	return lights.NewUniformLightSampler(len(s.lights))
}

// Bounds returns the box around the discrete geometry
func (s *Scene) Bounds() core.AABB {
	return s.manager().Bounds()
}

// Stats summarizes the scene contents
type Stats struct {
	Surfaces    int
	Isosurfaces int
	Materials   int
	Lights      int
	BVH         bool
}

// Stats returns counts of the scene contents
func (s *Scene) Stats() Stats {
	return Stats{
		Surfaces:    len(s.geometry.Surfaces()),
		Isosurfaces: len(s.geometry.Isosurfaces()),
		Materials:   len(s.materials),
		Lights:      len(s.lights),
		BVH:         s.accel != nil,
	}
}

// Validate checks that every surface references an existing material or
// light and that lights and materials hold finite values. The integrator
// indexes without checks, so scenes must pass this before rendering.
func (s *Scene) Validate() error {
	if len(s.lights) == 0 || s.lights[0].Kind != lights.KindBackground {
		return fmt.Errorf("%w: light 0 must be the background", ErrInvalidScene)
	}

	check := func(ref geometry.SurfaceRef) error {
		switch ref.Kind {
		case geometry.SurfaceMaterial:
			if ref.ID < 0 || ref.ID >= len(s.materials) {
				return fmt.Errorf("%w: material %d out of range [0,%d)", ErrInvalidScene, ref.ID, len(s.materials))
			}
		case geometry.SurfaceLight:
			if ref.ID < 0 || ref.ID >= len(s.lights) {
				return fmt.Errorf("%w: light %d out of range [0,%d)", ErrInvalidScene, ref.ID, len(s.lights))
			}
			if s.lights[ref.ID].Kind != lights.KindLuminous {
				return fmt.Errorf("%w: surface references %s light %d", ErrInvalidScene, s.lights[ref.ID].Kind, ref.ID)
			}
		default:
			return fmt.Errorf("%w: unknown surface kind %d", ErrInvalidScene, ref.Kind)
		}
		return nil
	}

	for _, surface := range s.geometry.Surfaces() {
		if surface.Primitive == nil {
			return fmt.Errorf("%w: surface without geometry", ErrInvalidScene)
		}
		if err := check(surface.Ref); err != nil {
			return err
		}
	}
	for _, iso := range s.geometry.Isosurfaces() {
		if iso.Field == nil {
			return fmt.Errorf("%w: isosurface without a field", ErrInvalidScene)
		}
		if err := check(iso.Ref); err != nil {
			return err
		}
	}

	for i, m := range s.materials {
		if !m.Diffuse.IsFinite() || !m.Specular.IsFinite() || math.IsNaN(m.PhongExponent) || m.PhongExponent < 0 {
			return fmt.Errorf("%w: material %d has invalid values", ErrInvalidScene, i)
		}
	}
	for i, l := range s.lights {
		if !l.Intensity.IsFinite() {
			return fmt.Errorf("%w: light %d has a non-finite intensity", ErrInvalidScene, i)
		}
		if l.Kind == lights.KindLuminous && l.Shape == nil {
			return fmt.Errorf("%w: luminous light %d has no shape", ErrInvalidScene, i)
		}
	}
	return nil
}
