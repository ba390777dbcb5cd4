package geometry

import "github.com/df07/go-mis-pathtracer/pkg/core"

// SurfaceKind tells whether a surface is shaded by a material or is a light
type SurfaceKind uint8

const (
	SurfaceMaterial SurfaceKind = iota
	SurfaceLight
)

// SurfaceRef identifies the material or light that owns a surface
type SurfaceRef struct {
	Kind SurfaceKind
	ID   int
}

// MaterialRef references the material with the given index
func MaterialRef(id int) SurfaceRef {
	return SurfaceRef{Kind: SurfaceMaterial, ID: id}
}

// LightRef references the light with the given index
func LightRef(id int) SurfaceRef {
	return SurfaceRef{Kind: SurfaceLight, ID: id}
}

// IsLight reports whether the surface emits light
func (r SurfaceRef) IsLight() bool {
	return r.Kind == SurfaceLight
}

// Intersection is a hit against bare geometry
type Intersection struct {
	Normal   core.Vec3 // unit, as stored by the primitive (not face-forwarded)
	Distance float64   // along the ray, > 0
}

// SurfaceIntersection is a hit tagged with the owning surface
type SurfaceIntersection struct {
	Normal   core.Vec3
	Distance float64
	Surface  SurfaceRef
}

// Primitive is discrete geometry that can be intersected directly
type Primitive interface {
	Intersect(ray core.Ray) (Intersection, bool)
	BoundingBox() core.AABB
}

// Surface couples a primitive with the material or light it belongs to
type Surface struct {
	Primitive Primitive
	Ref       SurfaceRef
}

// Intersect tests the surface and tags the hit with its reference
func (s Surface) Intersect(ray core.Ray) (SurfaceIntersection, bool) {
	isect, ok := s.Primitive.Intersect(ray)
	if !ok {
		return SurfaceIntersection{}, false
	}
	return SurfaceIntersection{Normal: isect.Normal, Distance: isect.Distance, Surface: s.Ref}, true
}

// Isosurface is the zero level set of a distance field
type Isosurface struct {
	Field DistanceField
	Ref   SurfaceRef
}

// Manager answers the two ray queries the integrator needs. Implementations
// are read-only once built and safe for concurrent use.
type Manager interface {
	// NearestIntersection returns the closest hit along the ray
	NearestIntersection(ray core.Ray) (SurfaceIntersection, bool)
	// WasOccluded reports whether anything blocks the ray before maxDistance
	WasOccluded(ray core.Ray, maxDistance float64) bool
	// Bounds returns the box around all discrete primitives
	Bounds() core.AABB
}
