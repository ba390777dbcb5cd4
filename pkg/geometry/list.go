package geometry

import "github.com/df07/go-mis-pathtracer/pkg/core"

// GeometryList scans every discrete surface linearly and sphere-marches the
// isosurfaces. It is filled at scene construction and read-only afterwards.
type GeometryList struct {
	surfaces    []Surface
	isosurfaces []Isosurface
}

// NewGeometryList creates an empty list
func NewGeometryList() *GeometryList {
	return &GeometryList{}
}

// AddSurface appends a discrete surface
func (l *GeometryList) AddSurface(s Surface) {
	l.surfaces = append(l.surfaces, s)
}

// AddIsosurface appends an implicit surface
func (l *GeometryList) AddIsosurface(iso Isosurface) {
	l.isosurfaces = append(l.isosurfaces, iso)
}

// Surfaces returns the discrete surfaces in insertion order
func (l *GeometryList) Surfaces() []Surface {
	return l.surfaces
}

// Isosurfaces returns the implicit surfaces in insertion order
func (l *GeometryList) Isosurfaces() []Isosurface {
	return l.isosurfaces
}

// NearestIntersection returns the closest discrete or implicit hit
func (l *GeometryList) NearestIntersection(ray core.Ray) (SurfaceIntersection, bool) {
	geoRay := ray.Advance(core.EpsRayGeometry)
	nearest, found := SurfaceIntersection{}, false
	for _, s := range l.surfaces {
		isect, ok := s.Intersect(geoRay)
		if ok && (!found || isect.Distance < nearest.Distance) {
			nearest, found = isect, true
		}
	}
	return nearestWithFields(l.isosurfaces, ray, nearest, found)
}

// WasOccluded reports whether any surface lies on the ray before maxDistance
func (l *GeometryList) WasOccluded(ray core.Ray, maxDistance float64) bool {
	geoRay := ray.Advance(core.EpsRayGeometry)
	geoDist := maxDistance - 2*core.EpsRayGeometry
	for _, s := range l.surfaces {
		if isect, ok := s.Primitive.Intersect(geoRay); ok && isect.Distance < geoDist {
			return true
		}
	}
	return fieldsOccluded(l.isosurfaces, ray, maxDistance)
}

// Bounds returns the union of all discrete surface bounds
func (l *GeometryList) Bounds() core.AABB {
	box := core.EmptyAABB()
	for _, s := range l.surfaces {
		box = box.Union(s.Primitive.BoundingBox())
	}
	return box
}

// nearestWithFields marches the isosurfaces up to the discrete hit (if any)
// and prefers a field hit found before it
func nearestWithFields(isos []Isosurface, ray core.Ray, geo SurfaceIntersection, found bool) (SurfaceIntersection, bool) {
	if len(isos) == 0 {
		return geo, found
	}
	maxDist := core.MaxMarchDistance
	if found {
		maxDist = geo.Distance
	}
	if isect, ok := MarchIsosurfaces(isos, ray.Advance(core.EpsRayField), maxDist); ok {
		return isect, true
	}
	return geo, found
}

// fieldsOccluded is the isosurface half of an occlusion query
func fieldsOccluded(isos []Isosurface, ray core.Ray, maxDistance float64) bool {
	if len(isos) == 0 {
		return false
	}
	_, ok := MarchIsosurfaces(isos, ray.Advance(core.EpsRayField), maxDistance-2*core.EpsRayField)
	return ok
}

// MarchIsosurfaces sphere-marches the ray through the union of the fields.
// Each step advances by the smallest distance estimate. It converges when a
// field is closer than EpsDistField and gives up after MaxFieldSteps or once
// maxDist has been passed.
func MarchIsosurfaces(isos []Isosurface, ray core.Ray, maxDist float64) (SurfaceIntersection, bool) {
	if len(isos) == 0 || maxDist <= 0 {
		return SurfaceIntersection{}, false
	}

	t := 0.0
	for step := 0; step < core.MaxFieldSteps; step++ {
		p := ray.At(t)
		d := maxDist
		for _, iso := range isos {
			dist := iso.Field.Dist(p)
			if dist < core.EpsDistField {
				hit := ray.At(t + dist)
				return SurfaceIntersection{
					Normal:   Gradient(iso.Field, hit, core.DeltaGradient).Normalize(),
					Distance: t + dist,
					Surface:  iso.Ref,
				}, true
			}
			d = min(d, dist)
		}

		t += d
		if t > maxDist {
			return SurfaceIntersection{}, false
		}
	}
	return SurfaceIntersection{}, false
}
