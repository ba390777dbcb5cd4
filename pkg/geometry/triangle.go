package geometry

import (
	"math"

	"github.com/df07/go-mis-pathtracer/pkg/core"
)

// Triangle represents a single triangle defined by three vertices.
// Its normal follows the winding (V1-V0) x (V2-V0).
type Triangle struct {
	V0, V1, V2 core.Vec3
	normal     core.Vec3
	area       float64
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3) *Triangle {
	cross := v1.Subtract(v0).Cross(v2.Subtract(v0))
	return &Triangle{
		V0:     v0,
		V1:     v1,
		V2:     v2,
		normal: cross.Normalize(),
		area:   0.5 * cross.Length(),
	}
}

// NewQuad creates the two triangles of the parallelogram corner, corner+u+v
func NewQuad(corner, u, v core.Vec3) [2]*Triangle {
	return [2]*Triangle{
		NewTriangle(corner, corner.Add(u), corner.Add(u).Add(v)),
		NewTriangle(corner, corner.Add(u).Add(v), corner.Add(v)),
	}
}

// Normal returns the unit geometric normal
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// Area returns the surface area
func (t *Triangle) Area() float64 {
	return t.area
}

// Intersect tests the ray against the triangle. A hit requires the three
// edge functions to share a sign, edges included.
func (t *Triangle) Intersect(ray core.Ray) (Intersection, bool) {
	ao := t.V0.Subtract(ray.Origin)
	bo := t.V1.Subtract(ray.Origin)
	co := t.V2.Subtract(ray.Origin)

	v0d := co.Cross(bo).Dot(ray.Direction)
	v1d := bo.Cross(ao).Dot(ray.Direction)
	v2d := ao.Cross(co).Dot(ray.Direction)

	inside := (v0d <= 0 && v1d <= 0 && v2d <= 0) || (v0d >= 0 && v1d >= 0 && v2d >= 0)
	if !inside {
		return Intersection{}, false
	}

	denom := t.normal.Dot(ray.Direction)
	if denom == 0 {
		return Intersection{}, false
	}
	dist := t.normal.Dot(ao) / denom
	if dist <= 0 || math.IsNaN(dist) {
		return Intersection{}, false
	}
	return Intersection{Normal: t.normal, Distance: dist}, true
}

// BoundingBox returns the box around the vertices, padded so that
// axis-aligned triangles keep a non-zero thickness
func (t *Triangle) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(t.V0, t.V1, t.V2).Expand(1e-6)
}

// SampleDirection samples a point uniformly over the triangle's area and
// returns the direction towards it, its distance and the solid angle pdf
func (t *Triangle) SampleDirection(from core.Vec3, u core.Vec2) (core.Vec3, float64, float64, bool) {
	if t.area == 0 {
		return core.Vec3{}, 0, 0, false
	}

	b := core.SampleUniformTriangle(u)
	point := t.V0.Multiply(b.X).Add(t.V1.Multiply(b.Y)).Add(t.V2.Multiply(1 - b.X - b.Y))
	toPoint := point.Subtract(from)
	dist := toPoint.Length()
	if dist == 0 {
		return core.Vec3{}, 0, 0, false
	}

	dir := toPoint.Multiply(1 / dist)
	pdf := core.PdfAreaToSolidAngle(1/t.area, dist, t.normal.Dot(dir))
	if pdf == 0 {
		return core.Vec3{}, 0, 0, false
	}
	return dir, dist, pdf, true
}

// DirectionPdf returns the solid angle pdf of SampleDirection for dir
func (t *Triangle) DirectionPdf(from, dir core.Vec3) (float64, bool) {
	isect, ok := t.Intersect(core.NewRay(from, dir.Normalize()))
	if !ok || t.area == 0 {
		return 0, false
	}
	pdf := core.PdfAreaToSolidAngle(1/t.area, isect.Distance, t.normal.Dot(dir.Normalize()))
	return pdf, pdf > 0
}
