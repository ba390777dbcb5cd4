package geometry

import (
	"math"

	"github.com/df07/go-mis-pathtracer/pkg/core"
)

// Sphere is both a ray-traced primitive and a distance field
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

// Intersect returns the nearest hit in front of the ray origin
func (s *Sphere) Intersect(ray core.Ray) (Intersection, bool) {
	oc := ray.Origin.Subtract(s.Center)

	// at^2 + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	b := 2 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 || a == 0 {
		return Intersection{}, false
	}

	// Avoid cancellation between b and sqrt(discriminant)
	var q float64
	if b < 0 {
		q = -0.5 * (b - math.Sqrt(discriminant))
	} else {
		q = -0.5 * (b + math.Sqrt(discriminant))
	}
	if q == 0 {
		return Intersection{}, false
	}

	t0, t1 := q/a, c/q
	if t0 > t1 {
		t0, t1 = t1, t0
	}

	t := t0
	if t <= 0 {
		t = t1
	}
	if t <= 0 {
		return Intersection{}, false
	}

	normal := oc.Add(ray.Direction.Multiply(t)).Normalize()
	return Intersection{Normal: normal, Distance: t}, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	r := core.Splat(s.Radius)
	return core.NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}

// Dist returns the signed distance from p to the sphere surface
func (s *Sphere) Dist(p core.Vec3) float64 {
	return p.Subtract(s.Center).Length() - s.Radius
}

// SampleDirection picks a direction uniformly inside the cone the sphere
// subtends from the point from. Returns the direction, the distance to the
// sphere along it and the solid angle pdf. Fails when from is inside.
func (s *Sphere) SampleDirection(from core.Vec3, u core.Vec2) (core.Vec3, float64, float64, bool) {
	toCenter := s.Center.Subtract(from)
	dist2 := toCenter.LengthSquared()
	r2 := s.Radius * s.Radius
	if dist2 <= r2 {
		return core.Vec3{}, 0, 0, false
	}

	cosThetaMax := math.Sqrt(1 - r2/dist2)
	pdf := core.UniformConePdf(cosThetaMax)
	if pdf == 0 {
		return core.Vec3{}, 0, 0, false
	}

	local := core.SampleUniformCone(cosThetaMax, u)
	dir := core.NewFrameFromZ(toCenter).ToWorld(local).Normalize()

	// Distance to the near side; clamp for directions grazing the silhouette
	dist := math.Sqrt(dist2)
	proj := dist * local.Z
	chord2 := r2 - (dist2 - proj*proj)
	distance := proj - math.Sqrt(math.Max(0, chord2))

	return dir, distance, pdf, true
}

// DirectionPdf returns the solid angle pdf SampleDirection would have
// produced for dir, or false when dir misses the subtended cone
func (s *Sphere) DirectionPdf(from, dir core.Vec3) (float64, bool) {
	toCenter := s.Center.Subtract(from)
	dist2 := toCenter.LengthSquared()
	r2 := s.Radius * s.Radius
	if dist2 <= r2 {
		return 0, false
	}

	cosThetaMax := math.Sqrt(1 - r2/dist2)
	cosTheta := dir.Normalize().Dot(toCenter.Multiply(1 / math.Sqrt(dist2)))
	if cosTheta < cosThetaMax-1e-9 {
		return 0, false
	}
	pdf := core.UniformConePdf(cosThetaMax)
	return pdf, pdf > 0
}
