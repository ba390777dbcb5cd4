package geometry

import (
	"math"

	"github.com/df07/go-mis-pathtracer/pkg/core"
)

// DistanceField is a signed distance function. Negative inside.
type DistanceField interface {
	Dist(p core.Vec3) float64
}

// Gradient approximates the field gradient with central differences
func Gradient(f DistanceField, p core.Vec3, delta float64) core.Vec3 {
	dx := core.NewVec3(delta, 0, 0)
	dy := core.NewVec3(0, delta, 0)
	dz := core.NewVec3(0, 0, delta)
	return core.NewVec3(
		f.Dist(p.Add(dx))-f.Dist(p.Subtract(dx)),
		f.Dist(p.Add(dy))-f.Dist(p.Subtract(dy)),
		f.Dist(p.Add(dz))-f.Dist(p.Subtract(dz)),
	).Multiply(1 / (2 * delta))
}

// FieldFunc adapts a plain function to a DistanceField
type FieldFunc func(p core.Vec3) float64

// Dist calls f
func (f FieldFunc) Dist(p core.Vec3) float64 {
	return f(p)
}

// Torus lies in the xy plane around Center
type Torus struct {
	Center    core.Vec3
	Radius    float64 // ring radius
	Thickness float64 // tube radius
}

// Dist implements DistanceField
func (t Torus) Dist(p core.Vec3) float64 {
	p = p.Subtract(t.Center)
	qx := math.Hypot(p.X, p.Y) - t.Radius
	return math.Hypot(qx, p.Z) - t.Thickness
}

// RoundBox is a box with half extents Dim and edges rounded by R
type RoundBox struct {
	Pos core.Vec3
	Dim core.Vec3
	R   float64
}

// Dist implements DistanceField
func (b RoundBox) Dist(p core.Vec3) float64 {
	q := p.Subtract(b.Pos).Abs().Subtract(b.Dim).Max(core.Vec3{})
	return q.Length() - b.R
}

// Plane is the set of points p with Normal.p == Offset
type Plane struct {
	Normal core.Vec3 // unit
	Offset float64
}

// Dist implements DistanceField
func (pl Plane) Dist(p core.Vec3) float64 {
	return pl.Normal.Dot(p) - pl.Offset
}

// Union of two fields, translated by Pos
type Union struct {
	A, B DistanceField
	Pos  core.Vec3
}

// Dist implements DistanceField
func (u Union) Dist(p core.Vec3) float64 {
	p = p.Subtract(u.Pos)
	return math.Min(u.A.Dist(p), u.B.Dist(p))
}

// Subtraction carves B out of A, translated by Pos
type Subtraction struct {
	A, B DistanceField
	Pos  core.Vec3
}

// Dist implements DistanceField
func (s Subtraction) Dist(p core.Vec3) float64 {
	p = p.Subtract(s.Pos)
	return math.Max(s.A.Dist(p), -s.B.Dist(p))
}

// SminFunc is a smooth minimum with softness k
type SminFunc func(a, b, k float64) float64

// Blend smoothly joins two fields, translated by Pos.
// Smin defaults to SminPoly.
type Blend struct {
	A, B DistanceField
	K    float64
	Pos  core.Vec3
	Smin SminFunc
}

// Dist implements DistanceField
func (bl Blend) Dist(p core.Vec3) float64 {
	p = p.Subtract(bl.Pos)
	smin := bl.Smin
	if smin == nil {
		smin = SminPoly
	}
	return smin(bl.A.Dist(p), bl.B.Dist(p), bl.K)
}

// Displace adds Disp(p) to the distance of A
type Displace struct {
	A    DistanceField
	Disp func(p core.Vec3) float64
}

// Dist implements DistanceField
func (d Displace) Dist(p core.Vec3) float64 {
	return d.A.Dist(p) + d.Disp(p)
}

// SminPoly is the polynomial smooth minimum. k <= 0 gives min.
func SminPoly(a, b, k float64) float64 {
	if k <= 0 {
		return math.Min(a, b)
	}
	h := max(0, min(1, 0.5+0.5*(b-a)/k))
	return b + (a-b)*h - k*h*(1-h)
}

// SminExp is the exponential smooth minimum, sharper for larger k
func SminExp(a, b, k float64) float64 {
	res := math.Exp(-k*a) + math.Exp(-k*b)
	return -math.Log(res) / k
}

// SminPow is the power smooth minimum for positive distances
func SminPow(a, b, k float64) float64 {
	a, b = math.Pow(a, k), math.Pow(b, k)
	return math.Pow(a*b/(a+b), 1/k)
}
