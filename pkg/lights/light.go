package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-mis-pathtracer/pkg/core"
	"github.com/df07/go-mis-pathtracer/pkg/geometry"
)

// ID indexes a light in a scene's light list. Index 0 is the background.
type ID int

// Kind enumerates the supported light variants
type Kind uint8

const (
	KindBackground Kind = iota
	KindPoint
	KindLuminous
)

func (k Kind) String() string {
	switch k {
	case KindBackground:
		return "background"
	case KindPoint:
		return "point"
	case KindLuminous:
		return "luminous"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// LuminousShape is geometry that can act as an emitter. It must be able to
// sample directions towards itself and report the matching solid angle pdf.
type LuminousShape interface {
	geometry.Primitive
	SampleDirection(from core.Vec3, u core.Vec2) (dir core.Vec3, dist, pdf float64, ok bool)
	DirectionPdf(from, dir core.Vec3) (float64, bool)
}

// Light is a closed variant over the light kinds. Only the fields of its
// kind are meaningful.
type Light struct {
	Kind      Kind
	Intensity core.Vec3
	Position  core.Vec3     // KindPoint
	Shape     LuminousShape // KindLuminous
}

// Illumination is a light sample seen from a receiving point
type Illumination struct {
	Radiance  core.Vec3 // arriving at the receiving point
	Direction core.Vec3 // unit, towards the light
	Distance  float64   // to the sampled point on the light
	Pdf       float64   // solid angle; 1 for delta lights
}

// Radiance is the emission seen along a ray that hit the light
type Radiance struct {
	Intensity core.Vec3
	Pdf       float64 // the pdf Illuminate would have used for this direction
}

// NewBackground creates a constant environment light
func NewBackground(intensity core.Vec3) Light {
	return Light{Kind: KindBackground, Intensity: intensity}
}

// NewPoint creates an isotropic point light
func NewPoint(position, intensity core.Vec3) Light {
	return Light{Kind: KindPoint, Position: position, Intensity: intensity}
}

// NewLuminous creates an emitter with constant radiance over shape
func NewLuminous(shape LuminousShape, intensity core.Vec3) Light {
	return Light{Kind: KindLuminous, Shape: shape, Intensity: intensity}
}

// IsDelta reports whether the light can only be reached by explicit sampling
func (l Light) IsDelta() bool {
	return l.Kind == KindPoint
}

// Illuminate samples the light as seen from point
func (l Light) Illuminate(point core.Vec3, u core.Vec2) (Illumination, bool) {
	switch l.Kind {
	case KindBackground:
		dir, pdf := core.SampleUniformSphere(u)
		return Illumination{
			Radiance:  l.Intensity,
			Direction: dir,
			Distance:  core.InfiniteDistance,
			Pdf:       pdf,
		}, true

	case KindPoint:
		toLight := l.Position.Subtract(point)
		dist2 := toLight.LengthSquared()
		if dist2 == 0 {
			return Illumination{}, false
		}
		dist := math.Sqrt(dist2)
		return Illumination{
			Radiance:  l.Intensity.Multiply(1 / dist2),
			Direction: toLight.Multiply(1 / dist),
			Distance:  dist,
			Pdf:       1,
		}, true

	case KindLuminous:
		dir, dist, pdf, ok := l.Shape.SampleDirection(point, u)
		if !ok || pdf <= 0 {
			return Illumination{}, false
		}
		return Illumination{
			Radiance:  l.Intensity,
			Direction: dir,
			Distance:  dist,
			Pdf:       pdf,
		}, true
	}
	return Illumination{}, false
}

// GetRadiance returns the emission seen from origin looking along dir, for
// rays that hit the light. Point lights cannot be hit.
func (l Light) GetRadiance(origin, dir core.Vec3) (Radiance, bool) {
	switch l.Kind {
	case KindBackground:
		return Radiance{Intensity: l.Intensity, Pdf: core.UniformSpherePdf()}, true

	case KindLuminous:
		// A zero pdf means Illuminate could not have produced this direction
		pdf, ok := l.Shape.DirectionPdf(origin, dir)
		if !ok {
			pdf = 0
		}
		return Radiance{Intensity: l.Intensity, Pdf: pdf}, true
	}
	return Radiance{}, false
}
