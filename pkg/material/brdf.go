package material

import (
	"math"

	"github.com/df07/go-mis-pathtracer/pkg/core"
)

// Brdf is a material bound to one shading point. It is immutable and only
// valid while that hit point is being shaded.
type Brdf struct {
	frame         core.Frame
	localOutgoing core.Vec3 // towards the viewer, z > 0
	reflected     core.Vec3 // mirror of localOutgoing about the normal
	material      Material
	probs         Probabilities
}

// Sample is a direction drawn from the BRDF
type Sample struct {
	Direction core.Vec3 // world space, away from the surface
	Radiance  core.Vec3 // BRDF value of both lobes
	Pdf       float64   // mixture pdf with respect to solid angle
	CosTheta  float64   // cosine between Direction and the normal
}

// Eval is the BRDF evaluated for a given incoming direction
type Eval struct {
	Radiance core.Vec3
	Pdf      float64
	CosTheta float64
}

// NewBrdf binds a material to a shading point. outgoing points from the
// surface towards the viewer. It fails when the viewer is at or below the
// horizon or when the material reflects nothing.
func NewBrdf(outgoing, normal core.Vec3, m Material) (Brdf, bool) {
	frame := core.NewFrameFromZ(normal)
	local := frame.ToLocal(outgoing.Normalize())
	if local.Z < core.EpsCosine {
		return Brdf{}, false
	}

	probs := m.Probabilities()
	if probs.Continuation == 0 {
		return Brdf{}, false
	}

	return Brdf{
		frame:         frame,
		localOutgoing: local,
		reflected:     local.ReflectLocal(),
		material:      m,
		probs:         probs,
	}, true
}

// ContinuationProb returns the Russian roulette survival probability
func (b Brdf) ContinuationProb() float64 {
	return b.probs.Continuation
}

// Probabilities returns the lobe selection probabilities
func (b Brdf) Probabilities() Probabilities {
	return b.probs
}

// Normal returns the world space shading normal
func (b Brdf) Normal() core.Vec3 {
	return b.frame.Normal
}

// Sample draws an incoming direction. rnd.Z selects the lobe, rnd.X and
// rnd.Y place the direction inside it.
func (b Brdf) Sample(rnd core.Vec3) (Sample, bool) {
	u := core.NewVec2(rnd.X, rnd.Y)

	var local core.Vec3
	if rnd.Z < b.probs.Diffuse {
		local, _ = core.SampleCosineHemisphere(u)
	} else {
		lobe, _ := core.SamplePowerCosineHemisphere(b.material.PhongExponent, u)
		local = core.NewFrameFromZ(b.reflected).ToWorld(lobe)
	}

	if local.Z < core.EpsCosine {
		return Sample{}, false
	}

	radiance, pdf := b.evalLocal(local)
	if pdf <= 0 || math.IsNaN(pdf) {
		return Sample{}, false
	}

	return Sample{
		Direction: b.frame.ToWorld(local).Normalize(),
		Radiance:  radiance,
		Pdf:       pdf,
		CosTheta:  local.Z,
	}, true
}

// Eval evaluates both lobes for a world space incoming direction pointing
// away from the surface. Directions on the other side of the surface from
// the viewer are rejected.
func (b Brdf) Eval(incoming core.Vec3) (Eval, bool) {
	local := b.frame.ToLocal(incoming.Normalize())
	if local.Z < core.EpsCosine {
		return Eval{}, false
	}

	radiance, pdf := b.evalLocal(local)
	return Eval{Radiance: radiance, Pdf: pdf, CosTheta: local.Z}, true
}

// evalLocal sums the lobe values and the selection-weighted lobe pdfs
func (b Brdf) evalLocal(local core.Vec3) (core.Vec3, float64) {
	var radiance core.Vec3
	var pdf float64

	if b.probs.Diffuse > 0 {
		radiance = radiance.Add(b.material.Diffuse.Multiply(1 / math.Pi))
		pdf += b.probs.Diffuse * core.CosineHemispherePdf(local.Z)
	}

	if b.probs.Specular > 0 {
		n := b.material.PhongExponent
		cosAlpha := local.Dot(b.reflected)
		if cosAlpha > 0 {
			lobe := math.Pow(cosAlpha, n)
			radiance = radiance.Add(b.material.Specular.Multiply((n + 2) / (2 * math.Pi) * lobe))
			pdf += b.probs.Specular * core.PowerCosineHemispherePdf(n, cosAlpha)
		}
	}

	return radiance, pdf
}
