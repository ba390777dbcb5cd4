package integrator

import (
	"github.com/df07/go-mis-pathtracer/pkg/core"
	"github.com/df07/go-mis-pathtracer/pkg/lights"
	"github.com/df07/go-mis-pathtracer/pkg/material"
	"github.com/df07/go-mis-pathtracer/pkg/scene"
)

// PathTracingIntegrator implements unidirectional path tracing with
// next-event estimation, multiple importance sampling and Russian roulette
type PathTracingIntegrator struct {
	config Config
}

// NewPathTracingIntegrator creates a new path tracing integrator. A nil
// heuristic falls back to the power heuristic.
func NewPathTracingIntegrator(config Config) *PathTracingIntegrator {
	if config.Heuristic == nil {
		config.Heuristic = core.PowerHeuristic
	}
	return &PathTracingIntegrator{config: config}
}

// Config returns the integrator settings
func (pt *PathTracingIntegrator) Config() Config {
	return pt.config
}

// RayColor traces one path starting with ray and returns its radiance estimate.
//
// lastPdf is the solid angle pdf of the BRDF sample that produced the
// current ray, already scaled by the survival probability. Russian roulette
// is compensated only through it.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) (core.Vec3, PathInfo) {
	var color core.Vec3
	var info PathInfo
	throughput := core.Splat(1)
	lastPdf := 1.0
	pickProb := s.LightSampler().Probability()

	for {
		hit, isHit := s.NearestIntersection(ray)
		if !isHit {
			// Escaped: the background is the only thing left to see
			info.Escaped = true
			if rad, ok := s.Background().GetRadiance(ray.Origin, ray.Direction); ok {
				weight := pt.emissionWeight(info.Length, lastPdf, rad.Pdf*pickProb)
				color = color.Add(throughput.MultiplyVec(rad.Intensity).Multiply(weight))
			}
			break
		}

		if hit.Surface.IsLight() {
			// Lights do not scatter
			info.Escaped = true
			light := s.Light(lights.ID(hit.Surface.ID))
			if rad, ok := light.GetRadiance(ray.Origin, ray.Direction); ok {
				weight := pt.emissionWeight(info.Length, lastPdf, rad.Pdf*pickProb)
				color = color.Add(throughput.MultiplyVec(rad.Intensity).Multiply(weight))
			}
			break
		}

		if info.Length >= pt.config.MaxPathLength {
			break
		}
		info.Length++

		hitPoint := ray.At(hit.Distance)
		normal := hit.Normal
		if normal.Dot(ray.Direction) > 0 {
			normal = normal.Negate()
		}

		brdf, ok := material.NewBrdf(ray.Direction.Negate(), normal, s.Material(material.ID(hit.Surface.ID)))
		if !ok {
			break
		}

		continuation := 1.0
		if pt.config.RussianRoulette {
			continuation = brdf.ContinuationProb()
		}

		if pt.config.Strategy != StrategyBRDF {
			direct := pt.sampleOneLight(s, hitPoint, brdf, continuation, sampler)
			color = color.Add(throughput.MultiplyVec(direct))
		}

		// Russian roulette
		if continuation < 1 && sampler.Get1D() >= continuation {
			break
		}

		sample, ok := brdf.Sample(sampler.Get3D())
		if !ok {
			break
		}
		lastPdf = sample.Pdf * continuation
		if lastPdf <= 0 {
			break
		}

		throughput = throughput.MultiplyVec(sample.Radiance).Multiply(sample.CosTheta / lastPdf)
		if throughput.IsZero() || !throughput.IsFinite() {
			break
		}

		ray = core.NewRay(hitPoint, sample.Direction)
	}

	if !color.IsFinite() {
		return core.Vec3{}, info
	}
	return color, info
}

// sampleOneLight estimates direct light at point by sampling one light
// picked uniformly among all lights, the background included
func (pt *PathTracingIntegrator) sampleOneLight(s *scene.Scene, point core.Vec3, brdf material.Brdf, continuation float64, sampler core.Sampler) core.Vec3 {
	id, pickProb, ok := s.LightSampler().Pick(sampler.Get1D())
	u := sampler.Get2D()
	if !ok {
		return core.Vec3{}
	}

	light := s.Light(id)
	illum, ok := light.Illuminate(point, u)
	if !ok || illum.Pdf <= 0 || illum.Radiance.IsZero() {
		return core.Vec3{}
	}

	eval, ok := brdf.Eval(illum.Direction)
	if !ok || eval.Radiance.IsZero() {
		return core.Vec3{}
	}

	if s.WasOccluded(core.NewRay(point, illum.Direction), illum.Distance) {
		return core.Vec3{}
	}

	weight := 1.0
	if pt.config.Strategy == StrategyMIS && !light.IsDelta() {
		weight = pt.config.Heuristic(illum.Pdf*pickProb, eval.Pdf*continuation)
	}

	return eval.Radiance.MultiplyVec(illum.Radiance).Multiply(eval.CosTheta * weight / (pickProb * illum.Pdf))
}

// emissionWeight weights emission found by following a BRDF sample. Camera
// rays see emission directly, which no other strategy can produce.
func (pt *PathTracingIntegrator) emissionWeight(pathLength int, brdfPdf, lightPdf float64) float64 {
	if pathLength == 0 {
		return 1
	}
	switch pt.config.Strategy {
	case StrategyLight:
		return 0
	case StrategyBRDF:
		return 1
	}
	return pt.config.Heuristic(brdfPdf, lightPdf)
}
