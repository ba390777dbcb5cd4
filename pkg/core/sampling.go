package core

import "math"

// Sampling routines return directions in local shading space, where the
// z axis is the pole. Pdfs are with respect to solid angle.

// SampleCosineHemisphere returns a cosine-weighted direction on the upper
// hemisphere and its pdf cos(theta)/pi
func SampleCosineHemisphere(u Vec2) (Vec3, float64) {
	phi := 2 * math.Pi * u.X
	r := math.Sqrt(1 - u.Y)
	dir := Vec3{r * math.Cos(phi), r * math.Sin(phi), math.Sqrt(u.Y)}
	return dir, CosineHemispherePdf(dir.Z)
}

// CosineHemispherePdf returns the cosine-weighted pdf for a local direction with the given cosine
func CosineHemispherePdf(cosTheta float64) float64 {
	return math.Max(0, cosTheta) / math.Pi
}

// SamplePowerCosineHemisphere samples the lobe cos(theta)^n around the
// local z axis and returns the direction with pdf (n+1)/(2pi) cos(theta)^n
func SamplePowerCosineHemisphere(n float64, u Vec2) (Vec3, float64) {
	phi := 2 * math.Pi * u.X
	cosTheta := math.Pow(u.Y, 1/(n+1))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	dir := Vec3{sinTheta * math.Cos(phi), sinTheta * math.Sin(phi), cosTheta}
	return dir, PowerCosineHemispherePdf(n, cosTheta)
}

// PowerCosineHemispherePdf returns (n+1)/(2pi) cos(theta)^n, zero below the horizon
func PowerCosineHemispherePdf(n, cosTheta float64) float64 {
	if cosTheta <= 0 {
		return 0
	}
	return (n + 1) / (2 * math.Pi) * math.Pow(cosTheta, n)
}

// SampleUniformSphere returns a uniformly distributed direction on the unit sphere with pdf 1/(4pi)
func SampleUniformSphere(u Vec2) (Vec3, float64) {
	z := 1 - 2*u.X
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u.Y
	return Vec3{r * math.Cos(phi), r * math.Sin(phi), z}, UniformSpherePdf()
}

// UniformSpherePdf returns 1/(4pi)
func UniformSpherePdf() float64 {
	return 1 / (4 * math.Pi)
}

// SampleUniformCone returns a direction uniformly distributed inside the cone
// around local z whose half angle has cosine cosThetaMax
func SampleUniformCone(cosThetaMax float64, u Vec2) Vec3 {
	cosTheta := 1 - u.X*(1-cosThetaMax)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.Y
	return Vec3{sinTheta * math.Cos(phi), sinTheta * math.Sin(phi), cosTheta}
}

// UniformConePdf returns 1/(2pi(1-cosThetaMax)), or 0 for a degenerate cone
func UniformConePdf(cosThetaMax float64) float64 {
	solidAngle := 2 * math.Pi * (1 - cosThetaMax)
	if solidAngle <= 0 {
		return 0
	}
	return 1 / solidAngle
}

// SampleUniformTriangle returns barycentric coordinates (b0, b1) uniformly
// distributed over a triangle. The third coordinate is 1-b0-b1.
func SampleUniformTriangle(u Vec2) Vec2 {
	su := math.Sqrt(u.X)
	return Vec2{1 - su, u.Y * su}
}

// PdfAreaToSolidAngle converts an area density into a solid angle density.
// Returns 0 when the surface is seen exactly edge-on.
func PdfAreaToSolidAngle(pdfArea, dist, cosTheta float64) float64 {
	absCos := math.Abs(cosTheta)
	if absCos == 0 {
		return 0
	}
	return pdfArea * dist * dist / absCos
}

// PdfSolidAngleToArea is the inverse of PdfAreaToSolidAngle
func PdfSolidAngleToArea(pdfSolidAngle, dist, cosTheta float64) float64 {
	if dist == 0 {
		return 0
	}
	return pdfSolidAngle * math.Abs(cosTheta) / (dist * dist)
}
