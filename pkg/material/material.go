package material

import "github.com/df07/go-mis-pathtracer/pkg/core"

// ID indexes a material in a scene's material list
type ID int

// Material is a diffuse plus Phong glossy reflectance model
type Material struct {
	Diffuse       core.Vec3 // Lambertian reflectance
	Specular      core.Vec3 // Phong lobe reflectance
	PhongExponent float64   // Lobe sharpness, >= 0
}

// NewMaterial creates a new material
func NewMaterial(diffuse, specular core.Vec3, phongExponent float64) Material {
	return Material{Diffuse: diffuse, Specular: specular, PhongExponent: max(0, phongExponent)}
}

// NewDiffuse creates a purely diffuse material
func NewDiffuse(diffuse core.Vec3) Material {
	return NewMaterial(diffuse, core.Vec3{}, 1)
}

// DiffuseAlbedo returns the luminance of the diffuse reflectance
func (m Material) DiffuseAlbedo() float64 {
	return max(0, m.Diffuse.Luminance())
}

// SpecularAlbedo returns the luminance of the specular reflectance
func (m Material) SpecularAlbedo() float64 {
	return max(0, m.Specular.Luminance())
}

// TotalAlbedo returns the summed albedo clamped to [0, 1]
func (m Material) TotalAlbedo() float64 {
	return min(1, m.DiffuseAlbedo()+m.SpecularAlbedo())
}

// Probabilities holds the lobe selection and survival probabilities of a material
type Probabilities struct {
	Diffuse      float64 // chance of sampling the diffuse lobe
	Specular     float64 // chance of sampling the Phong lobe
	Continuation float64 // Russian roulette survival probability
}

// Probabilities derives lobe selection and continuation probabilities.
// A black material yields all zeros.
func (m Material) Probabilities() Probabilities {
	diffuse, specular := m.DiffuseAlbedo(), m.SpecularAlbedo()
	total := diffuse + specular
	if total <= 0 {
		return Probabilities{}
	}
	return Probabilities{
		Diffuse:      diffuse / total,
		Specular:     specular / total,
		Continuation: min(1, total),
	}
}
