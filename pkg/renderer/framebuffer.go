package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-mis-pathtracer/pkg/core"
)

// DisplayGamma is the gamma applied when converting to 8-bit images
const DisplayGamma = 2.2

// Framebuffer accumulates linear RGB radiance per pixel. Concurrent writers
// must touch disjoint pixels.
type Framebuffer struct {
	width, height int
	pixels        []core.Vec3 // row-major, y = 0 is the top row
}

// NewFramebuffer creates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]core.Vec3, width*height),
	}
}

// Width returns the framebuffer width in pixels
func (fb *Framebuffer) Width() int {
	return fb.width
}

// Height returns the framebuffer height in pixels
func (fb *Framebuffer) Height() int {
	return fb.height
}

func (fb *Framebuffer) index(x, y int) int {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		panic("renderer: pixel outside framebuffer")
	}
	return y*fb.width + x
}

// AddColor accumulates c into pixel (x, y)
func (fb *Framebuffer) AddColor(x, y int, c core.Vec3) {
	i := fb.index(x, y)
	fb.pixels[i] = fb.pixels[i].Add(c)
}

// SetColor overwrites pixel (x, y)
func (fb *Framebuffer) SetColor(x, y int, c core.Vec3) {
	fb.pixels[fb.index(x, y)] = c
}

// Color returns the accumulated value of pixel (x, y)
func (fb *Framebuffer) Color(x, y int) core.Vec3 {
	return fb.pixels[fb.index(x, y)]
}

// AsSlice returns the accumulated pixels in row-major order. The slice
// aliases the framebuffer and must not be modified.
func (fb *Framebuffer) AsSlice() []core.Vec3 {
	return fb.pixels
}

// Scaled returns a copy of the pixels multiplied by scale, typically one
// over the number of accumulated iterations
func (fb *Framebuffer) Scaled(scale float64) []core.Vec3 {
	out := make([]core.Vec3, len(fb.pixels))
	for i, p := range fb.pixels {
		out[i] = p.Multiply(scale)
	}
	return out
}

// Clear resets every pixel to black
func (fb *Framebuffer) Clear() {
	clear(fb.pixels)
}

// ToImage converts the pixels, multiplied by scale and exposure, to an
// 8-bit image with gamma 2.2
func (fb *Framebuffer) ToImage(scale, exposure float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	for y := 0; y < fb.height; y++ {
		for x := 0; x < fb.width; x++ {
			c := fb.pixels[y*fb.width+x].Multiply(scale * exposure)
			img.SetRGBA(x, y, vec3ToColor(c.Clamp(0, 1).GammaCorrect(DisplayGamma)))
		}
	}
	return img
}

// vec3ToColor converts a color in [0,1] to RGBA
func vec3ToColor(c core.Vec3) color.RGBA {
	return color.RGBA{
		R: uint8(math.Round(255 * c.X)),
		G: uint8(math.Round(255 * c.Y)),
		B: uint8(math.Round(255 * c.Z)),
		A: 255,
	}
}

// RGB <-> CIE XYZ matrices used by the log tone mapper
var (
	rgbToXYZ = [3]core.Vec3{
		{X: 0.5141364, Y: 0.3238786, Z: 0.16036376},
		{X: 0.265068, Y: 0.67023428, Z: 0.06409157},
		{X: 0.0241188, Y: 0.1228178, Z: 0.84442666},
	}
	xyzToRGB = [3]core.Vec3{
		{X: 2.5651, Y: -1.1665, Z: -0.3986},
		{X: -1.0217, Y: 1.9777, Z: 0.0439},
		{X: 0.0753, Y: -0.2543, Z: 1.1892},
	}
)

func mulMat3(m [3]core.Vec3, v core.Vec3) core.Vec3 {
	return core.NewVec3(m[0].Dot(v), m[1].Dot(v), m[2].Dot(v))
}

// Log tone mapping parameters
const (
	toneBias     = 0.7
	toneContrast = 0.7
	yxyEpsilon   = 1e-7
	logLumDelta  = 2.3e-5
)

// ToneMapLog compresses the luminance of the scaled pixels with an
// adaptive logarithmic operator working in Yxy space. The chromaticity is
// kept, so bright lights keep their color instead of clipping to white.
func (fb *Framebuffer) ToneMapLog(scale float64) *image.RGBA {
	yxy := make([]core.Vec3, len(fb.pixels))
	maxLum := yxyEpsilon
	sumLog := 0.0

	for i, p := range fb.pixels {
		xyz := mulMat3(rgbToXYZ, p.Multiply(scale))
		if w := xyz.X + xyz.Y + xyz.Z; w > 0 {
			yxy[i] = core.NewVec3(xyz.Y, xyz.X/w, xyz.Y/w)
		}
		maxLum = max(maxLum, yxy[i].X)
		sumLog += math.Log(logLumDelta + max(0, yxy[i].X))
	}

	avgLum := math.Exp(sumLog / float64(len(yxy)))
	biasPower := math.Log(toneBias) / math.Log(0.5)
	lumMax := math.Pow(maxLum, 1/toneContrast) / avgLum
	divider := math.Log10(lumMax + 1)

	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	for i, v := range yxy {
		lum := math.Pow(max(0, v.X), 1/toneContrast) / avgLum
		interpolation := math.Log(2 + math.Pow(lum/lumMax, biasPower)*8)
		lum = math.Log(lum+1) / interpolation / divider

		xyz := core.NewVec3(yxyEpsilon, lum, yxyEpsilon)
		if lum > yxyEpsilon && v.Y > yxyEpsilon && v.Z > yxyEpsilon {
			x := v.Y * lum / v.Z
			xyz = core.NewVec3(x, lum, x/v.Y-x-lum)
		}

		rgb := mulMat3(xyzToRGB, xyz).Clamp(0, 1)
		img.SetRGBA(i%fb.width, i/fb.width, vec3ToColor(rgb))
	}
	return img
}
