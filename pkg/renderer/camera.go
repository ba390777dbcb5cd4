package renderer

import (
	"math"

	"github.com/df07/go-mis-pathtracer/pkg/core"
	"github.com/df07/go-mis-pathtracer/pkg/scene"
)

// PerspectiveCamera is a pinhole camera mapping raster positions to rays.
// Raster (0,0) is the top-left corner of the image.
type PerspectiveCamera struct {
	origin  core.Vec3
	forward core.Vec3
	right   core.Vec3 // scaled by the half width of the image plane
	up      core.Vec3 // scaled by the half height of the image plane
	width   int
	height  int
}

// NewPerspectiveCamera creates a camera for an image of width x height pixels
func NewPerspectiveCamera(spec scene.CameraSpec, width, height int) *PerspectiveCamera {
	forward := spec.LookAt.Subtract(spec.Position).Normalize()
	right := spec.Up.Cross(forward).Normalize()
	up := forward.Cross(right)

	halfHeight := math.Tan(spec.VFov * math.Pi / 360)
	halfWidth := halfHeight * float64(width) / float64(height)

	return &PerspectiveCamera{
		origin:  spec.Position,
		forward: forward,
		right:   right.Multiply(halfWidth),
		up:      up.Multiply(halfHeight),
		width:   width,
		height:  height,
	}
}

// ViewSize returns the image size in pixels
func (c *PerspectiveCamera) ViewSize() core.Vec2 {
	return core.NewVec2(float64(c.width), float64(c.height))
}

// RayFromScreen returns the ray through a raster position. The pixel (x, y)
// covers [x, x+1) x [y, y+1).
func (c *PerspectiveCamera) RayFromScreen(sample core.Vec2) core.Ray {
	ndcX := 2*sample.X/float64(c.width) - 1
	ndcY := 1 - 2*sample.Y/float64(c.height)

	dir := c.forward.
		Add(c.right.Multiply(ndcX)).
		Add(c.up.Multiply(ndcY))
	return core.NewRay(c.origin, dir.Normalize())
}
