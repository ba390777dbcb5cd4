package core

import "math"

// Ortho returns a vector perpendicular to v. The component with the larger
// magnitude among x and z is kept in the result so that it never degenerates.
func Ortho(v Vec3) Vec3 {
	if math.Abs(v.X) > math.Abs(v.Z) {
		return Vec3{-v.Y, v.X, 0}
	}
	return Vec3{0, -v.Z, v.Y}
}

// Frame is an orthonormal basis. Local z is the normal.
type Frame struct {
	Tangent   Vec3 // local x
	Bitangent Vec3 // local y
	Normal    Vec3 // local z
}

// NewFrameFromZ builds a frame whose z axis is the normalized argument
func NewFrameFromZ(z Vec3) Frame {
	oz := z.Normalize()
	oy := oz.Cross(Ortho(oz)).Normalize()
	ox := oy.Cross(oz)
	return Frame{Tangent: ox, Bitangent: oy, Normal: oz}
}

// ToWorld converts a local direction into world space
func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.Tangent.Multiply(v.X).
		Add(f.Bitangent.Multiply(v.Y)).
		Add(f.Normal.Multiply(v.Z))
}

// ToLocal converts a world direction into the frame's local space
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(f.Tangent), v.Dot(f.Bitangent), v.Dot(f.Normal)}
}
