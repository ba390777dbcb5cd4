package material

import "github.com/df07/go-mis-pathtracer/pkg/core"

// Named colors
var (
	DaylightColor = core.NewVec3(0.65, 0.6, 0.45)
	EveningColor  = core.NewVec3(0.65, 0.55, 0.35)
	GreenColor    = core.NewVec3(0.156863, 0.803922, 0.172549)
	RedColor      = core.NewVec3(0.803922, 0.152941, 0.172549)
	MagentaColor  = core.NewVec3(0.8, 0.2, 0.6)
	GoldenColor   = core.NewVec3(1.0, 0.7, 0.0)
	SkyBlueColor  = core.NewVec3(0.1, 0.9, 0.9)
)

// Named materials
var (
	WhiteDiffuse   = NewDiffuse(core.Splat(0.99))
	GreenDiffuse   = NewDiffuse(GreenColor)
	RedDiffuse     = NewDiffuse(RedColor)
	SkyBlueDiffuse = NewDiffuse(SkyBlueColor)
	BlueDiffuse    = NewDiffuse(core.NewVec3(0.2, 0.2, 0.8))
	MagentaDiffuse = NewDiffuse(MagentaColor)
	DarkMirror     = NewMaterial(core.Vec3{}, core.Splat(0.5), 1000)
	GoldenSpecular = NewMaterial(core.Vec3{}, GoldenColor, 10)
	GoldenMirror   = NewMaterial(core.NewVec3(0.5, 0.35, 0.15), GoldenColor, 1000)
	WhiteCeramics  = NewMaterial(core.Splat(0.99), core.Splat(0.5), 1000)
	Mirror         = NewMaterial(core.Vec3{}, core.Splat(0.99), 10000)
	SkyBlueMirror  = NewMaterial(core.NewVec3(0.05, 0.45, 0.45), SkyBlueColor, 10000)
)

// Presets maps preset names to materials
var Presets = map[string]Material{
	"white":           WhiteDiffuse,
	"green":           GreenDiffuse,
	"red":             RedDiffuse,
	"sky-blue":        SkyBlueDiffuse,
	"blue":            BlueDiffuse,
	"magenta":         MagentaDiffuse,
	"dark-mirror":     DarkMirror,
	"golden":          GoldenSpecular,
	"golden-mirror":   GoldenMirror,
	"white-ceramics":  WhiteCeramics,
	"mirror":          Mirror,
	"sky-blue-mirror": SkyBlueMirror,
}
