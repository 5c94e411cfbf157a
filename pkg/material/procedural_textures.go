package material

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

var (
	skyHorizon = core.NewVec3(1.0, 1.0, 1.0)
	skyZenith  = core.NewVec3(0.5, 0.7, 1.0)

	grassRoot = core.NewVec3(0.10, 0.32, 0.06)
	grassTip  = core.NewVec3(0.38, 0.68, 0.20)

	woodLight = core.NewVec3(0.78, 0.55, 0.32)
	woodDark  = core.NewVec3(0.42, 0.25, 0.12)
)

// skyColor returns a gradient based on the vertical component of the direction
func skyColor(direction core.Vec3) core.Vec3 {
	unitDirection := core.Normalize(direction)

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y() + 1.0)
	return lerp(skyHorizon, skyZenith, t)
}

// grassColor mixes coarse patches with fine blade noise
func grassColor(point core.Vec3) core.Vec3 {
	patches := valueNoise(point.Mul(0.8))
	blades := valueNoise(core.NewVec3(point.X()*24, point.Y()*2, point.Z()*24))
	return lerp(grassRoot, grassTip, 0.55*patches+0.45*blades)
}

// woodColor draws rings around the Y axis, wobbled by noise, with streaky grain
func woodColor(point core.Vec3) core.Vec3 {
	distance := math.Hypot(float64(point.X()), float64(point.Z()))
	rings := float32(distance)*4 + 1.5*valueNoise(point.Mul(0.6))
	ring := rings - float32(math.Floor(float64(rings)))

	// Sharpen the ring edge so dark bands stay narrow
	ring = ring * ring

	grain := 0.85 + 0.15*valueNoise(core.NewVec3(point.X()*2, point.Y()*2, point.Z()*40))
	return lerp(woodLight, woodDark, ring).Mul(grain)
}

func lerp(a, b core.Vec3, t float32) core.Vec3 {
	t = mgl32.Clamp(t, 0, 1)
	return a.Mul(1 - t).Add(b.Mul(t))
}

// valueNoise is trilinearly interpolated lattice noise in [0,1)
func valueNoise(p core.Vec3) float32 {
	fx, fy, fz := math.Floor(float64(p[0])), math.Floor(float64(p[1])), math.Floor(float64(p[2]))
	x, y, z := int32(fx), int32(fy), int32(fz)
	tx := smooth(p[0] - float32(fx))
	ty := smooth(p[1] - float32(fy))
	tz := smooth(p[2] - float32(fz))

	c000 := latticeValue(x, y, z)
	c100 := latticeValue(x+1, y, z)
	c010 := latticeValue(x, y+1, z)
	c110 := latticeValue(x+1, y+1, z)
	c001 := latticeValue(x, y, z+1)
	c101 := latticeValue(x+1, y, z+1)
	c011 := latticeValue(x, y+1, z+1)
	c111 := latticeValue(x+1, y+1, z+1)

	x00 := c000 + (c100-c000)*tx
	x10 := c010 + (c110-c010)*tx
	x01 := c001 + (c101-c001)*tx
	x11 := c011 + (c111-c011)*tx
	y0 := x00 + (x10-x00)*ty
	y1 := x01 + (x11-x01)*ty
	return y0 + (y1-y0)*tz
}

func smooth(t float32) float32 {
	return t * t * (3 - 2*t)
}

// latticeValue hashes integer lattice coordinates to [0,1)
func latticeValue(x, y, z int32) float32 {
	h := uint32(x)*0x8da6b343 ^ uint32(y)*0xd8163841 ^ uint32(z)*0xcb1ab31f
	h ^= h >> 13
	h *= 0x5bd1e995
	h ^= h >> 15
	return float32(h&0xffffff) / float32(1<<24)
}
