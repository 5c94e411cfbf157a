package core

import (
	"math"
	"math/rand/v2"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float32
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewPixelSampler creates the random stream for one pixel sample. The stream
// depends only on the render seed and the stream index, so pixels can be
// evaluated in any order on any goroutine and still reproduce bit-for-bit.
func NewPixelSampler(seed, stream uint64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewPCG(seed, stream)))
}

// PixelStream combines a pixel index and a sample index into a stream id
func PixelStream(pixelIndex, sampleIndex int) uint64 {
	return uint64(sampleIndex)<<40 ^ uint64(pixelIndex)
}

// Get1D returns a random float32 in [0, 1)
func (r *RandomSampler) Get1D() float32 {
	return r.random.Float32()
}

// Get2D returns two random float32 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return Vec2{r.random.Float32(), r.random.Float32()}
}

// SampleCosineHemisphere generates a cosine-weighted random direction in hemisphere around normal
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	// Generate point in unit disk using uniform random sampling
	a := 2.0 * math.Pi * float64(sample[0])
	z := float64(sample[1])
	r := math.Sqrt(z)

	x := float32(r * math.Cos(a))
	y := float32(r * math.Sin(a))
	zCoord := float32(math.Sqrt(1.0 - z))

	// Find a vector perpendicular to normal
	var nt Vec3
	if math.Abs(float64(normal[0])) > 0.1 {
		nt = NewVec3(0, 1, 0)
	} else {
		nt = NewVec3(1, 0, 0)
	}

	// Create orthonormal basis
	tangent := nt.Cross(normal).Normalize()
	bitangent := normal.Cross(tangent)

	// Transform to world space
	return tangent.Mul(x).Add(bitangent.Mul(y)).Add(normal.Mul(zCoord))
}
