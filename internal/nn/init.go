package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/convnets/internal/tensor"
)

// InitScheme selects how Conv2D and Linear initialize their tensors.
type InitScheme int

// Initialization schemes.
const (
	// InitDefault draws weights and bias from U(-1/sqrt(fan_in), 1/sqrt(fan_in)).
	InitDefault InitScheme = iota
	// InitKaimingUniform draws weights from U(-sqrt(6/fan_in), sqrt(6/fan_in)); bias is zero.
	InitKaimingUniform
	// InitSmallNormal draws weights from N(0, 0.01²); bias is zero.
	InitSmallNormal
)

// Initializer produces initial parameter values from a single seeded source,
// so a model built twice with the same seed has identical parameters.
type Initializer struct {
	rng *rand.Rand
}

// NewInitializer creates an Initializer seeded with seed.
func NewInitializer(seed int64) *Initializer {
	//nolint:gosec // Using math/rand for weight initialization (not security-critical)
	return &Initializer{rng: rand.New(rand.NewSource(seed))}
}

// Uniform returns a tensor drawn from U(-bound, bound).
func (i *Initializer) Uniform(shape tensor.Shape, bound float64, b tensor.Backend) *tensor.RawTensor {
	return tensor.Uniform[float32](shape, -bound, bound, i.rng, b).Raw()
}

// Normal returns a tensor drawn from N(0, std²).
func (i *Initializer) Normal(shape tensor.Shape, std float64, b tensor.Backend) *tensor.RawTensor {
	return tensor.Normal[float32](shape, 0, std, i.rng, b).Raw()
}

// Source derives an independent random source, e.g. for a Dropout layer.
func (i *Initializer) Source() *rand.Rand {
	//nolint:gosec // Using math/rand for dropout masks (not security-critical)
	return rand.New(rand.NewSource(i.rng.Int63()))
}

// weightAndBias initializes a weight of the given shape and, when withBias is
// set, a bias of length out, according to scheme.
func (i *Initializer) weightAndBias(scheme InitScheme, shape tensor.Shape, fanIn, out int, withBias bool, b tensor.Backend) (weight, bias *tensor.RawTensor) {
	switch scheme {
	case InitKaimingUniform:
		weight = i.Uniform(shape, math.Sqrt(6/float64(fanIn)), b)
	case InitSmallNormal:
		weight = i.Normal(shape, 0.01, b)
	default:
		weight = i.Uniform(shape, 1/math.Sqrt(float64(fanIn)), b)
	}
	if !withBias {
		return weight, nil
	}

	if scheme == InitDefault {
		return weight, i.Uniform(tensor.Shape{out}, 1/math.Sqrt(float64(fanIn)), b)
	}
	bias, err := tensor.NewRaw(tensor.Shape{out}, tensor.Float32, b.Device())
	if err != nil {
		panic(err)
	}
	return weight, bias
}
