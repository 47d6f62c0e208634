package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/convnets/internal/tensor"
)

// Dropout zeroes elements with probability p in training mode and scales the
// survivors by 1/(1-p). In inference mode it is the identity.
type Dropout[B tensor.Backend] struct {
	stateless[B]
	p        float64
	rng      *rand.Rand
	training bool
}

// NewDropout creates a dropout layer drawing its masks from rng.
func NewDropout[B tensor.Backend](p float64, rng *rand.Rand) *Dropout[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Errorf("dropout: probability must be in [0, 1), got %g: %w", p, ErrInvalidConfig))
	}
	return &Dropout[B]{p: p, rng: rng}
}

// Forward applies dropout in training mode and returns input unchanged otherwise.
func (d *Dropout[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.p == 0 {
		return input
	}

	mask := tensor.Zeros[float32](input.Shape(), input.Backend())
	data := mask.Data()
	for i := range data {
		if d.rng.Float64() >= d.p {
			data[i] = 1
		}
	}
	return input.Mul(mask).MulScalar(float32(1 / (1 - d.p)))
}

// OutputShape returns the input shape.
func (d *Dropout[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	return in.Clone(), nil
}

// P returns the drop probability.
func (d *Dropout[B]) P() float64 {
	return d.p
}

// SetTraining enables or disables dropout.
func (d *Dropout[B]) SetTraining(training bool) {
	d.training = training
}

// Training reports whether dropout is active.
func (d *Dropout[B]) Training() bool {
	return d.training
}

// Kind returns KindDropout.
func (d *Dropout[B]) Kind() Kind {
	return KindDropout
}

// String returns a string representation of the layer.
func (d *Dropout[B]) String() string {
	return fmt.Sprintf("Dropout(p=%g)", d.p)
}
