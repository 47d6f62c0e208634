package nn

import (
	"github.com/born-ml/convnets/internal/tensor"
)

// ReLU applies f(x) = max(0, x).
//
// Example:
//
//	relu := nn.NewReLU[Backend]()
//	output := relu.Forward(input)  // All negative values become 0
type ReLU[B tensor.Backend] struct{ activation[B] }

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.ReLU()
}

// String returns "ReLU()".
func (r *ReLU[B]) String() string { return "ReLU()" }

// ReLU6 applies f(x) = min(max(0, x), 6).
type ReLU6[B tensor.Backend] struct{ activation[B] }

// NewReLU6 creates a new ReLU6 activation module.
func NewReLU6[B tensor.Backend]() *ReLU6[B] {
	return &ReLU6[B]{}
}

// Forward applies ReLU6 activation.
func (r *ReLU6[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.ReLU6()
}

// String returns "ReLU6()".
func (r *ReLU6[B]) String() string { return "ReLU6()" }

// HardSigmoid applies f(x) = relu6(x + 3) / 6.
type HardSigmoid[B tensor.Backend] struct{ activation[B] }

// NewHardSigmoid creates a new HardSigmoid activation module.
func NewHardSigmoid[B tensor.Backend]() *HardSigmoid[B] {
	return &HardSigmoid[B]{}
}

// Forward applies hard-sigmoid activation.
func (h *HardSigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.HardSigmoid()
}

// String returns "Hardsigmoid()".
func (h *HardSigmoid[B]) String() string { return "Hardsigmoid()" }

// HardSwish applies f(x) = x * relu6(x + 3) / 6.
type HardSwish[B tensor.Backend] struct{ activation[B] }

// NewHardSwish creates a new HardSwish activation module.
func NewHardSwish[B tensor.Backend]() *HardSwish[B] {
	return &HardSwish[B]{}
}

// Forward applies hard-swish activation.
func (h *HardSwish[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.HardSwish()
}

// String returns "Hardswish()".
func (h *HardSwish[B]) String() string { return "Hardswish()" }

// activation is embedded by element-wise activations: no tensors, shape preserved.
type activation[B tensor.Backend] struct{ stateless[B] }

// OutputShape returns the input shape.
func (a activation[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	return in.Clone(), nil
}

// Kind returns KindActivation.
func (a activation[B]) Kind() Kind {
	return KindActivation
}
