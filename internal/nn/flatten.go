package nn

import (
	"github.com/born-ml/convnets/internal/tensor"
)

// Flatten reshapes [N, C, H, W] to [N, C*H*W].
type Flatten[B tensor.Backend] struct {
	stateless[B]
}

// NewFlatten creates a Flatten module.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return &Flatten[B]{}
}

// Forward flattens every dimension after the batch.
func (f *Flatten[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Flatten()
}

// OutputShape returns [N, product of the remaining dims].
func (f *Flatten[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	if len(in) < 2 {
		return nil, tensor.NewShapeError("flatten", in, "expected at least 2 dimensions")
	}
	return tensor.Shape{in[0], in[1:].NumElements()}, nil
}

// Kind returns KindFlatten.
func (f *Flatten[B]) Kind() Kind {
	return KindFlatten
}

// String returns "Flatten()".
func (f *Flatten[B]) String() string {
	return "Flatten()"
}
