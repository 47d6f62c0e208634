package nn

import (
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weight and bias are drawn from U(-1/sqrt(in_features), 1/sqrt(in_features)).
//
// Example:
//
//	layer := nn.NewLinear(512, 10, init, backend)
//	output := layer.Forward(features) // [N, 512] -> [N, 10]
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [out_features, in_features]
	bias        *Parameter[B] // [out_features]
	backend     B
}

// NewLinear creates a new Linear layer with bias.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, init *Initializer, backend B) *Linear[B] {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Errorf("linear: features must be positive, got in=%d out=%d: %w", inFeatures, outFeatures, ErrInvalidConfig))
	}

	w, b := init.weightAndBias(InitDefault, tensor.Shape{outFeatures, inFeatures}, inFeatures, outFeatures, true, backend)
	return &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", tensor.New[float32, B](w, backend)),
		bias:        NewParameter("bias", tensor.New[float32, B](b, backend)),
		backend:     backend,
	}
}

// Forward computes x @ W.T + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := l.OutputShape(input.Shape()); err != nil {
		panic(err)
	}

	// The weight stays [out, in]; MatMulT multiplies by its transpose.
	out := l.backend.MatMulT(input.Raw(), l.weight.Tensor().Raw())
	out = l.backend.AddChannelBias(out, l.bias.Tensor().Raw())
	return tensor.New[float32, B](out, l.backend)
}

// OutputShape returns [batch_size, out_features].
func (l *Linear[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	if len(in) != 2 {
		return nil, tensor.NewShapeError("linear", in, "expected 2D input [batch, features], got %dD", len(in))
	}
	if in[1] != l.inFeatures {
		return nil, tensor.NewShapeError("linear", in, "expected %d features, got %d", l.inFeatures, in[1])
	}
	return tensor.Shape{in[0], l.outFeatures}, nil
}

// Parameters returns [weight, bias].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns a map of parameter names to raw tensors.
func (l *Linear[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight": l.weight.Tensor().Raw(),
		"bias":   l.bias.Tensor().Raw(),
	}
}

// LoadStateDict loads weight and bias, validating shapes and dtypes.
func (l *Linear[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := loadInto(stateDict, "weight", l.weight.Tensor().Raw()); err != nil {
		return err
	}
	return loadInto(stateDict, "bias", l.bias.Tensor().Raw())
}

// Kind returns KindLinear.
func (l *Linear[B]) Kind() Kind {
	return KindLinear
}

// String returns a string representation of the layer.
func (l *Linear[B]) String() string {
	return fmt.Sprintf("Linear(in_features=%d, out_features=%d, bias=true)", l.inFeatures, l.outFeatures)
}
