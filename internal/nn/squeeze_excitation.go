package nn

import (
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// SqueezeExcitation rescales each channel by a gate computed from the
// channel's global average:
//
//	gate = hardsigmoid(fc2(hardswish(fc1(avgpool(x)))))
//	out  = x * gate
//
// fc1 and fc2 are biased 1x1 convolutions in → reduced → in. The output has
// the input's shape, and for non-negative input 0 <= out <= x.
type SqueezeExcitation[B tensor.Backend] struct {
	in, reduced int
	gate        *Sequential[B]
}

// NewSqueezeExcitation creates a gate over in channels with a reduced bottleneck.
func NewSqueezeExcitation[B tensor.Backend](in, reduced int, init *Initializer, backend B) *SqueezeExcitation[B] {
	return &SqueezeExcitation[B]{
		in:      in,
		reduced: reduced,
		gate: NewSequential[B](
			NewAdaptiveAvgPool2D[B](1, 1),
			NewConv2D(ConvSpec{In: in, Out: reduced, Kernel: 1, Bias: true}, init, backend),
			NewHardSwish[B](),
			NewConv2D(ConvSpec{In: reduced, Out: in, Kernel: 1, Bias: true}, init, backend),
			NewHardSigmoid[B](),
		),
	}
}

// Forward scales x by its channel gate.
func (se *SqueezeExcitation[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := se.OutputShape(input.Shape()); err != nil {
		panic(err)
	}
	return input.ScaleChannels(se.gate.Forward(input))
}

// OutputShape returns the input shape after checking the channel count.
func (se *SqueezeExcitation[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	if _, err := se.gate.OutputShape(in); err != nil {
		return nil, err
	}
	return in.Clone(), nil
}

// Parameters returns fc1 and fc2 weights and biases.
func (se *SqueezeExcitation[B]) Parameters() []*Parameter[B] {
	return se.gate.Parameters()
}

// Children returns the gate.
func (se *SqueezeExcitation[B]) Children() []Child[B] {
	return []Child[B]{{Name: "se", Module: se.gate}}
}

// StateDict returns "se.1.*" and "se.3.*" entries.
func (se *SqueezeExcitation[B]) StateDict() map[string]*tensor.RawTensor {
	return childStateDict(se.Children())
}

// LoadStateDict loads the gate convolutions.
func (se *SqueezeExcitation[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadChildren(se.Children(), stateDict)
}

// Kind returns KindSqueezeExcitation.
func (se *SqueezeExcitation[B]) Kind() Kind {
	return KindSqueezeExcitation
}

// String returns a string representation of the block.
func (se *SqueezeExcitation[B]) String() string {
	return fmt.Sprintf("SqueezeExcitation(%d, reduced=%d)", se.in, se.reduced)
}
