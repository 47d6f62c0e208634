package nn

import (
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// Fire is the SqueezeNet module: a 1x1 squeeze conv followed by parallel 1x1
// and 3x3 expand convs whose outputs are concatenated. Every conv is biased
// and followed by ReLU. Output channels are expand1x1 + expand3x3.
type Fire[B tensor.Backend] struct {
	in, squeeze, expand1x1, expand3x3 int
	children                          []Child[B]
}

// NewFire creates a fire module whose convs are initialized with scheme.
func NewFire[B tensor.Backend](in, squeeze, expand1x1, expand3x3 int, scheme InitScheme, init *Initializer, backend B) *Fire[B] {
	conv := func(in, out, kernel, padding int) *Conv2D[B] {
		return NewConv2D(ConvSpec{In: in, Out: out, Kernel: kernel, Padding: padding, Bias: true, Init: scheme}, init, backend)
	}

	f := &Fire[B]{in: in, squeeze: squeeze, expand1x1: expand1x1, expand3x3: expand3x3}
	f.children = []Child[B]{
		{Name: "squeeze", Module: conv(in, squeeze, 1, 0)},
		{Name: "squeeze_activation", Module: NewReLU[B]()},
		{Name: "expand", Module: NewConcat(
			Child[B]{Name: "expand1x1", Module: NewSequential[B](conv(squeeze, expand1x1, 1, 0), NewReLU[B]())},
			Child[B]{Name: "expand3x3", Module: NewSequential[B](conv(squeeze, expand3x3, 3, 1), NewReLU[B]())},
		)},
	}
	return f
}

// Forward squeezes, expands both branches and concatenates them.
func (f *Fire[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := f.OutputShape(input.Shape()); err != nil {
		panic(err)
	}
	out := input
	for _, c := range f.children {
		out = c.Module.Forward(out)
	}
	return out
}

// OutputShape returns [N, expand1x1+expand3x3, H, W].
func (f *Fire[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	return childShape(f.children, in)
}

// OutChannels returns expand1x1 + expand3x3.
func (f *Fire[B]) OutChannels() int {
	return f.expand1x1 + f.expand3x3
}

// Parameters returns the squeeze and expand parameters.
func (f *Fire[B]) Parameters() []*Parameter[B] {
	return childParameters(f.children)
}

// Children returns squeeze, squeeze_activation and expand.
func (f *Fire[B]) Children() []Child[B] {
	return f.children
}

// StateDict returns the convolution weights and biases.
func (f *Fire[B]) StateDict() map[string]*tensor.RawTensor {
	return childStateDict(f.children)
}

// LoadStateDict loads the three convolutions.
func (f *Fire[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadChildren(f.children, stateDict)
}

// Kind returns KindFire.
func (f *Fire[B]) Kind() Kind {
	return KindFire
}

// String returns a string representation of the module.
func (f *Fire[B]) String() string {
	return fmt.Sprintf("Fire(%d, squeeze=%d, expand1x1=%d, expand3x3=%d)", f.in, f.squeeze, f.expand1x1, f.expand3x3)
}
