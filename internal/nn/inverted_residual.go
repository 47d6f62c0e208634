package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/convnets/internal/tensor"
)

// InvertedResidual is the expand → depthwise → project bottleneck of the
// mobile architectures. The input is added back when stride is 1 and the
// channel count is unchanged.
type InvertedResidual[B tensor.Backend] struct {
	in, out     int
	stride      int
	hidden      int
	useResidual bool
	expand      *ConvNormAct[B] // nil when skipped
	depthwise   *ConvNormAct[B]
	project     *ConvNormAct[B]
	children    []Child[B]
}

// NewMobileInvertedResidual creates the MobileNetV3 flavour: hidden =
// round(in*factor), hard-swish activations, a 3x3 depthwise conv, and no
// expansion conv when factor is 1.
func NewMobileInvertedResidual[B tensor.Backend](in, out, stride int, factor float64, init *Initializer, backend B) *InvertedResidual[B] {
	hidden := int(math.Round(float64(in) * factor))
	return newInvertedResidual(in, out, 3, stride, hidden, factor != 1,
		func() Module[B] { return NewHardSwish[B]() }, init, backend)
}

// NewMnasInvertedResidual creates the MnasNet flavour: hidden = trunc(in*factor),
// ReLU6 activations, a kernel x kernel depthwise conv, and an expansion conv
// even when factor is 1.
func NewMnasInvertedResidual[B tensor.Backend](in, out, kernel, stride int, factor float64, init *Initializer, backend B) *InvertedResidual[B] {
	hidden := int(float64(in) * factor)
	return newInvertedResidual(in, out, kernel, stride, hidden, true,
		func() Module[B] { return NewReLU6[B]() }, init, backend)
}

func newInvertedResidual[B tensor.Backend](in, out, kernel, stride, hidden int, withExpand bool, act func() Module[B], init *Initializer, backend B) *InvertedResidual[B] {
	if hidden <= 0 {
		panic(fmt.Errorf("inverted residual: hidden width %d must be positive: %w", hidden, ErrInvalidConfig))
	}
	if !withExpand && hidden != in {
		panic(fmt.Errorf("inverted residual: hidden width %d differs from input %d without expansion: %w", hidden, in, ErrInvalidConfig))
	}

	r := &InvertedResidual[B]{
		in:          in,
		out:         out,
		stride:      stride,
		hidden:      hidden,
		useResidual: stride == 1 && in == out,
	}
	if withExpand {
		r.expand = NewConvNormAct(ConvSpec{In: in, Out: hidden, Kernel: 1}, act(), init, backend)
		r.children = append(r.children, Child[B]{Name: "expand", Module: r.expand})
	}
	r.depthwise = NewConvNormAct(ConvSpec{
		In: hidden, Out: hidden, Kernel: kernel, Stride: stride, Padding: kernel / 2, Groups: hidden,
	}, act(), init, backend)
	r.project = NewConvNormAct[B](ConvSpec{In: hidden, Out: out, Kernel: 1}, nil, init, backend)
	r.children = append(r.children,
		Child[B]{Name: "depthwise", Module: r.depthwise},
		Child[B]{Name: "project", Module: r.project},
	)
	return r
}

// Forward computes project(depthwise(expand(x))), plus x when residual.
func (r *InvertedResidual[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := r.OutputShape(input.Shape()); err != nil {
		panic(err)
	}

	out := input
	for _, c := range r.children {
		out = c.Module.Forward(out)
	}
	if r.useResidual {
		return input.Add(out)
	}
	return out
}

// OutputShape propagates the shape and, for residual blocks, checks it matches the input.
func (r *InvertedResidual[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	out, err := childShape(r.children, in)
	if err != nil {
		return nil, err
	}
	if r.useResidual && !out.Equal(in) {
		return nil, tensor.NewShapeError("inverted residual add", in, "block output %v differs from input", []int(out))
	}
	return out, nil
}

// UsesResidual reports whether the input is added to the projection.
func (r *InvertedResidual[B]) UsesResidual() bool {
	return r.useResidual
}

// Hidden returns the expanded channel count.
func (r *InvertedResidual[B]) Hidden() int {
	return r.hidden
}

// HasExpand reports whether the block has an expansion conv.
func (r *InvertedResidual[B]) HasExpand() bool {
	return r.expand != nil
}

// Parameters returns the parameters of every stage.
func (r *InvertedResidual[B]) Parameters() []*Parameter[B] {
	return childParameters(r.children)
}

// Children returns expand (if present), depthwise and project.
func (r *InvertedResidual[B]) Children() []Child[B] {
	return r.children
}

// StateDict returns the stages' parameters and buffers.
func (r *InvertedResidual[B]) StateDict() map[string]*tensor.RawTensor {
	return childStateDict(r.children)
}

// LoadStateDict loads every stage.
func (r *InvertedResidual[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadChildren(r.children, stateDict)
}

// Kind returns KindInvertedResidual.
func (r *InvertedResidual[B]) Kind() Kind {
	return KindInvertedResidual
}

// String returns a string representation of the block.
func (r *InvertedResidual[B]) String() string {
	return fmt.Sprintf("InvertedResidual(%d, %d, stride=%d, hidden=%d, residual=%v)",
		r.in, r.out, r.stride, r.hidden, r.useResidual)
}
