package nn

import (
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// Residual is the ResNet basic block:
//
//	out = relu(bn2(conv2(relu(bn1(conv1(x))))) + shortcut(x))
//
// conv1 is 3x3 with the block stride, conv2 is 3x3 stride 1, both padded by 1
// and biased. The shortcut is the identity, or a 3x3 strided conv + batch norm
// downsample when the stride or channel count changes.
type Residual[B tensor.Backend] struct {
	conv1      *Conv2D[B]
	bn1        *BatchNorm2D[B]
	conv2      *Conv2D[B]
	bn2        *BatchNorm2D[B]
	relu       *ReLU[B]
	downsample *ConvNormAct[B]
	children   []Child[B]
}

// NewResidual creates a basic block mapping in channels to out channels.
func NewResidual[B tensor.Backend](in, out, stride int, init *Initializer, backend B) *Residual[B] {
	r := &Residual[B]{
		conv1: NewConv2D(ConvSpec{In: in, Out: out, Kernel: 3, Stride: stride, Padding: 1, Bias: true}, init, backend),
		bn1:   NewBatchNorm2D(out, backend),
		conv2: NewConv2D(ConvSpec{In: out, Out: out, Kernel: 3, Stride: 1, Padding: 1, Bias: true}, init, backend),
		bn2:   NewBatchNorm2D(out, backend),
		relu:  NewReLU[B](),
	}
	if stride != 1 || in != out {
		r.downsample = NewConvNormAct[B](ConvSpec{In: in, Out: out, Kernel: 3, Stride: stride, Padding: 1, Bias: true}, nil, init, backend)
	}

	r.children = []Child[B]{
		{Name: "conv1", Module: r.conv1},
		{Name: "bn1", Module: r.bn1},
		{Name: "relu", Module: r.relu},
		{Name: "conv2", Module: r.conv2},
		{Name: "bn2", Module: r.bn2},
	}
	if r.downsample != nil {
		r.children = append(r.children, Child[B]{Name: "downsample", Module: r.downsample})
	}

	// Both addends must agree for any input the block accepts.
	if _, err := r.OutputShape(tensor.Shape{1, in, 2 * stride * 8, 2*stride*8 + 1}); err != nil {
		panic(fmt.Errorf("residual: %w: %w", ErrInvalidConfig, err))
	}
	return r
}

// Forward computes the block output.
func (r *Residual[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := r.OutputShape(input.Shape()); err != nil {
		panic(err)
	}

	identity := input
	if r.downsample != nil {
		identity = r.downsample.Forward(input)
	}

	out := r.relu.Forward(r.bn1.Forward(r.conv1.Forward(input)))
	out = r.bn2.Forward(r.conv2.Forward(out))
	return r.relu.Forward(out.Add(identity))
}

// OutputShape checks that the main path and the shortcut produce the same shape.
func (r *Residual[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	main, err := childShape([]Child[B]{r.children[0], r.children[1], r.children[3], r.children[4]}, in)
	if err != nil {
		return nil, err
	}

	shortcut := in
	if r.downsample != nil {
		if shortcut, err = r.downsample.OutputShape(in); err != nil {
			return nil, err
		}
	}
	if !main.Equal(shortcut) {
		return nil, tensor.NewShapeError("residual add", in, "main path gives %v, shortcut gives %v", []int(main), []int(shortcut))
	}
	return main, nil
}

// HasDownsample reports whether the shortcut is a projection.
func (r *Residual[B]) HasDownsample() bool {
	return r.downsample != nil
}

// Parameters returns the parameters of both convs, both norms and the downsample.
func (r *Residual[B]) Parameters() []*Parameter[B] {
	return childParameters(r.children)
}

// Children returns the block's layers.
func (r *Residual[B]) Children() []Child[B] {
	return r.children
}

// StateDict returns the block's parameters and buffers.
func (r *Residual[B]) StateDict() map[string]*tensor.RawTensor {
	return childStateDict(r.children)
}

// LoadStateDict loads every layer of the block.
func (r *Residual[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadChildren(r.children, stateDict)
}

// Kind returns KindResidual.
func (r *Residual[B]) Kind() Kind {
	return KindResidual
}

// String returns a string representation of the block.
func (r *Residual[B]) String() string {
	spec := r.conv1.Spec()
	return fmt.Sprintf("Residual(%d, %d, stride=%d)", spec.In, spec.Out, spec.Stride)
}
