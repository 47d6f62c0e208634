package nn

import (
	"github.com/born-ml/convnets/internal/tensor"
)

// ConvNormAct is the conv → BatchNorm2D → activation triple used throughout
// the zoo. The activation is optional.
type ConvNormAct[B tensor.Backend] struct {
	conv *Conv2D[B]
	norm *BatchNorm2D[B]
	act  Module[B]
	body *Sequential[B]
}

// NewConvNormAct builds the triple; pass a nil act for conv → norm only.
//
// Example:
//
//	stem := nn.NewConvNormAct(nn.ConvSpec{In: 3, Out: 16, Kernel: 3, Stride: 2, Padding: 1}, nn.NewHardSwish[B](), init, backend)
func NewConvNormAct[B tensor.Backend](spec ConvSpec, act Module[B], init *Initializer, backend B) *ConvNormAct[B] {
	conv := NewConv2D(spec, init, backend)
	norm := NewBatchNorm2D(spec.Out, backend)

	children := []Child[B]{{Name: "conv", Module: conv}, {Name: "bn", Module: norm}}
	if act != nil {
		children = append(children, Child[B]{Name: "act", Module: act})
	}

	return &ConvNormAct[B]{
		conv: conv,
		norm: norm,
		act:  act,
		body: NewNamedSequential(children...),
	}
}

// Forward applies conv, norm and activation.
func (c *ConvNormAct[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return c.body.Forward(input)
}

// OutputShape is the convolution's output shape.
func (c *ConvNormAct[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	return c.body.OutputShape(in)
}

// Parameters returns conv and norm parameters.
func (c *ConvNormAct[B]) Parameters() []*Parameter[B] {
	return c.body.Parameters()
}

// Children returns conv, bn and, when present, act.
func (c *ConvNormAct[B]) Children() []Child[B] {
	return c.body.Children()
}

// StateDict returns "conv.*" and "bn.*" entries.
func (c *ConvNormAct[B]) StateDict() map[string]*tensor.RawTensor {
	return c.body.StateDict()
}

// LoadStateDict loads conv and norm.
func (c *ConvNormAct[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return c.body.LoadStateDict(stateDict)
}

// Conv returns the convolution.
func (c *ConvNormAct[B]) Conv() *Conv2D[B] {
	return c.conv
}

// Norm returns the batch norm.
func (c *ConvNormAct[B]) Norm() *BatchNorm2D[B] {
	return c.norm
}

// Activation returns the activation, or nil.
func (c *ConvNormAct[B]) Activation() Module[B] {
	return c.act
}

// Kind returns KindConvNormAct.
func (c *ConvNormAct[B]) Kind() Kind {
	return KindConvNormAct
}

// String returns "ConvNormAct".
func (c *ConvNormAct[B]) String() string {
	return "ConvNormAct"
}
