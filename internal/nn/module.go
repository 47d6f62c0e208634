// Package nn implements the layers and composite blocks the architecture
// assemblers are built from.
//
// This package provides:
//   - Module interface: Forward, shape propagation, parameters and state dicts
//   - Layers: Conv2D, BatchNorm2D, Linear, pooling, activations, Dropout, Flatten
//   - Containers: Sequential, Concat
//   - Blocks: ConvNormAct, Residual, InvertedResidual, SqueezeExcitation, Fire
//
// Layers panic with *tensor.ShapeError on inputs that do not fit, the way
// backends do; callers that need errors use OutputShape first or recover.
package nn

import (
	"errors"

	"github.com/born-ml/convnets/internal/tensor"
)

// ErrInvalidConfig is wrapped by the panics of layer constructors that are
// given impossible hyperparameters (e.g. channels not divisible by groups).
var ErrInvalidConfig = errors.New("invalid layer configuration")

// Kind identifies the variant of a Module.
type Kind int

// Module kinds.
const (
	KindConv Kind = iota
	KindNorm
	KindActivation
	KindPool
	KindLinear
	KindDropout
	KindConcat
	KindFlatten
	KindSequential
	KindConvNormAct
	KindResidual
	KindInvertedResidual
	KindFire
	KindSqueezeExcitation
)

var kindNames = [...]string{
	KindConv:              "Conv",
	KindNorm:              "Norm",
	KindActivation:        "Activation",
	KindPool:              "Pool",
	KindLinear:            "Linear",
	KindDropout:           "Dropout",
	KindConcat:            "Concat",
	KindFlatten:           "Flatten",
	KindSequential:        "Sequential",
	KindConvNormAct:       "ConvNormAct",
	KindResidual:          "Residual",
	KindInvertedResidual:  "InvertedResidual",
	KindFire:              "Fire",
	KindSqueezeExcitation: "SqueezeExcitation",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Module is the base interface for all neural network components.
//
// Modules are composed into a static ownership tree:
//
//	block := nn.NewSequential[B](
//	    nn.NewConvNormAct(nn.ConvSpec{In: 3, Out: 16, Kernel: 3, Stride: 2, Padding: 1}, nn.NewHardSwish[B](), init, backend),
//	    nn.NewAdaptiveAvgPool2D[B](1, 1),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	// Panics with *tensor.ShapeError when the input does not fit.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// OutputShape propagates an input shape through the module without
	// computing anything.
	OutputShape(in tensor.Shape) (tensor.Shape, error)

	// Parameters returns all trainable parameters of this module,
	// including those of nested modules. Buffers are not included.
	Parameters() []*Parameter[B]

	// StateDict returns parameters and buffers keyed by dotted path.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies matching entries into the module's tensors.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error

	// Kind reports the module variant.
	Kind() Kind

	// String describes the module's own hyperparameters (not its children).
	String() string
}

// Child is a named submodule.
type Child[B tensor.Backend] struct {
	Name   string
	Module Module[B]
}

// Parent is implemented by modules that own submodules.
type Parent[B tensor.Backend] interface {
	Children() []Child[B]
}

// Trainable is implemented by modules that behave differently in training mode.
type Trainable interface {
	SetTraining(training bool)
	Training() bool
}

// Walk visits m and its descendants depth-first in declaration order.
// path is the dotted state-dict prefix of each module ("" for m itself).
func Walk[B tensor.Backend](m Module[B], fn func(path string, m Module[B])) {
	walk("", m, fn)
}

func walk[B tensor.Backend](path string, m Module[B], fn func(string, Module[B])) {
	fn(path, m)
	p, ok := m.(Parent[B])
	if !ok {
		return
	}
	for _, c := range p.Children() {
		walk(joinPath(path, c.Name), c.Module, fn)
	}
}

// SetTraining switches every Trainable module in the tree.
func SetTraining[B tensor.Backend](m Module[B], training bool) {
	Walk(m, func(_ string, m Module[B]) {
		if t, ok := m.(Trainable); ok {
			t.SetTraining(training)
		}
	})
}

// NumParameters counts the scalar elements of all trainable parameters.
func NumParameters[B tensor.Backend](m Module[B]) int {
	n := 0
	for _, p := range m.Parameters() {
		n += p.Tensor().NumElements()
	}
	return n
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
