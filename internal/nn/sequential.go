package nn

import (
	"fmt"
	"strconv"

	"github.com/born-ml/convnets/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input, creating a
// sequential pipeline of transformations.
//
// Example:
//
//	features := nn.NewSequential[B](
//	    nn.NewConv2D(nn.ConvSpec{In: 3, Out: 64, Kernel: 3, Padding: 1, Bias: true}, init, backend),
//	    nn.NewReLU[B](),
//	    nn.NewMaxPool2D[B](2, 2, 0, false),
//	)
//
//	output := features.Forward(input)
type Sequential[B tensor.Backend] struct {
	children []Child[B]
}

// NewSequential creates a Sequential whose children are named by index
// ("0", "1", ...), so state dict keys read "0.weight", "2.bias".
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	s := &Sequential[B]{}
	for _, m := range modules {
		s.Add(m)
	}
	return s
}

// NewNamedSequential creates a Sequential with explicitly named children.
func NewNamedSequential[B tensor.Backend](children ...Child[B]) *Sequential[B] {
	seen := make(map[string]bool, len(children))
	for _, c := range children {
		if c.Name == "" || seen[c.Name] {
			panic(fmt.Errorf("sequential: duplicate or empty child name %q: %w", c.Name, ErrInvalidConfig))
		}
		seen[c.Name] = true
	}
	return &Sequential[B]{children: children}
}

// Forward applies all modules in sequence.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	output := input
	for _, c := range s.children {
		output = c.Module.Forward(output)
	}
	return output
}

// OutputShape threads the shape through every child.
func (s *Sequential[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	return childShape(s.children, in)
}

// Parameters returns all trainable parameters from all modules, in order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	return childParameters(s.children)
}

// Add appends a module named by its index.
func (s *Sequential[B]) Add(module Module[B]) {
	s.children = append(s.children, Child[B]{Name: strconv.Itoa(len(s.children)), Module: module})
}

// Len returns the number of modules in the sequence.
func (s *Sequential[B]) Len() int {
	return len(s.children)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential[B]) Module(index int) Module[B] {
	if index < 0 || index >= len(s.children) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.children[index].Module
}

// Children returns the named children in order.
func (s *Sequential[B]) Children() []Child[B] {
	return s.children
}

// StateDict returns a map of prefixed names ("0.weight", "features.3.bias") to raw tensors.
func (s *Sequential[B]) StateDict() map[string]*tensor.RawTensor {
	return childStateDict(s.children)
}

// LoadStateDict loads every child from its prefixed entries.
func (s *Sequential[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadChildren(s.children, stateDict)
}

// Kind returns KindSequential.
func (s *Sequential[B]) Kind() Kind {
	return KindSequential
}

// String returns "Sequential".
func (s *Sequential[B]) String() string {
	return "Sequential"
}

// Concat feeds the same input to every branch and concatenates the branch
// outputs along the channel dimension.
type Concat[B tensor.Backend] struct {
	branches []Child[B]
}

// NewConcat creates a channel concatenation over named branches.
func NewConcat[B tensor.Backend](branches ...Child[B]) *Concat[B] {
	if len(branches) == 0 {
		panic(fmt.Errorf("concat: no branches: %w", ErrInvalidConfig))
	}
	return &Concat[B]{branches: branches}
}

// Forward evaluates every branch on input and concatenates the results.
func (c *Concat[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	outs := make([]*tensor.Tensor[float32, B], len(c.branches))
	for i, b := range c.branches {
		outs[i] = b.Module.Forward(input)
	}
	return tensor.Cat(outs, 1)
}

// OutputShape sums the branch channel counts; all other dims must agree.
func (c *Concat[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	var out tensor.Shape
	for _, b := range c.branches {
		s, err := b.Module.OutputShape(in)
		if err != nil {
			return nil, err
		}
		if len(s) < 2 {
			return nil, tensor.NewShapeError("concat", s, "branch %s output has no channel dimension", b.Name)
		}
		if out == nil {
			out = s.Clone()
			continue
		}
		if len(s) != len(out) {
			return nil, tensor.NewShapeError("concat", s, "branch %s has %d dims, expected %d", b.Name, len(s), len(out))
		}
		for d := range s {
			if d != 1 && s[d] != out[d] {
				return nil, tensor.NewShapeError("concat", s, "branch %s has size %d at dim %d, expected %d", b.Name, s[d], d, out[d])
			}
		}
		out[1] += s[1]
	}
	return out, nil
}

// Parameters returns the branch parameters in order.
func (c *Concat[B]) Parameters() []*Parameter[B] {
	return childParameters(c.branches)
}

// Children returns the branches.
func (c *Concat[B]) Children() []Child[B] {
	return c.branches
}

// StateDict returns the branch state dicts under "<branch>." prefixes.
func (c *Concat[B]) StateDict() map[string]*tensor.RawTensor {
	return childStateDict(c.branches)
}

// LoadStateDict loads every branch.
func (c *Concat[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadChildren(c.branches, stateDict)
}

// Kind returns KindConcat.
func (c *Concat[B]) Kind() Kind {
	return KindConcat
}

// String returns "Concat(dim=1)".
func (c *Concat[B]) String() string {
	return "Concat(dim=1)"
}
