package nn

import (
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// Parameter represents a learnable tensor owned by exactly one module.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
type Parameter[B tensor.Backend] struct {
	name   string                     // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor[float32, B] // The parameter tensor
}

// NewParameter creates a new parameter around an initialized tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// loadInto copies stateDict[key] into dst after checking presence, shape and dtype.
func loadInto(stateDict map[string]*tensor.RawTensor, key string, dst *tensor.RawTensor) error {
	src, ok := stateDict[key]
	if !ok {
		return fmt.Errorf("missing %s in state dict", key)
	}
	if !src.Shape().Equal(dst.Shape()) {
		return fmt.Errorf("%s shape mismatch: expected %v, got %v", key, dst.Shape(), src.Shape())
	}
	if src.DType() != dst.DType() {
		return fmt.Errorf("%s dtype mismatch: expected %v, got %v", key, dst.DType(), src.DType())
	}
	copy(dst.Data(), src.Data())
	return nil
}

// childParameters concatenates the parameters of children in order.
func childParameters[B tensor.Backend](children []Child[B]) []*Parameter[B] {
	var params []*Parameter[B]
	for _, c := range children {
		params = append(params, c.Module.Parameters()...)
	}
	return params
}

// childStateDict merges the children's state dicts under "<child>." prefixes.
func childStateDict[B tensor.Backend](children []Child[B]) map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for _, c := range children {
		for name, raw := range c.Module.StateDict() {
			stateDict[c.Name+"."+name] = raw
		}
	}
	return stateDict
}

// loadChildren routes "<child>.<rest>" entries to each child's LoadStateDict.
func loadChildren[B tensor.Backend](children []Child[B], stateDict map[string]*tensor.RawTensor) error {
	for _, c := range children {
		prefix := c.Name + "."
		sub := make(map[string]*tensor.RawTensor)
		for key, raw := range stateDict {
			if len(key) > len(prefix) && key[:len(prefix)] == prefix {
				sub[key[len(prefix):]] = raw
			}
		}
		if err := c.Module.LoadStateDict(sub); err != nil {
			return fmt.Errorf("failed to load %s: %w", c.Name, err)
		}
	}
	return nil
}

// childShape threads a shape through children in order.
func childShape[B tensor.Backend](children []Child[B], in tensor.Shape) (tensor.Shape, error) {
	shape := in
	for _, c := range children {
		out, err := c.Module.OutputShape(shape)
		if err != nil {
			return nil, err
		}
		shape = out
	}
	return shape, nil
}

// stateless provides the parameter plumbing for modules without tensors.
type stateless[B tensor.Backend] struct{}

// Parameters returns nil.
func (s stateless[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map.
func (s stateless[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict accepts only an empty state dict.
func (s stateless[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for key := range stateDict {
		return fmt.Errorf("unexpected %s in state dict", key)
	}
	return nil
}
