// Package models assembles the architecture zoo (VGG19, ResNet18,
// MobileNetV3, SqueezeNet and MnasNet) out of the nn blocks, and selects
// architectures by name.
//
// Constructors return *ConfigError for requests that cannot be built.
// Model.Forward returns *tensor.ShapeError for inputs that do not fit and
// never returns a partial result.
package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// InputChannels is the channel count every architecture expects (RGB).
const InputChannels = 3

// Model is an assembled architecture: a tree of owned blocks under a named root.
type Model[B tensor.Backend] struct {
	name       string
	numClasses int
	root       *nn.Sequential[B]
	config     map[string]string
	training   bool
}

// assemble builds root, converting layer configuration panics into a ConfigError.
func assemble[B tensor.Backend](name string, numClasses int, build func() []nn.Child[B]) (m *Model[B], err error) {
	if err := checkNumClasses(name, numClasses); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok || !errors.Is(cause, nn.ErrInvalidConfig) {
				panic(r)
			}
			m, err = nil, &ConfigError{Model: name, Detail: "cannot build layers", Err: cause}
		}
	}()

	return &Model[B]{
		name:       name,
		numClasses: numClasses,
		root:       nn.NewNamedSequential(build()...),
	}, nil
}

// Name returns the canonical architecture name (e.g. "ResNet18").
func (m *Model[B]) Name() string {
	return m.name
}

// NumClasses returns the width of the logits.
func (m *Model[B]) NumClasses() int {
	return m.numClasses
}

// Config returns the construction parameters that differ between builds of
// the same architecture (see the Config* keys), formatted for Rebuild.
// Architectures without such parameters return an empty map.
func (m *Model[B]) Config() map[string]string {
	config := make(map[string]string, len(m.config))
	for k, v := range m.config {
		config[k] = v
	}
	return config
}

// Root returns the top-level container, for walking the layer tree.
func (m *Model[B]) Root() nn.Module[B] {
	return m.root
}

// Forward evaluates the model on an [N, 3, H, W] batch and returns [N, num_classes] logits.
//
// The input shape is propagated through the whole tree before anything is
// computed; shape violations are returned as *tensor.ShapeError.
func (m *Model[B]) Forward(input *tensor.Tensor[float32, B]) (output *tensor.Tensor[float32, B], err error) {
	if _, err := m.OutputShape(input.Shape()); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok || !(errors.Is(cause, tensor.ErrShape) || errors.Is(cause, tensor.ErrUnsupported)) {
				panic(r)
			}
			output, err = nil, fmt.Errorf("%s forward: %w", m.name, cause)
		}
	}()

	return m.root.Forward(input), nil
}

// OutputShape propagates an input shape through the model without computing.
func (m *Model[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	if len(in) != 4 {
		return nil, tensor.NewShapeError("model input", in, "expected 4D input [N,C,H,W], got %dD", len(in))
	}
	if err := in.Validate(); err != nil {
		return nil, tensor.NewShapeError("model input", in, "%v", err)
	}
	if in[1] != InputChannels {
		return nil, tensor.NewShapeError("model input", in, "expected %d input channels, got %d", InputChannels, in[1])
	}

	out, err := m.root.OutputShape(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.name, err)
	}
	return out, nil
}

// SetTraining switches every batch norm and dropout layer of the model.
func (m *Model[B]) SetTraining(training bool) {
	nn.SetTraining[B](m.root, training)
	m.training = training
}

// Training reports whether the model is in training mode.
func (m *Model[B]) Training() bool {
	return m.training
}

// Parameters returns every trainable parameter in declaration order.
func (m *Model[B]) Parameters() []*nn.Parameter[B] {
	return m.root.Parameters()
}

// NumParameters counts the scalar elements of all trainable parameters.
func (m *Model[B]) NumParameters() int {
	return nn.NumParameters[B](m.root)
}

// StateDict returns parameters and batch norm buffers keyed by dotted path.
func (m *Model[B]) StateDict() map[string]*tensor.RawTensor {
	return m.root.StateDict()
}

// LoadStateDict copies stateDict into the model. Every key the model owns
// must be present with a matching shape, and no other key may appear.
func (m *Model[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	own := m.root.StateDict()
	var unknown []string
	for key := range stateDict {
		if _, ok := own[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%s: unexpected keys in state dict: %s", m.name, strings.Join(unknown, ", "))
	}

	if err := m.root.LoadStateDict(stateDict); err != nil {
		return fmt.Errorf("%s: %w", m.name, err)
	}
	return nil
}

// Summary renders the layer tree, one module per line, indented by depth.
func (m *Model[B]) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(num_classes=%d)\n", m.name, m.numClasses)
	nn.Walk[B](m.root, func(path string, mod nn.Module[B]) {
		if path == "" {
			return
		}
		depth := strings.Count(path, ".")
		name := path[strings.LastIndex(path, ".")+1:]
		fmt.Fprintf(&sb, "%s(%s): %s\n", strings.Repeat("  ", depth+1), name, mod.String())
	})
	return sb.String()
}

// String returns a one-line description of the model.
func (m *Model[B]) String() string {
	return fmt.Sprintf("%s(num_classes=%d, parameters=%d)", m.name, m.numClasses, m.NumParameters())
}
