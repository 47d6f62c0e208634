package nn

import (
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// ConvSpec holds the hyperparameters of a square-kernel 2D convolution.
type ConvSpec struct {
	In      int        // input channels
	Out     int        // output channels
	Kernel  int        // kernel height and width
	Stride  int        // defaults to 1 when zero
	Padding int        // zero padding on every side
	Groups  int        // defaults to 1 when zero; In for depthwise
	Bias    bool       // add a learnable per-channel bias
	Init    InitScheme // weight initialization
}

// Validate reports impossible hyperparameters, wrapping ErrInvalidConfig.
func (s ConvSpec) Validate() error {
	s = s.withDefaults()
	switch {
	case s.In <= 0 || s.Out <= 0:
		return fmt.Errorf("conv2d: channels must be positive, got in=%d out=%d: %w", s.In, s.Out, ErrInvalidConfig)
	case s.Kernel <= 0:
		return fmt.Errorf("conv2d: kernel size must be positive, got %d: %w", s.Kernel, ErrInvalidConfig)
	case s.Stride <= 0:
		return fmt.Errorf("conv2d: stride must be positive, got %d: %w", s.Stride, ErrInvalidConfig)
	case s.Padding < 0:
		return fmt.Errorf("conv2d: padding must be non-negative, got %d: %w", s.Padding, ErrInvalidConfig)
	case s.Groups <= 0:
		return fmt.Errorf("conv2d: groups must be positive, got %d: %w", s.Groups, ErrInvalidConfig)
	case s.In%s.Groups != 0:
		return fmt.Errorf("conv2d: %d input channels not divisible by %d groups: %w", s.In, s.Groups, ErrInvalidConfig)
	case s.Out%s.Groups != 0:
		return fmt.Errorf("conv2d: %d output channels not divisible by %d groups: %w", s.Out, s.Groups, ErrInvalidConfig)
	}
	return nil
}

func (s ConvSpec) withDefaults() ConvSpec {
	if s.Stride == 0 {
		s.Stride = 1
	}
	if s.Groups == 0 {
		s.Groups = 1
	}
	return s
}

// Conv2D is a 2D convolutional layer with optional groups.
//
// Weight shape: [out_channels, in_channels/groups, kernel, kernel]
// Bias shape:   [out_channels]
//
// Example:
//
//	// Depthwise 3x3, stride 2
//	conv := nn.NewConv2D(nn.ConvSpec{In: 32, Out: 32, Kernel: 3, Stride: 2, Padding: 1, Groups: 32}, init, backend)
type Conv2D[B tensor.Backend] struct {
	spec    ConvSpec
	weight  *Parameter[B]
	bias    *Parameter[B]
	backend B
}

// NewConv2D creates a convolution initialized according to spec.Init.
// Panics with an ErrInvalidConfig-wrapped error if spec is invalid.
func NewConv2D[B tensor.Backend](spec ConvSpec, init *Initializer, backend B) *Conv2D[B] {
	if err := spec.Validate(); err != nil {
		panic(err)
	}
	spec = spec.withDefaults()

	fanIn := spec.In / spec.Groups * spec.Kernel * spec.Kernel
	weightShape := tensor.Shape{spec.Out, spec.In / spec.Groups, spec.Kernel, spec.Kernel}
	w, b := init.weightAndBias(spec.Init, weightShape, fanIn, spec.Out, spec.Bias, backend)

	c := &Conv2D[B]{
		spec:    spec,
		weight:  NewParameter("weight", tensor.New[float32, B](w, backend)),
		backend: backend,
	}
	if b != nil {
		c.bias = NewParameter("bias", tensor.New[float32, B](b, backend))
	}
	return c
}

// Forward performs the convolution.
//
// Input: [batch, in_channels, height, width]
// Output: [batch, out_channels, out_h, out_w].
func (c *Conv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := c.OutputShape(input.Shape()); err != nil {
		panic(err)
	}

	out := c.backend.Conv2D(input.Raw(), c.weight.Tensor().Raw(), c.spec.Stride, c.spec.Padding, c.spec.Groups)
	if c.bias != nil {
		out = c.backend.AddChannelBias(out, c.bias.Tensor().Raw())
	}
	return tensor.New[float32, B](out, c.backend)
}

// OutputShape returns [N, out_channels, out_h, out_w] for an [N, C, H, W] input.
func (c *Conv2D[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	if len(in) != 4 {
		return nil, tensor.NewShapeError("conv2d", in, "expected 4D input [N,C,H,W], got %dD", len(in))
	}
	if in[1] != c.spec.In {
		return nil, tensor.NewShapeError("conv2d", in, "expected %d input channels, got %d", c.spec.In, in[1])
	}
	h := tensor.ConvOutputSize(in[2], c.spec.Kernel, c.spec.Stride, c.spec.Padding)
	w := tensor.ConvOutputSize(in[3], c.spec.Kernel, c.spec.Stride, c.spec.Padding)
	if h <= 0 || w <= 0 {
		return nil, tensor.NewShapeError("conv2d", in, "spatial size %dx%d too small for %dx%d kernel with padding %d",
			in[2], in[3], c.spec.Kernel, c.spec.Kernel, c.spec.Padding)
	}
	return tensor.Shape{in[0], c.spec.Out, h, w}, nil
}

// Parameters returns all trainable parameters.
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	if c.bias != nil {
		return []*Parameter[B]{c.weight, c.bias}
	}
	return []*Parameter[B]{c.weight}
}

// StateDict returns weight and, when present, bias.
func (c *Conv2D[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := map[string]*tensor.RawTensor{"weight": c.weight.Tensor().Raw()}
	if c.bias != nil {
		stateDict["bias"] = c.bias.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict loads weight and, when present, bias.
func (c *Conv2D[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := loadInto(stateDict, "weight", c.weight.Tensor().Raw()); err != nil {
		return err
	}
	if c.bias != nil {
		return loadInto(stateDict, "bias", c.bias.Tensor().Raw())
	}
	return nil
}

// Kind returns KindConv.
func (c *Conv2D[B]) Kind() Kind {
	return KindConv
}

// Spec returns the layer hyperparameters.
func (c *Conv2D[B]) Spec() ConvSpec {
	return c.spec
}

// Weight returns the kernel parameter.
func (c *Conv2D[B]) Weight() *Parameter[B] {
	return c.weight
}

// Bias returns the bias parameter, or nil.
func (c *Conv2D[B]) Bias() *Parameter[B] {
	return c.bias
}

// String returns a string representation of the layer.
func (c *Conv2D[B]) String() string {
	s := fmt.Sprintf("Conv2D(%d, %d, kernel_size=%d, stride=%d, padding=%d",
		c.spec.In, c.spec.Out, c.spec.Kernel, c.spec.Stride, c.spec.Padding)
	if c.spec.Groups != 1 {
		s += fmt.Sprintf(", groups=%d", c.spec.Groups)
	}
	return s + fmt.Sprintf(", bias=%v)", c.bias != nil)
}
