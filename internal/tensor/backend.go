package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Operations panic with *ShapeError when operand shapes do not fit, and with an
// ErrUnsupported-wrapped error for dtypes they do not implement.
type Backend interface {
	// Element-wise binary operations. Operands must have identical shapes.
	Add(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MulScalar multiplies every element by s.
	MulScalar(x *RawTensor, s float32) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor  // [M, K] @ [K, N] -> [M, N]
	MatMulT(a, b *RawTensor) *RawTensor // [M, K] @ [N, K]ᵀ -> [M, N]

	// Conv2D convolves [N, C_in, H, W] with [C_out, C_in/groups, kH, kW].
	Conv2D(input, kernel *RawTensor, stride, padding, groups int) *RawTensor

	// AddChannelBias adds bias[c] to every element of channel c (dimension 1).
	AddChannelBias(x, bias *RawTensor) *RawTensor

	// Pooling
	MaxPool2D(input *RawTensor, kernelSize, stride, padding int, ceilMode bool) *RawTensor
	AdaptiveAvgPool2D(input *RawTensor, outH, outW int) *RawTensor

	// Normalization
	ChannelMoments(x *RawTensor) (mean, variance *RawTensor) // per-channel biased moments of [N, C, H, W]
	BatchNorm2D(x, mean, variance, weight, bias *RawTensor, eps float32) *RawTensor

	// Activation functions
	ReLU(x *RawTensor) *RawTensor
	ReLU6(x *RawTensor) *RawTensor
	HardSigmoid(x *RawTensor) *RawTensor
	HardSwish(x *RawTensor) *RawTensor

	// ScaleChannels multiplies x [N, C, H, W] by gate [N, C, 1, 1].
	ScaleChannels(x, gate *RawTensor) *RawTensor

	// Manipulation operations
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Reshape(t *RawTensor, newShape Shape) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
