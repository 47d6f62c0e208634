package cpu

import "github.com/born-ml/convnets/internal/tensor"

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("relu", x, relu)
}

// ReLU6 applies min(max(0, x), 6) element-wise.
func (cpu *CPUBackend) ReLU6(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("relu6", x, relu6)
}

// HardSigmoid applies relu6(x+3)/6 element-wise, i.e. clamp((x+3)/6, 0, 1).
func (cpu *CPUBackend) HardSigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("hardsigmoid", x, hardSigmoid)
}

// HardSwish applies x·hardsigmoid(x) element-wise.
func (cpu *CPUBackend) HardSwish(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("hardswish", x, func(v float32) float32 {
		return v * hardSigmoid(v)
	})
}

func relu(v float32) float32 {
	if v > 0 {
		return v
	}
	return 0
}

func relu6(v float32) float32 {
	switch {
	case v <= 0:
		return 0
	case v >= 6:
		return 6
	default:
		return v
	}
}

func hardSigmoid(v float32) float32 {
	return relu6(v+3) / 6
}
