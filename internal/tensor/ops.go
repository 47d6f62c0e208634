package tensor

// Add performs strict same-shape element-wise addition.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Mul performs strict same-shape element-wise multiplication.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// MulScalar multiplies every element by s.
func (t *Tensor[T, B]) MulScalar(s float32) *Tensor[T, B] {
	return New[T, B](t.backend.MulScalar(t.raw, s), t.backend)
}

// MatMul performs matrix multiplication: (M, K) @ (K, N) → (M, N).
//
// Example:
//
//	a := tensor.Randn[float32](Shape{3, 4}, rng, backend)
//	b := tensor.Randn[float32](Shape{4, 5}, rng, backend)
//	c := a.MatMul(b) // Shape: [3, 5]
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// MatMulT multiplies by the transpose of other: (M, K) @ (N, K)ᵀ → (M, N).
func (t *Tensor[T, B]) MatMulT(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMulT(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data but different shape.
// The new shape must have the same number of elements.
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Flatten collapses every dimension after the first: (N, C, H, W) → (N, C·H·W).
func (t *Tensor[T, B]) Flatten() *Tensor[T, B] {
	shape := t.Shape()
	if len(shape) < 2 {
		panic(NewShapeError("flatten", shape, "expected at least 2 dimensions"))
	}
	return t.Reshape(shape[0], shape[1:].NumElements())
}

// ReLU applies max(0, x).
func (t *Tensor[T, B]) ReLU() *Tensor[T, B] {
	return New[T, B](t.backend.ReLU(t.raw), t.backend)
}

// ReLU6 applies min(max(0, x), 6).
func (t *Tensor[T, B]) ReLU6() *Tensor[T, B] {
	return New[T, B](t.backend.ReLU6(t.raw), t.backend)
}

// HardSigmoid applies clamp((x+3)/6, 0, 1).
func (t *Tensor[T, B]) HardSigmoid() *Tensor[T, B] {
	return New[T, B](t.backend.HardSigmoid(t.raw), t.backend)
}

// HardSwish applies x · HardSigmoid(x).
func (t *Tensor[T, B]) HardSwish() *Tensor[T, B] {
	return New[T, B](t.backend.HardSwish(t.raw), t.backend)
}

// ScaleChannels multiplies each (n, c) plane by gate[n, c, 0, 0].
func (t *Tensor[T, B]) ScaleChannels(gate *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.ScaleChannels(t.raw, gate.raw), t.backend)
}

// Cat concatenates tensors along dim. All other dimensions must match.
//
// Example:
//
//	a := tensor.Zeros[float32](Shape{1, 64, 55, 55}, backend)
//	b := tensor.Zeros[float32](Shape{1, 64, 55, 55}, backend)
//	c := tensor.Cat([]*Tensor[float32, B]{a, b}, 1) // [1, 128, 55, 55]
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic(NewShapeError("cat", nil, "no tensors to concatenate"))
	}
	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	b := tensors[0].backend
	return New[T, B](b.Cat(raws, dim), b)
}
