package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/convnets/internal/tensor"
)

// MatMul performs matrix multiplication (M, K) @ (K, N) -> (M, N) with SGEMM.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	m, k, kAlt, n := matmulDims("matmul", a, b)
	if k != kAlt {
		panic(tensor.NewShapeError("matmul", a.Shape(), "inner dimensions differ: [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result := cpu.newRaw("matmul", tensor.Shape{m, n})
	gemm(blas.NoTrans,
		general(a.AsFloat32(), m, k),
		general(b.AsFloat32(), k, n),
		general(result.AsFloat32(), m, n))
	return result
}

// MatMulT multiplies a by the transpose of b: (M, K) @ (N, K)ᵀ -> (M, N).
// Linear layers keep weights as [out, in] and use this directly.
func (cpu *CPUBackend) MatMulT(a, b *tensor.RawTensor) *tensor.RawTensor {
	m, k, n, kAlt := matmulDims("matmul_t", a, b)
	if k != kAlt {
		panic(tensor.NewShapeError("matmul_t", a.Shape(), "expected %d features, weight has %d", kAlt, k))
	}

	result := cpu.newRaw("matmul_t", tensor.Shape{m, n})
	gemm(blas.Trans,
		general(a.AsFloat32(), m, k),
		general(b.AsFloat32(), n, k),
		general(result.AsFloat32(), m, n))
	return result
}

func matmulDims(op string, a, b *tensor.RawTensor) (int, int, int, int) {
	requireFloat32(op, a, b)
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(tensor.NewShapeError(op, aShape, "only 2D operands supported, got %dD and %dD", len(aShape), len(bShape)))
	}
	return aShape[0], aShape[1], bShape[0], bShape[1]
}

// general wraps a dense row-major slice as a blas32 matrix.
func general(data []float32, rows, cols int) blas32.General {
	return blas32.General{Rows: rows, Cols: cols, Stride: cols, Data: data}
}

// gemm computes c = a @ op(b), overwriting c.
func gemm(tB blas.Transpose, a, b, c blas32.General) {
	blas32.Gemm(blas.NoTrans, tB, 1, a, b, 0, c)
}
