package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convnets/internal/tensor"
)

// rawFrom creates a float32 RawTensor holding data.
func rawFrom(t *testing.T, shape tensor.Shape, data []float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	require.Len(t, data, shape.NumElements())
	copy(raw.AsFloat32(), data)
	return raw
}

// seq returns [start, start+1, ...] of length n.
func seq(n int, start float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = start + float32(i)
	}
	return out
}

// requireShapePanic asserts that f panics with an error wrapping tensor.ErrShape.
func requireShapePanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, errors.Is(err, tensor.ErrShape), "got %v", err)
	}()
	f()
}

func TestCPUBackend_New(t *testing.T) {
	backend := New()
	require.NotNil(t, backend)
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestCPUBackend_Add(t *testing.T) {
	backend := New()
	a := rawFrom(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	b := rawFrom(t, tensor.Shape{2, 2}, []float32{10, 20, 30, 40})

	out := backend.Add(a, b)
	assert.Equal(t, []float32{11, 22, 33, 44}, out.AsFloat32())
	assert.Equal(t, []float32{1, 2, 3, 4}, a.AsFloat32(), "inputs must not be modified")
}

func TestCPUBackend_AddRejectsBroadcast(t *testing.T) {
	backend := New()
	a := rawFrom(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	b := rawFrom(t, tensor.Shape{1, 2}, []float32{1, 1})

	requireShapePanic(t, func() { backend.Add(a, b) })
}

func TestCPUBackend_MulAndScalar(t *testing.T) {
	backend := New()
	a := rawFrom(t, tensor.Shape{3}, []float32{1, 2, 3})
	b := rawFrom(t, tensor.Shape{3}, []float32{4, 5, 6})

	assert.Equal(t, []float32{4, 10, 18}, backend.Mul(a, b).AsFloat32())
	assert.Equal(t, []float32{0.5, 1, 1.5}, backend.MulScalar(a, 0.5).AsFloat32())
}

func TestCPUBackend_UnsupportedDType(t *testing.T) {
	backend := New()
	a, err := tensor.NewRaw(tensor.Shape{2}, tensor.Int32, tensor.CPU)
	require.NoError(t, err)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, tensor.ErrUnsupported)
	}()
	backend.ReLU(a)
}

func TestCPUBackend_Activations(t *testing.T) {
	backend := New()
	x := rawFrom(t, tensor.Shape{7}, []float32{-4, -3, -1, 0, 1, 3, 7})

	assert.Equal(t, []float32{0, 0, 0, 0, 1, 3, 7}, backend.ReLU(x).AsFloat32())
	assert.Equal(t, []float32{0, 0, 0, 0, 1, 3, 6}, backend.ReLU6(x).AsFloat32())
	assert.InDeltaSlice(t, []float32{0, 0, 2.0 / 6, 0.5, 4.0 / 6, 1, 1}, backend.HardSigmoid(x).AsFloat32(), 1e-6)
	assert.InDeltaSlice(t, []float32{0, 0, -2.0 / 6, 0, 4.0 / 6, 3, 7}, backend.HardSwish(x).AsFloat32(), 1e-6)
}

func TestCPUBackend_HardSwishMatchesDefinition(t *testing.T) {
	backend := New()
	data := seq(121, -60)
	for i := range data {
		data[i] /= 10
	}
	x := rawFrom(t, tensor.Shape{len(data)}, data)

	hs := backend.HardSwish(x).AsFloat32()
	hsig := backend.HardSigmoid(x).AsFloat32()
	for i, v := range data {
		assert.InDelta(t, v*hsig[i], hs[i], 1e-6)
		assert.GreaterOrEqual(t, hsig[i], float32(0))
		assert.LessOrEqual(t, hsig[i], float32(1))
	}
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := New()
	a := rawFrom(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	b := rawFrom(t, tensor.Shape{3, 2}, []float32{7, 8, 9, 10, 11, 12})

	out := backend.MatMul(a, b)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

func TestCPUBackend_MatMulT(t *testing.T) {
	backend := New()
	a := rawFrom(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	// bᵀ of the MatMul test above.
	b := rawFrom(t, tensor.Shape{2, 3}, []float32{7, 9, 11, 8, 10, 12})

	out := backend.MatMulT(a, b)
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

func TestCPUBackend_MatMulShapeMismatch(t *testing.T) {
	backend := New()
	a := rawFrom(t, tensor.Shape{2, 3}, seq(6, 0))
	b := rawFrom(t, tensor.Shape{2, 2}, seq(4, 0))

	requireShapePanic(t, func() { backend.MatMul(a, b) })
	requireShapePanic(t, func() { backend.MatMulT(a, b) })
}

func TestCPUBackend_Cat(t *testing.T) {
	backend := New()

	t.Run("channels", func(t *testing.T) {
		a := rawFrom(t, tensor.Shape{1, 1, 2, 2}, seq(4, 1))
		b := rawFrom(t, tensor.Shape{1, 2, 2, 2}, seq(8, 5))
		out := backend.Cat([]*tensor.RawTensor{a, b}, 1)
		assert.Equal(t, tensor.Shape{1, 3, 2, 2}, out.Shape())
		assert.Equal(t, seq(12, 1), out.AsFloat32())
	})

	t.Run("batched", func(t *testing.T) {
		a := rawFrom(t, tensor.Shape{2, 1, 1, 2}, []float32{1, 2, 3, 4})
		b := rawFrom(t, tensor.Shape{2, 1, 1, 2}, []float32{5, 6, 7, 8})
		out := backend.Cat([]*tensor.RawTensor{a, b}, 1)
		assert.Equal(t, []float32{1, 2, 5, 6, 3, 4, 7, 8}, out.AsFloat32())
	})

	t.Run("mismatch", func(t *testing.T) {
		a := rawFrom(t, tensor.Shape{1, 1, 2, 2}, seq(4, 1))
		b := rawFrom(t, tensor.Shape{1, 1, 3, 2}, seq(6, 1))
		requireShapePanic(t, func() { backend.Cat([]*tensor.RawTensor{a, b}, 1) })
	})
}

func TestCPUBackend_Reshape(t *testing.T) {
	backend := New()
	x := rawFrom(t, tensor.Shape{2, 3, 1, 1}, seq(6, 0))

	out := backend.Reshape(x, tensor.Shape{2, 3})
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, seq(6, 0), out.AsFloat32())

	requireShapePanic(t, func() { backend.Reshape(x, tensor.Shape{4, 2}) })
}

func TestCPUBackend_ScaleChannels(t *testing.T) {
	backend := New()
	x := rawFrom(t, tensor.Shape{1, 2, 1, 2}, []float32{1, 2, 3, 4})
	gate := rawFrom(t, tensor.Shape{1, 2, 1, 1}, []float32{0.5, 2})

	out := backend.ScaleChannels(x, gate)
	assert.Equal(t, []float32{0.5, 1, 6, 8}, out.AsFloat32())

	bad := rawFrom(t, tensor.Shape{1, 2, 1, 2}, []float32{1, 1, 1, 1})
	requireShapePanic(t, func() { backend.ScaleChannels(x, bad) })
}

func TestCPUBackend_AddChannelBias(t *testing.T) {
	backend := New()

	x := rawFrom(t, tensor.Shape{2, 2, 1, 2}, make([]float32, 8))
	bias := rawFrom(t, tensor.Shape{2}, []float32{1, -1})
	assert.Equal(t, []float32{1, 1, -1, -1, 1, 1, -1, -1}, backend.AddChannelBias(x, bias).AsFloat32())

	flat := rawFrom(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	assert.Equal(t, []float32{2, 1, 4, 3}, backend.AddChannelBias(flat, bias).AsFloat32())

	requireShapePanic(t, func() {
		backend.AddChannelBias(flat, rawFrom(t, tensor.Shape{3}, []float32{1, 2, 3}))
	})
}

func TestCPUBackend_SequentialMatchesParallel(t *testing.T) {
	xs := seq(2*4*81, -300)
	for i := range xs {
		xs[i] /= 300
	}
	ks := seq(72, -36)
	for i := range ks {
		ks[i] /= 36
	}
	x := rawFrom(t, tensor.Shape{2, 4, 9, 9}, xs)
	k := rawFrom(t, tensor.Shape{4, 2, 3, 3}, ks)

	want := New().Conv2D(x, k, 2, 1, 2).AsFloat32()
	got := NewSequential().Conv2D(x, k, 2, 1, 2).AsFloat32()
	assert.InDeltaSlice(t, want, got, 1e-3)
}
