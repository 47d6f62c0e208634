package nn

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convnets/internal/backend/cpu"
	"github.com/born-ml/convnets/internal/tensor"
)

func smallFeatures(seed int64, backend Backend) *Sequential[Backend] {
	init := NewInitializer(seed)
	return NewSequential[Backend](
		NewConv2D(ConvSpec{In: 3, Out: 4, Kernel: 3, Padding: 1, Bias: true}, init, backend),
		NewBatchNorm2D(4, backend),
		NewReLU[Backend](),
		NewMaxPool2D[Backend](2, 2, 0, false),
	)
}

func sortedKeys(m map[string]*tensor.RawTensor) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestSequential_Forward(t *testing.T) {
	backend := cpu.New()
	seq := smallFeatures(1, backend)

	assert.Equal(t, 4, seq.Len())
	assert.Equal(t, KindPool, seq.Module(3).Kind())

	out := seq.Forward(randn(tensor.Shape{2, 3, 8, 8}, 1, backend))
	assert.Equal(t, tensor.Shape{2, 4, 4, 4}, out.Shape())

	shape, err := seq.OutputShape(tensor.Shape{2, 3, 8, 8})
	require.NoError(t, err)
	assert.Equal(t, out.Shape(), shape)

	_, err = seq.OutputShape(tensor.Shape{2, 1, 8, 8})
	assert.ErrorIs(t, err, tensor.ErrShape)

	assert.Panics(t, func() { seq.Module(4) })
}

func TestSequential_StateDictKeys(t *testing.T) {
	backend := cpu.New()
	seq := smallFeatures(1, backend)

	keys := sortedKeys(seq.StateDict())
	assert.Equal(t, []string{
		"0.bias", "0.weight",
		"1.bias", "1.running_mean", "1.running_var", "1.weight",
	}, keys)
	assert.Len(t, seq.Parameters(), 4)
	assert.Equal(t, 3*4*9+4+4+4, NumParameters[Backend](seq))
}

func TestSequential_LoadStateDict(t *testing.T) {
	backend := cpu.New()
	src := smallFeatures(1, backend)
	dst := smallFeatures(2, backend)
	x := randn(tensor.Shape{1, 3, 6, 6}, 3, backend)

	require.NotEqual(t, src.Forward(x).Data(), dst.Forward(x).Data())
	require.NoError(t, dst.LoadStateDict(src.StateDict()))
	assert.Equal(t, src.Forward(x).Data(), dst.Forward(x).Data())

	sd := src.StateDict()
	delete(sd, "1.running_mean")
	err := dst.LoadStateDict(sd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load 1")
}

func TestNamedSequential_Duplicate(t *testing.T) {
	requirePanicIs(t, ErrInvalidConfig, func() {
		NewNamedSequential(Child[Backend]{Name: "a", Module: NewReLU[Backend]()}, Child[Backend]{Name: "a", Module: NewReLU[Backend]()})
	})
	requirePanicIs(t, ErrInvalidConfig, func() {
		NewNamedSequential(Child[Backend]{Module: NewReLU[Backend]()})
	})
}

func TestWalkAndSetTraining(t *testing.T) {
	backend := cpu.New()
	root := NewNamedSequential(
		Child[Backend]{Name: "features", Module: smallFeatures(1, backend)},
		Child[Backend]{Name: "classifier", Module: NewSequential[Backend](
			NewDropout[Backend](0.5, nil),
			NewFlatten[Backend](),
		)},
	)

	var paths []string
	Walk[Backend](root, func(path string, _ Module[Backend]) {
		paths = append(paths, path)
	})
	assert.Equal(t, []string{
		"", "features", "features.0", "features.1", "features.2", "features.3",
		"classifier", "classifier.0", "classifier.1",
	}, paths)

	SetTraining[Backend](root, true)
	var trainables int
	Walk[Backend](root, func(_ string, m Module[Backend]) {
		if tr, ok := m.(Trainable); ok {
			assert.True(t, tr.Training(), m.String())
			trainables++
		}
	})
	assert.Equal(t, 2, trainables)

	SetTraining[Backend](root, false)
	bn := root.Children()[0].Module.(*Sequential[Backend]).Module(1).(*BatchNorm2D[Backend])
	assert.False(t, bn.Training())
}

func TestConcat(t *testing.T) {
	backend := cpu.New()
	init := NewInitializer(1)
	cat := NewConcat(
		Child[Backend]{Name: "a", Module: NewConv2D(ConvSpec{In: 2, Out: 3, Kernel: 1}, init, backend)},
		Child[Backend]{Name: "b", Module: NewConv2D(ConvSpec{In: 2, Out: 5, Kernel: 3, Padding: 1}, init, backend)},
	)

	out := cat.Forward(randn(tensor.Shape{2, 2, 4, 4}, 1, backend))
	assert.Equal(t, tensor.Shape{2, 8, 4, 4}, out.Shape())
	assert.Equal(t, []string{"a.weight", "b.weight"}, sortedKeys(cat.StateDict()))

	mismatched := NewConcat(
		Child[Backend]{Name: "a", Module: NewConv2D(ConvSpec{In: 2, Out: 3, Kernel: 1}, init, backend)},
		Child[Backend]{Name: "b", Module: NewConv2D(ConvSpec{In: 2, Out: 3, Kernel: 3}, init, backend)},
	)
	_, err := mismatched.OutputShape(tensor.Shape{1, 2, 4, 4})
	assert.ErrorIs(t, err, tensor.ErrShape)

	requirePanicIs(t, ErrInvalidConfig, func() { NewConcat[Backend]() })
}
