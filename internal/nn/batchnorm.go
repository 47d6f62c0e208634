package nn

import (
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// BatchNorm2D defaults.
const (
	BatchNormEps      = 1e-5
	BatchNormMomentum = 0.1
)

// BatchNorm2D normalizes each channel of an [N, C, H, W] tensor.
//
// In inference mode it uses the running statistics. In training mode it uses
// the batch mean and biased variance, and folds the batch mean and unbiased
// variance into the running statistics with BatchNormMomentum.
//
// Running statistics are buffers: part of the state dict, not of Parameters.
type BatchNorm2D[B tensor.Backend] struct {
	channels    int
	eps         float32
	momentum    float32
	weight      *Parameter[B]
	bias        *Parameter[B]
	runningMean *tensor.RawTensor
	runningVar  *tensor.RawTensor
	training    bool
	backend     B
}

// NewBatchNorm2D creates a batch norm with weight 1, bias 0, running mean 0
// and running variance 1, in inference mode.
func NewBatchNorm2D[B tensor.Backend](channels int, backend B) *BatchNorm2D[B] {
	if channels <= 0 {
		panic(fmt.Errorf("batchnorm2d: channels must be positive, got %d: %w", channels, ErrInvalidConfig))
	}

	shape := tensor.Shape{channels}
	return &BatchNorm2D[B]{
		channels:    channels,
		eps:         BatchNormEps,
		momentum:    BatchNormMomentum,
		weight:      NewParameter("weight", tensor.Ones[float32](shape, backend)),
		bias:        NewParameter("bias", tensor.Zeros[float32](shape, backend)),
		runningMean: tensor.Zeros[float32](shape, backend).Raw(),
		runningVar:  tensor.Ones[float32](shape, backend).Raw(),
		backend:     backend,
	}
}

// Forward normalizes the input.
func (bn *BatchNorm2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if _, err := bn.OutputShape(shape); err != nil {
		panic(err)
	}

	mean, variance := bn.runningMean, bn.runningVar
	if bn.training {
		count := shape[0] * shape[2] * shape[3]
		if count < 2 {
			panic(tensor.NewShapeError("batchnorm2d", shape, "training needs more than one value per channel"))
		}
		mean, variance = bn.backend.ChannelMoments(input.Raw())
		bn.updateRunningStats(mean, variance, count)
	}

	out := bn.backend.BatchNorm2D(input.Raw(), mean, variance,
		bn.weight.Tensor().Raw(), bn.bias.Tensor().Raw(), bn.eps)
	return tensor.New[float32, B](out, bn.backend)
}

func (bn *BatchNorm2D[B]) updateRunningStats(mean, variance *tensor.RawTensor, count int) {
	unbias := float32(count) / float32(count-1)
	rm, rv := bn.runningMean.AsFloat32(), bn.runningVar.AsFloat32()
	m, v := mean.AsFloat32(), variance.AsFloat32()
	for c := range rm {
		rm[c] = (1-bn.momentum)*rm[c] + bn.momentum*m[c]
		rv[c] = (1-bn.momentum)*rv[c] + bn.momentum*v[c]*unbias
	}
}

// OutputShape returns the input shape after checking the channel count.
func (bn *BatchNorm2D[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	if len(in) != 4 {
		return nil, tensor.NewShapeError("batchnorm2d", in, "expected 4D input [N,C,H,W], got %dD", len(in))
	}
	if in[1] != bn.channels {
		return nil, tensor.NewShapeError("batchnorm2d", in, "expected %d channels, got %d", bn.channels, in[1])
	}
	return in.Clone(), nil
}

// Parameters returns weight and bias.
func (bn *BatchNorm2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{bn.weight, bn.bias}
}

// StateDict returns weight, bias, running_mean and running_var.
func (bn *BatchNorm2D[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight":       bn.weight.Tensor().Raw(),
		"bias":         bn.bias.Tensor().Raw(),
		"running_mean": bn.runningMean,
		"running_var":  bn.runningVar,
	}
}

// LoadStateDict loads parameters and running statistics.
func (bn *BatchNorm2D[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	targets := []struct {
		key string
		dst *tensor.RawTensor
	}{
		{"weight", bn.weight.Tensor().Raw()},
		{"bias", bn.bias.Tensor().Raw()},
		{"running_mean", bn.runningMean},
		{"running_var", bn.runningVar},
	}
	for _, t := range targets {
		if err := loadInto(stateDict, t.key, t.dst); err != nil {
			return err
		}
	}
	return nil
}

// RunningMean returns the running mean buffer.
func (bn *BatchNorm2D[B]) RunningMean() *tensor.RawTensor {
	return bn.runningMean
}

// RunningVar returns the running variance buffer.
func (bn *BatchNorm2D[B]) RunningVar() *tensor.RawTensor {
	return bn.runningVar
}

// SetTraining switches between batch and running statistics.
func (bn *BatchNorm2D[B]) SetTraining(training bool) {
	bn.training = training
}

// Training reports whether batch statistics are used.
func (bn *BatchNorm2D[B]) Training() bool {
	return bn.training
}

// Kind returns KindNorm.
func (bn *BatchNorm2D[B]) Kind() Kind {
	return KindNorm
}

// String returns a string representation of the layer.
func (bn *BatchNorm2D[B]) String() string {
	return fmt.Sprintf("BatchNorm2d(%d, eps=%g, momentum=%g)", bn.channels, bn.eps, bn.momentum)
}
