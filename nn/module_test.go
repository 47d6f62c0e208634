// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/born-ml/convnets/backend/cpu"
	"github.com/born-ml/convnets/nn"
	"github.com/born-ml/convnets/tensor"
)

type Backend = *cpu.Backend

// TestModuleInterface verifies that concrete types implement Module interface.
func TestModuleInterface(t *testing.T) {
	backend := cpu.New()
	init := nn.NewInitializer(1)

	tests := []struct {
		name   string
		module nn.Module[Backend]
		input  tensor.Shape
	}{
		{
			name:   "Linear",
			module: nn.NewLinear(10, 5, init, backend),
			input:  tensor.Shape{2, 10},
		},
		{
			name:   "Fire",
			module: nn.NewFire(8, 4, 6, 6, nn.InitDefault, init, backend),
			input:  tensor.Shape{1, 8, 5, 5},
		},
		{
			name: "Sequential",
			module: nn.NewSequential[Backend](
				nn.NewConvNormAct(nn.ConvSpec{In: 3, Out: 4, Kernel: 3, Padding: 1}, nn.NewReLU6[Backend](), init, backend),
				nn.NewAdaptiveAvgPool2D[Backend](1, 1),
				nn.NewFlatten[Backend](),
			),
			input: tensor.Shape{2, 3, 6, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(3))
			input := tensor.Randn[float32](tt.input, rng, backend)

			want, err := tt.module.OutputShape(tt.input)
			if err != nil {
				t.Fatalf("OutputShape(%v) failed: %v", tt.input, err)
			}
			if got := tt.module.Forward(input).Shape(); !got.Equal(want) {
				t.Errorf("Forward shape = %v, OutputShape = %v", got, want)
			}

			if len(tt.module.Parameters()) == 0 {
				t.Error("Parameters() returned no parameters")
			}
			if len(tt.module.StateDict()) < len(tt.module.Parameters()) {
				t.Error("StateDict() has fewer entries than Parameters()")
			}
		})
	}
}

// TestNewParameter verifies parameter creation.
func TestNewParameter(t *testing.T) {
	backend := cpu.New()
	data := tensor.Zeros[float32](tensor.Shape{128, 64}, backend)

	param := nn.NewParameter("layer1.weight", data)
	if got := param.Name(); got != "layer1.weight" {
		t.Errorf("Name() = %q, want %q", got, "layer1.weight")
	}
	if got := param.Tensor(); got != data {
		t.Error("Tensor() returned different tensor")
	}
}

// TestWalkAndNumParameters verifies tree traversal through the facade.
func TestWalkAndNumParameters(t *testing.T) {
	backend := cpu.New()
	init := nn.NewInitializer(1)
	model := nn.NewNamedSequential(
		nn.Child[Backend]{Name: "conv", Module: nn.NewConv2D(nn.ConvSpec{In: 3, Out: 2, Kernel: 1, Bias: true}, init, backend)},
		nn.Child[Backend]{Name: "bn", Module: nn.NewBatchNorm2D(2, backend)},
		nn.Child[Backend]{Name: "drop", Module: nn.NewDropout[Backend](0.5, rand.New(rand.NewSource(1)))},
	)

	var paths []string
	nn.Walk[Backend](model, func(path string, _ nn.Module[Backend]) {
		paths = append(paths, path)
	})
	want := []string{"", "conv", "bn", "drop"}
	if len(paths) != len(want) {
		t.Fatalf("Walk visited %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Walk path %d = %q, want %q", i, paths[i], want[i])
		}
	}

	// conv: 3*2 + 2, bn: 2 + 2
	if got := nn.NumParameters[Backend](model); got != 12 {
		t.Errorf("NumParameters() = %d, want 12", got)
	}
}

// TestSaveLoad verifies a module survives a .born round trip.
func TestSaveLoad(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "fire.born")

	src := nn.NewFire(8, 4, 6, 6, nn.InitKaimingUniform, nn.NewInitializer(1), backend)
	if err := nn.Save[Backend](src, path, "Fire", map[string]string{"note": "test"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	dst := nn.NewFire(8, 4, 6, 6, nn.InitKaimingUniform, nn.NewInitializer(2), backend)
	arch, meta, err := nn.Load[Backend](path, backend, dst)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if arch != "Fire" {
		t.Errorf("architecture = %q, want %q", arch, "Fire")
	}
	if meta["note"] != "test" {
		t.Errorf("metadata = %v, want note=test", meta)
	}

	want := src.StateDict()
	for name, raw := range dst.StateDict() {
		a, b := raw.AsFloat32(), want[name].AsFloat32()
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%s[%d] = %v, want %v", name, i, a[i], b[i])
			}
		}
	}
}

// TestLoadShapeMismatch verifies Load rejects a differently sized module.
func TestLoadShapeMismatch(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "linear.born")

	if err := nn.Save[Backend](nn.NewLinear(4, 3, nn.NewInitializer(1), backend), path, "Linear", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, _, err := nn.Load[Backend](path, backend, nn.NewLinear(4, 5, nn.NewInitializer(1), backend)); err == nil {
		t.Error("Load into mismatched Linear succeeded, want error")
	}
}
