// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package models_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/born-ml/convnets/backend/cpu"
	"github.com/born-ml/convnets/models"
	"github.com/born-ml/convnets/tensor"
)

// TestNew verifies the registry through the public API.
func TestNew(t *testing.T) {
	backend := cpu.New()

	model, err := models.New(" SqueezeNet ", 4, backend, models.WithSeed(1))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if model.Name() != models.SqueezeNetName {
		t.Errorf("Name() = %q, want %q", model.Name(), models.SqueezeNetName)
	}

	x := tensor.Randn[float32](tensor.Shape{2, models.InputChannels, 64, 64}, rand.New(rand.NewSource(1)), backend)
	logits, err := model.Forward(x)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if !logits.Shape().Equal(tensor.Shape{2, 4}) {
		t.Errorf("logits shape = %v, want [2 4]", logits.Shape())
	}
}

// TestErrors verifies error values are reachable through the facade.
func TestErrors(t *testing.T) {
	backend := cpu.New()

	_, err := models.New("lenet", 10, backend)
	var cfgErr *models.ConfigError
	if !errors.As(err, &cfgErr) || !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("New(lenet) error = %v, want *ConfigError", err)
	}

	_, err = models.New("alexnet", 10, backend)
	if !errors.Is(err, tensor.ErrUnsupported) {
		t.Errorf("New(alexnet) error = %v, want ErrUnsupported", err)
	}

	model, err := models.NewResNet18(10, backend)
	if err != nil {
		t.Fatalf("NewResNet18 failed: %v", err)
	}
	_, err = model.OutputShape(tensor.Shape{1, 1, 224, 224})
	var shapeErr *tensor.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Errorf("OutputShape with 1 channel error = %v, want *tensor.ShapeError", err)
	}

	if _, err := models.ParseTrained("true"); err == nil {
		t.Error(`ParseTrained("true") succeeded, want error`)
	}
}

// TestOutputShapes verifies every architecture maps 224x224 to class logits.
func TestOutputShapes(t *testing.T) {
	backend := cpu.New()
	for _, name := range models.Names() {
		if name == models.VGG19Name && testing.Short() {
			continue // ~140M parameters
		}
		model, err := models.New(name, 7, backend)
		if err != nil {
			t.Fatalf("New(%s) failed: %v", name, err)
		}
		out, err := model.OutputShape(tensor.Shape{3, 3, 224, 224})
		if err != nil {
			t.Fatalf("%s OutputShape failed: %v", name, err)
		}
		if !out.Equal(tensor.Shape{3, 7}) {
			t.Errorf("%s OutputShape = %v, want [3 7]", name, out)
		}
	}
}
