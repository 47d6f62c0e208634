// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/serialization"
	"github.com/born-ml/convnets/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module implements:
//   - Forward: Compute output from input
//   - OutputShape: Propagate a shape without computing anything
//   - Parameters: Return all trainable parameters
//   - StateDict: Export parameters and buffers for serialization
//   - LoadStateDict: Import parameters and buffers
//
// Modules can be composed to build complex architectures:
//
//	block := nn.NewSequential[Backend](
//	    nn.NewConvNormAct(nn.ConvSpec{In: 3, Out: 16, Kernel: 3, Padding: 1}, nn.NewReLU[Backend](), init, backend),
//	    nn.NewMaxPool2D[Backend](2, 2, 0, false),
//	)
type Module[B tensor.Backend] = nn.Module[B]

// Child is a named submodule.
type Child[B tensor.Backend] = nn.Child[B]

// Kind identifies the variant of a Module.
type Kind = nn.Kind

// Walk visits m and its descendants depth-first, passing each module's
// dotted state-dict prefix.
func Walk[B tensor.Backend](m Module[B], fn func(path string, m Module[B])) {
	nn.Walk(m, fn)
}

// SetTraining switches batch normalization and dropout in the whole tree.
func SetTraining[B tensor.Backend](m Module[B], training bool) {
	nn.SetTraining(m, training)
}

// NumParameters counts the scalar elements of all trainable parameters.
func NumParameters[B tensor.Backend](m Module[B]) int {
	return nn.NumParameters(m)
}

// Save saves a module to a .born file.
//
// The module's state dictionary is written atomically: a crash mid-write
// leaves any previous file at path untouched.
//
// Parameters:
//   - module: The module to save
//   - path: File path to write to
//   - architecture: Name recorded in the header (e.g., "ResNet18")
//   - metadata: Optional metadata (can be nil)
//
// Example:
//
//	err := nn.Save(block, "block.born", "Fire", nil)
func Save[B tensor.Backend](module Module[B], path, architecture string, metadata map[string]string) error {
	return serialization.WriteFile(path, module.StateDict(), serialization.Header{
		Architecture: architecture,
		Metadata:     metadata,
	})
}

// Load loads a module from a .born file.
//
// The file's checksum is verified before any tensor is read. Returns the
// architecture name recorded in the file and its metadata.
//
// Example:
//
//	backend := cpu.New()
//	arch, meta, err := nn.Load("block.born", backend, block)
func Load[B tensor.Backend](path string, backend B, module Module[B]) (string, map[string]string, error) {
	reader, err := serialization.NewBornReader(path)
	if err != nil {
		return "", nil, err
	}
	defer func() {
		_ = reader.Close()
	}()

	stateDict, err := reader.ReadStateDict(backend)
	if err != nil {
		return "", nil, err
	}
	if err := module.LoadStateDict(stateDict); err != nil {
		return "", nil, err
	}
	return reader.Header().Architecture, reader.Metadata(), nil
}
