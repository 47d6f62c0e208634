// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package models provides the image-classification architectures of the zoo:
// VGG19, ResNet18, MobileNetV3, MnasNet and SqueezeNet.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convnets/backend/cpu"
//	    "github.com/born-ml/convnets/models"
//	    "github.com/born-ml/convnets/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    model, err := models.New("resnet18", 10, backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    x := tensor.Randn[float32](tensor.Shape{1, 3, 224, 224}, rng, backend)
//	    logits, err := model.Forward(x) // [1, 10]
//	}
//
// # Errors
//
// Construction fails with a *ConfigError (wrapping ErrConfiguration) for
// invalid arguments and unknown names. Forward fails with a
// *tensor.ShapeError when the input does not fit the architecture, for
// example a VGG19 input that does not pool down to 7x7.
package models
