package models

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every ConfigError.
var ErrConfiguration = errors.New("configuration error")

// ConfigError reports an architecture that cannot be built as requested:
// an unknown or undefined model name, an unknown SqueezeNet version, a
// non-positive class count or impossible layer hyperparameters.
type ConfigError struct {
	Model  string // Architecture or selector name involved, if any
	Detail string // What was wrong
	Err    error  // Underlying cause, may be nil
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := e.Detail
	if e.Model != "" {
		msg = e.Model + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "configuration error: " + msg
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(model string, format string, args ...any) *ConfigError {
	return &ConfigError{Model: model, Detail: fmt.Sprintf(format, args...)}
}

func checkNumClasses(model string, numClasses int) error {
	if numClasses <= 0 {
		return configErrorf(model, "num_classes must be positive, got %d", numClasses)
	}
	return nil
}
