package tensor

import (
	"errors"
	"fmt"
)

// Sentinel errors. Test with errors.Is.
var (
	// ErrShape reports a tensor whose shape does not fit the operation.
	ErrShape = errors.New("shape mismatch")

	// ErrUnsupported reports a dtype or feature the backend does not implement.
	ErrUnsupported = errors.New("unsupported")
)

// ShapeError describes a shape violation detected by an operation.
//
// Layers and backends panic with *ShapeError values; model-level entry points
// recover them and return them as ordinary errors.
type ShapeError struct {
	Op     string // operation that rejected the input, e.g. "conv2d"
	Shape  Shape  // offending input shape
	Detail string // what was expected
}

// Error implements error.
func (e *ShapeError) Error() string {
	if e.Shape == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("%s: input %v: %s", e.Op, []int(e.Shape), e.Detail)
}

// Unwrap returns ErrShape.
func (e *ShapeError) Unwrap() error {
	return ErrShape
}

// NewShapeError builds a *ShapeError with a formatted detail message.
func NewShapeError(op string, shape Shape, format string, args ...any) *ShapeError {
	var s Shape
	if shape != nil {
		s = shape.Clone()
	}
	return &ShapeError{Op: op, Shape: s, Detail: fmt.Sprintf(format, args...)}
}

// UnsupportedDTypeError reports an operation invoked on a dtype it does not handle.
func UnsupportedDTypeError(op string, dt DataType) error {
	return fmt.Errorf("%s: dtype %s: %w", op, dt, ErrUnsupported)
}
