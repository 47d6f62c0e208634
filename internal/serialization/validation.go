package serialization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/convnets/internal/tensor"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB
	MaxTensorCount   = 100_000
	MaxTensorNameLen = 4096
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict checks names, dtypes, sizes and offsets (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names, dtypes and sizes only.
	ValidationNormal
	// ValidationNone skips validation. Use only with trusted input.
	ValidationNone
)

// ValidateTensorName rejects empty names, overlong names, path separators,
// empty path segments and NUL bytes.
func ValidateTensorName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Err: ErrInvalidTensorName, Detail: "empty name"}
	case len(name) > MaxTensorNameLen:
		return &ValidationError{
			Err:    ErrTensorNameTooLong,
			Tensor: name[:64] + "...",
			Detail: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	case strings.ContainsAny(name, "/\\"):
		return &ValidationError{Err: ErrInvalidTensorName, Tensor: name, Detail: "contains path separator"}
	case strings.Contains(name, "\x00"):
		return &ValidationError{Err: ErrInvalidTensorName, Tensor: name, Detail: "contains null byte"}
	case strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") || strings.Contains(name, ".."):
		return &ValidationError{Err: ErrInvalidTensorName, Tensor: name, Detail: "empty path segment"}
	}
	return nil
}

// ValidateTensorSize checks that a tensor's byte size matches its shape and dtype.
func ValidateTensorSize(meta TensorMeta) error {
	dtype, ok := tensor.ParseDataType(meta.DType)
	if !ok {
		return &ValidationError{Err: tensor.ErrUnsupported, Tensor: meta.Name, Detail: fmt.Sprintf("dtype %q", meta.DType)}
	}
	shape := tensor.Shape(meta.Shape)
	if err := shape.Validate(); err != nil {
		return &ValidationError{Err: ErrSizeMismatch, Tensor: meta.Name, Detail: err.Error()}
	}
	if want := int64(shape.NumElements() * dtype.Size()); meta.Size != want {
		return &ValidationError{
			Err:    ErrSizeMismatch,
			Tensor: meta.Name,
			Detail: fmt.Sprintf("size %d, shape %v of %s needs %d", meta.Size, meta.Shape, meta.DType, want),
		}
	}
	return nil
}

// ValidateTensorOffsets checks for negative, overlapping and out-of-bounds regions.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Err:    ErrNegativeOffset,
				Tensor: t.Name,
				Detail: fmt.Sprintf("offset=%d, size=%d", t.Offset, t.Size),
			}
		}
		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Err:    ErrOutOfBounds,
				Tensor: t.Name,
				Detail: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Err:    ErrOffsetOverlap,
					Tensor: t.Name,
					Other:  next.Name,
					Detail: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}
	return nil
}

// ValidateHeader validates the tensor table of h against a data section of dataSize bytes.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Err:    ErrTooManyTensors,
			Detail: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}

	seen := make(map[string]bool, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if seen[t.Name] {
			return &ValidationError{Err: ErrInvalidTensorName, Tensor: t.Name, Detail: "duplicate name"}
		}
		seen[t.Name] = true
		if err := ValidateTensorSize(t); err != nil {
			return err
		}
	}

	if level == ValidationStrict {
		return ValidateTensorOffsets(h.Tensors, dataSize)
	}
	return nil
}
