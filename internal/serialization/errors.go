package serialization

import (
	"errors"
	"fmt"
)

// Sentinels wrapped by ValidationError and the reader.
var (
	ErrChecksumMismatch   = errors.New("data checksum mismatch")
	ErrOffsetOverlap      = errors.New("overlapping tensor regions")
	ErrOutOfBounds        = errors.New("tensor region past end of data")
	ErrNegativeOffset     = errors.New("negative tensor offset or size")
	ErrSizeMismatch       = errors.New("tensor byte size disagrees with shape")
	ErrTooManyTensors     = errors.New("tensor count over limit")
	ErrTensorNameTooLong  = errors.New("tensor name over length limit")
	ErrInvalidTensorName  = errors.New("malformed tensor name")
	ErrHeaderTooLarge     = errors.New("header over size limit")
	ErrInvalidMagic       = errors.New("not a .born file")
	ErrUnsupportedVersion = errors.New("unknown .born format version")
	ErrTruncated          = errors.New("file shorter than its header declares")
)

// ValidationError ties a sentinel to the tensors it concerns.
type ValidationError struct {
	Err    error
	Tensor string
	Other  string // second tensor of an overlap
	Detail string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Other != "":
		return fmt.Sprintf("%v: %q vs %q: %s", e.Err, e.Tensor, e.Other, e.Detail)
	case e.Tensor != "":
		return fmt.Sprintf("%v: %q: %s", e.Err, e.Tensor, e.Detail)
	default:
		return fmt.Sprintf("%v: %s", e.Err, e.Detail)
	}
}

func (e *ValidationError) Unwrap() error { return e.Err }
