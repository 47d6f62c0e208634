package tensor

import "fmt"

// Tensor pairs a RawTensor with the backend that computes on it. T fixes the
// element type at compile time; layers use Tensor[float32, B] throughout.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{1, 3, 224, 224}, backend)
//	y := x.ReLU()
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
}

// New wraps raw without copying it.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return &Tensor[T, B]{raw: raw, backend: b}
}

// FromSlice copies data into a new tensor of the given shape.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if want := shape.NumElements(); want != len(data) {
		return nil, fmt.Errorf("fromslice: shape %v holds %d elements, got %d", []int(shape), want, len(data))
	}

	var zero T
	raw, err := NewRaw(shape, inferDataType(zero), b.Device())
	if err != nil {
		return nil, err
	}
	t := New[T, B](raw, b)
	copy(t.Data(), data)
	return t, nil
}

// Shape returns the dimensions.
func (t *Tensor[T, B]) Shape() Shape { return t.raw.Shape() }

// DType returns the runtime element type.
func (t *Tensor[T, B]) DType() DataType { return t.raw.DType() }

// Device returns where the data lives.
func (t *Tensor[T, B]) Device() Device { return t.raw.Device() }

// NumElements returns the product of the dimensions.
func (t *Tensor[T, B]) NumElements() int { return t.raw.NumElements() }

// Raw returns the underlying RawTensor for backend calls.
func (t *Tensor[T, B]) Raw() *RawTensor { return t.raw }

// Backend returns the backend the tensor computes on.
func (t *Tensor[T, B]) Backend() B { return t.backend }

// Data returns the elements as a []T sharing the tensor's memory.
func (t *Tensor[T, B]) Data() []T {
	switch data := any(t.raw.typedData()).(type) {
	case []T:
		return data
	default:
		panic(UnsupportedDTypeError("data", t.raw.DType()))
	}
}

// At returns the element at the given indices.
//
// Example:
//
//	x := tensor.Zeros[float32](Shape{1, 3, 4, 4}, backend)
//	v := x.At(0, 2, 1, 1) // batch 0, channel 2, row 1, column 1
func (t *Tensor[T, B]) At(indices ...int) T {
	return t.Data()[t.flatIndex(indices)]
}

// Set stores value at the given indices.
func (t *Tensor[T, B]) Set(value T, indices ...int) {
	t.Data()[t.flatIndex(indices)] = value
}

// flatIndex maps indices to a row-major position, panicking with a
// ShapeError when they do not address an element.
func (t *Tensor[T, B]) flatIndex(indices []int) int {
	shape := t.Shape()
	if len(indices) != len(shape) {
		panic(NewShapeError("index", shape, "expected %d indices, got %d", len(shape), len(indices)))
	}
	pos := 0
	for i, idx := range indices {
		if idx < 0 || idx >= shape[i] {
			panic(NewShapeError("index", shape, "index %d out of range for dimension %d", idx, i))
		}
		pos = pos*shape[i] + idx
	}
	return pos
}

// String returns e.g. "Tensor[float32][1 3 224 224] on CPU".
func (t *Tensor[T, B]) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", t.raw.DType(), t.raw.Shape(), t.raw.Device())
}

// Clone returns a deep copy on the same backend.
func (t *Tensor[T, B]) Clone() *Tensor[T, B] {
	return New[T, B](t.raw.Clone(), t.backend)
}
