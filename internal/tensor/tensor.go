package tensor

import (
	"fmt"
)

// Tensor is a dense, row-major CPU tensor.
//
// Example:
//
//	t := tensor.Zeros(tensor.Shape{3, 4}, tensor.Float32)
//	t.Shape() // [3 4]
type Tensor struct {
	shape Shape
	dtype DType
	data  []float32
}

// New allocates a zero-filled tensor of the given shape and element type.
func New(shape Shape, dtype DType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Tensor{
		shape: shape.Clone(),
		dtype: dtype,
		data:  make([]float32, shape.NumElements()),
	}, nil
}

// FromSlice creates a Float32 tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t, err := New(shape, Float32)
	if err != nil {
		return nil, err
	}
	copy(t.data, data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// DType returns the tensor's element type.
func (t *Tensor) DType() DType {
	return t.dtype
}

// Data returns the underlying storage. Mutating it mutates the tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Strides returns the row-major strides of the tensor.
func (t *Tensor) Strides() []int {
	return t.shape.ComputeStrides()
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: t.shape.Clone(), dtype: t.dtype, data: data}
}

// Reshape returns a tensor sharing t's data with a new shape.
// One dimension may be -1, in which case it is inferred.
func (t *Tensor) Reshape(dims ...int) (*Tensor, error) {
	shape := make(Shape, len(dims))
	copy(shape, dims)

	infer := -1
	known := 1
	for i, d := range shape {
		switch {
		case d == -1 && infer >= 0:
			return nil, fmt.Errorf("reshape: more than one inferred dimension in %v", dims)
		case d == -1:
			infer = i
		case d <= 0:
			return nil, fmt.Errorf("reshape: invalid dimension %d in %v", d, dims)
		default:
			known *= d
		}
	}
	if infer >= 0 {
		if known == 0 || len(t.data)%known != 0 {
			return nil, fmt.Errorf("reshape: cannot infer dimension of %v for %d elements", dims, len(t.data))
		}
		shape[infer] = len(t.data) / known
	}
	if shape.NumElements() != len(t.data) {
		return nil, fmt.Errorf("reshape: shape %v has %d elements, tensor has %d", shape, shape.NumElements(), len(t.data))
	}
	return &Tensor{shape: shape, dtype: t.dtype, data: t.data}, nil
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(%s%v)", DTypeName(t.dtype), t.shape)
}
