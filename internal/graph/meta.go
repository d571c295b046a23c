package graph

import (
	"github.com/born-ml/tailor/internal/tensor"
)

// Well-known Node.Meta keys.
const (
	// TensorMetaKey holds the tensor metadata written by shape propagation.
	TensorMetaKey = "tensor_meta"
	// ModuleNameKey holds the dotted name of the module that produced a node.
	ModuleNameKey = "module_name"
)

// TensorMeta describes the tensor a node produced.
type TensorMeta struct {
	Shape   tensor.Shape
	DType   tensor.DType
	Strides []int
}

// NewTensorMeta captures the metadata of t.
func NewTensorMeta(t *tensor.Tensor) TensorMeta {
	return TensorMeta{
		Shape:   t.Shape().Clone(),
		DType:   t.DType(),
		Strides: t.Strides(),
	}
}

// AsMap returns the generic-mapping representation of m.
func (m TensorMeta) AsMap() map[string]any {
	return map[string]any{
		"shape":   m.Shape.Clone(),
		"dtype":   m.DType,
		"strides": append([]int(nil), m.Strides...),
	}
}

// TensorInfo is the resolved view of a node's tensor metadata: either
// Resolved or Unresolved.
type TensorInfo interface {
	isTensorInfo()
}

// Resolved carries the shape and element type of a node's output tensor.
type Resolved struct {
	Shape tensor.Shape
	DType tensor.DType
}

// Unresolved marks a node without recognizable tensor metadata.
type Unresolved struct{}

func (Resolved) isTensorInfo()   {}
func (Unresolved) isTensorInfo() {}

// ResolveTensorInfo reads the tensor metadata attached to n.
//
// Two representations are recognized: the TensorMeta record (by value or
// pointer) and a generic map with "shape" and "dtype" keys. Anything else,
// including a missing entry, resolves to Unresolved.
func ResolveTensorInfo(n *Node) TensorInfo {
	if n == nil || n.Meta == nil {
		return Unresolved{}
	}
	switch meta := n.Meta[TensorMetaKey].(type) {
	case TensorMeta:
		return Resolved{Shape: meta.Shape.Clone(), DType: meta.DType}
	case *TensorMeta:
		if meta == nil {
			return Unresolved{}
		}
		return Resolved{Shape: meta.Shape.Clone(), DType: meta.DType}
	case map[string]any:
		return resolveMap(meta)
	default:
		return Unresolved{}
	}
}

func resolveMap(meta map[string]any) TensorInfo {
	var info Resolved

	switch dt := meta["dtype"].(type) {
	case tensor.DType:
		info.DType = dt
	case string:
		parsed, ok := tensor.ParseDType(dt)
		if !ok {
			return Unresolved{}
		}
		info.DType = parsed
	default:
		return Unresolved{}
	}

	switch s := meta["shape"].(type) {
	case tensor.Shape:
		info.Shape = s.Clone()
	case []int:
		info.Shape = tensor.Shape(s).Clone()
	default:
		return Unresolved{}
	}
	return info
}
