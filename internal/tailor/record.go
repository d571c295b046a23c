package tailor

import (
	"encoding/json"
	"fmt"

	"github.com/born-ml/tailor/internal/graph"
	"github.com/born-ml/tailor/internal/tensor"
)

// Unknown is the textual dtype and shape of a record without tensor metadata.
const Unknown = "unknown"

// Record summarizes one graph node produced by a named module.
type Record struct {
	Name      string
	NumParams int
	Trainable bool
	Tensor    graph.TensorInfo
}

// DType returns the element type name, or Unknown.
func (r Record) DType() string {
	info, ok := r.Tensor.(graph.Resolved)
	if !ok {
		return Unknown
	}
	return tensor.DTypeName(info.DType)
}

// Shape returns the output shape and whether it is known.
func (r Record) Shape() (tensor.Shape, bool) {
	info, ok := r.Tensor.(graph.Resolved)
	if !ok {
		return nil, false
	}
	return info.Shape, true
}

// ShapeString returns the shape as "[1 2]", or Unknown.
func (r Record) ShapeString() string {
	shape, ok := r.Shape()
	if !ok {
		return Unknown
	}
	return shape.String()
}

// String implements fmt.Stringer.
func (r Record) String() string {
	return fmt.Sprintf("%s params=%d trainable=%t dtype=%s shape=%s",
		r.Name, r.NumParams, r.Trainable, r.DType(), r.ShapeString())
}

type recordJSON struct {
	Name      string          `json:"name"`
	NumParams int             `json:"num_params"`
	Trainable bool            `json:"trainable"`
	DType     string          `json:"dtype"`
	Shape     json.RawMessage `json:"shape"`
}

// MarshalJSON encodes the record as
// {"name","num_params","trainable","dtype","shape"}. An unresolved record has
// the string "unknown" for both dtype and shape.
func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		Name:      r.Name,
		NumParams: r.NumParams,
		Trainable: r.Trainable,
		DType:     r.DType(),
	}
	var (
		shape []byte
		err   error
	)
	if s, ok := r.Shape(); ok {
		shape, err = json.Marshal([]int(s))
	} else {
		shape, err = json.Marshal(Unknown)
	}
	if err != nil {
		return nil, err
	}
	out.Shape = shape
	return json.Marshal(out)
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Name = in.Name
	r.NumParams = in.NumParams
	r.Trainable = in.Trainable
	r.Tensor = graph.Unresolved{}

	// "unknown" fails to decode as a shape and leaves the record unresolved.
	var shape []int
	if json.Unmarshal(in.Shape, &shape) != nil {
		return nil
	}
	if dt, ok := tensor.ParseDType(in.DType); ok {
		r.Tensor = graph.Resolved{Shape: tensor.Shape(shape), DType: dt}
	}
	return nil
}
