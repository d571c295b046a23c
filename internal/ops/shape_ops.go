package ops

import (
	"github.com/born-ml/tailor/internal/tensor"
	"github.com/pkg/errors"
)

func (r *Registry) registerShapeOps() {
	r.Register("flatten", flattenOp)
	r.Register("reshape", reshapeOp)
	r.Register("cast", castOp)
	r.Register("size", sizeOp)
}

// flatten(x, startDim)
func flattenOp(args []any) (any, error) {
	x, err := tensorArg("flatten", args, 0)
	if err != nil {
		return nil, err
	}
	startDim := 1
	if len(args) > 1 {
		if startDim, err = intArg("flatten", args, 1); err != nil {
			return nil, err
		}
	}
	out, err := tensor.Flatten(x, startDim)
	if err != nil {
		return nil, errors.Wrap(err, "flatten")
	}
	return out, nil
}

// reshape(x, dims) where dims is a []int, a tensor.Shape, or the result of size.
func reshapeOp(args []any) (any, error) {
	x, err := tensorArg("reshape", args, 0)
	if err != nil {
		return nil, err
	}
	if len(args) != 2 {
		return nil, errors.Errorf("reshape: expected 2 arguments, got %d", len(args))
	}
	var dims []int
	switch v := args[1].(type) {
	case []int:
		dims = v
	case tensor.Shape:
		dims = v
	default:
		return nil, errors.Errorf("reshape: dims must be []int or a shape, got %T", args[1])
	}
	out, err := x.Reshape(dims...)
	if err != nil {
		return nil, errors.Wrap(err, "reshape")
	}
	return out, nil
}

// cast(x, dtype) where dtype is a tensor.DType or its name.
func castOp(args []any) (any, error) {
	x, err := tensorArg("cast", args, 0)
	if err != nil {
		return nil, err
	}
	if len(args) != 2 {
		return nil, errors.Errorf("cast: expected 2 arguments, got %d", len(args))
	}
	var dtype tensor.DType
	switch v := args[1].(type) {
	case tensor.DType:
		dtype = v
	case string:
		parsed, ok := tensor.ParseDType(v)
		if !ok {
			return nil, errors.Errorf("cast: unknown dtype %q", v)
		}
		dtype = parsed
	default:
		return nil, errors.Errorf("cast: dtype must be a DType or name, got %T", args[1])
	}
	out, err := tensor.Cast(x, dtype)
	if err != nil {
		return nil, errors.Wrap(err, "cast")
	}
	return out, nil
}

// size(x) returns the shape of x. It is not a tensor, so nodes calling it
// carry no tensor metadata after propagation.
func sizeOp(args []any) (any, error) {
	x, err := tensorArg("size", args, 0)
	if err != nil {
		return nil, err
	}
	return x.Shape().Clone(), nil
}
