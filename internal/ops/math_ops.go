package ops

import (
	"github.com/born-ml/tailor/internal/tensor"
	"github.com/pkg/errors"
)

func (r *Registry) registerMathOps() {
	r.Register("add", binaryOp("add", tensor.Add))
	r.Register("sub", binaryOp("sub", tensor.Sub))
	r.Register("mul", binaryOp("mul", tensor.Mul))
	r.Register("matmul", binaryOp("matmul", tensor.MatMul))
}

func (r *Registry) registerActivations() {
	r.Register("relu", unaryOp("relu", tensor.ReLU))
	r.Register("sigmoid", unaryOp("sigmoid", tensor.Sigmoid))
	r.Register("tanh", unaryOp("tanh", tensor.Tanh))
	r.Register("softmax", unaryOp("softmax", tensor.Softmax))
}

func binaryOp(name string, fn func(a, b *tensor.Tensor) (*tensor.Tensor, error)) Func {
	return func(args []any) (any, error) {
		if len(args) != 2 {
			return nil, errors.Errorf("%s: expected 2 arguments, got %d", name, len(args))
		}
		a, err := tensorArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		b, err := tensorArg(name, args, 1)
		if err != nil {
			return nil, err
		}
		out, err := fn(a, b)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

func unaryOp(name string, fn func(t *tensor.Tensor) *tensor.Tensor) Func {
	return func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, errors.Errorf("%s: expected 1 argument, got %d", name, len(args))
		}
		t, err := tensorArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return fn(t), nil
	}
}

func tensorArg(op string, args []any, i int) (*tensor.Tensor, error) {
	if i >= len(args) {
		return nil, errors.Errorf("%s: missing argument %d", op, i)
	}
	t, ok := args[i].(*tensor.Tensor)
	if !ok || t == nil {
		return nil, errors.Errorf("%s: argument %d must be a tensor, got %T", op, i, args[i])
	}
	return t, nil
}

func intArg(op string, args []any, i int) (int, error) {
	if i >= len(args) {
		return 0, errors.Errorf("%s: missing argument %d", op, i)
	}
	switch v := args[i].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, errors.Errorf("%s: argument %d must be an int, got %T", op, i, args[i])
	}
}
