package tensor

import (
	"fmt"
	"math"

	"github.com/x448/float16"
)

// MatMul multiplies a [m, k] matrix by a [k, n] matrix.
func MatMul(a, b *Tensor) (*Tensor, error) {
	as, bs := a.shape, b.shape
	if len(as) != 2 || len(bs) != 2 {
		return nil, fmt.Errorf("matmul: expected 2D operands, got %v and %v", as, bs)
	}
	m, k, n := as[0], as[1], bs[1]
	if bs[0] != k {
		return nil, fmt.Errorf("matmul: inner dimensions differ: %v @ %v", as, bs)
	}

	out := Zeros(Shape{m, n}, promote(a.dtype, b.dtype))
	for i := 0; i < m; i++ {
		for p := 0; p < k; p++ {
			av := a.data[i*k+p]
			if av == 0 {
				continue
			}
			row := b.data[p*n : p*n+n]
			dst := out.data[i*n : i*n+n]
			for j, bv := range row {
				dst[j] += av * bv
			}
		}
	}
	return out, nil
}

// Transpose swaps the two dimensions of a 2D tensor.
func Transpose(t *Tensor) (*Tensor, error) {
	if len(t.shape) != 2 {
		return nil, fmt.Errorf("transpose: expected 2D tensor, got %v", t.shape)
	}
	rows, cols := t.shape[0], t.shape[1]
	out := Zeros(Shape{cols, rows}, t.dtype)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.data[j*rows+i] = t.data[i*cols+j]
		}
	}
	return out, nil
}

// Add returns a + b with NumPy broadcasting.
func Add(a, b *Tensor) (*Tensor, error) {
	return binary("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub returns a - b with NumPy broadcasting.
func Sub(a, b *Tensor) (*Tensor, error) {
	return binary("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul returns a * b with NumPy broadcasting.
func Mul(a, b *Tensor) (*Tensor, error) {
	return binary("mul", a, b, func(x, y float32) float32 { return x * y })
}

func binary(op string, a, b *Tensor, fn func(x, y float32) float32) (*Tensor, error) {
	shape, needsBroadcast, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := Zeros(shape, promote(a.dtype, b.dtype))

	if !needsBroadcast {
		for i := range out.data {
			out.data[i] = fn(a.data[i], b.data[i])
		}
		return out, nil
	}

	outStrides := shape.ComputeStrides()
	aStrides, bStrides := a.shape.ComputeStrides(), b.shape.ComputeStrides()
	for i := range out.data {
		ai := broadcastIndex(i, shape, outStrides, a.shape, aStrides)
		bi := broadcastIndex(i, shape, outStrides, b.shape, bStrides)
		out.data[i] = fn(a.data[ai], b.data[bi])
	}
	return out, nil
}

// Map applies fn element-wise, keeping shape and element type.
func Map(t *Tensor, fn func(float32) float32) *Tensor {
	out := Zeros(t.shape, t.dtype)
	for i, v := range t.data {
		out.data[i] = fn(v)
	}
	return out
}

// Softmax normalizes the last dimension as exp(x - LogSumExp(x)).
func Softmax(t *Tensor) *Tensor {
	out := t.Clone()
	n := 1
	if len(t.shape) > 0 {
		n = t.shape[len(t.shape)-1]
	}
	for start := 0; start < len(out.data); start += n {
		row := out.data[start : start+n]
		maxVal := row[0]
		for _, v := range row[1:] {
			maxVal = max(maxVal, v)
		}
		var sum float64
		for i, v := range row {
			e := math.Exp(float64(v - maxVal))
			row[i] = float32(e)
			sum += e
		}
		for i := range row {
			row[i] = float32(float64(row[i]) / sum)
		}
	}
	return out
}

// ReLU computes max(0, x) element-wise.
func ReLU(t *Tensor) *Tensor {
	return Map(t, func(x float32) float32 {
		if x > 0 {
			return x
		}
		return 0
	})
}

// Sigmoid computes 1 / (1 + exp(-x)) element-wise.
func Sigmoid(t *Tensor) *Tensor {
	return Map(t, func(x float32) float32 {
		return float32(1.0 / (1.0 + math.Exp(-float64(x))))
	})
}

// Tanh computes tanh(x) element-wise.
func Tanh(t *Tensor) *Tensor {
	return Map(t, func(x float32) float32 {
		return float32(math.Tanh(float64(x)))
	})
}

// Flatten collapses every dimension from startDim onwards into one.
func Flatten(t *Tensor, startDim int) (*Tensor, error) {
	if startDim < 0 {
		startDim += len(t.shape)
	}
	if startDim < 0 || startDim >= len(t.shape) {
		return nil, fmt.Errorf("flatten: start dimension %d out of range for %v", startDim, t.shape)
	}
	dims := make([]int, 0, startDim+1)
	dims = append(dims, t.shape[:startDim]...)
	dims = append(dims, t.shape[startDim:].NumElements())
	return t.Reshape(dims...)
}

// Cast converts t to dtype. Casting to Float16 rounds every value through
// IEEE 754 binary16, so downstream kernels observe half precision.
func Cast(t *Tensor, dtype DType) (*Tensor, error) {
	if _, ok := ParseDType(DTypeName(dtype)); !ok {
		return nil, fmt.Errorf("cast: unsupported dtype %v", dtype)
	}
	out := t.Clone()
	out.dtype = dtype
	switch dtype {
	case Float16:
		for i, v := range out.data {
			out.data[i] = float16.Fromfloat32(v).Float32()
		}
	case Int32, Int64, Uint8:
		for i, v := range out.data {
			out.data[i] = float32(math.Trunc(float64(v)))
		}
	case Bool:
		for i, v := range out.data {
			if v != 0 {
				out.data[i] = 1
			}
		}
	}
	return out, nil
}

// promote picks the result type of a binary op: the wider float wins.
func promote(a, b DType) DType {
	if a == b {
		return a
	}
	rank := func(dt DType) int {
		switch dt {
		case Float64:
			return 4
		case Float32:
			return 3
		case Float16, BFloat16:
			return 2
		case Int64, Int32:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
