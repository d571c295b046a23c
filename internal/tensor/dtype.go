// Package tensor provides the dense CPU tensors that shape propagation runs on.
//
// Values are always held as float32; DType records the logical element type a
// tensor carries through a computation, which is what introspection reports.
package tensor

import (
	"slices"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
)

// DType is the element type of a tensor.
type DType = dtypes.DType

// Supported element types.
const (
	Float32  = dtypes.F32
	Float64  = dtypes.F64
	Float16  = dtypes.F16
	BFloat16 = dtypes.BFloat16
	Int32    = dtypes.S32
	Int64    = dtypes.S64
	Uint8    = dtypes.U8
	Bool     = dtypes.Bool
)

// supported lists the element types tensors can carry.
var supported = []DType{Float32, Float64, Float16, BFloat16, Int32, Int64, Uint8, Bool}

// DTypeName returns the lowercase name used in summaries and diagrams.
func DTypeName(dt DType) string {
	if !slices.Contains(supported, dt) {
		return "unknown"
	}
	return strings.ToLower(dt.String())
}

// ParseDType is the inverse of DTypeName. It reports false for names it does not know.
func ParseDType(name string) (DType, bool) {
	for _, dt := range supported {
		if DTypeName(dt) == name {
			return dt, true
		}
	}
	return dtypes.InvalidDType, false
}

// IsFloat reports whether dt is a floating point type.
func IsFloat(dt DType) bool {
	return dt.IsFloat()
}
