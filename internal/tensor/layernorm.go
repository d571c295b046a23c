package tensor

import (
	"fmt"
	"math"
)

// LayerNorm normalizes x over its last dimension and applies gamma and beta.
//
// Formula: Y = gamma * (X - mean(X)) / sqrt(var(X) + eps) + beta
//
// gamma and beta must have shape [d] where d is the last dimension of x.
func LayerNorm(x, gamma, beta *Tensor, eps float32) (*Tensor, error) {
	if len(x.shape) == 0 {
		return nil, fmt.Errorf("layernorm: scalar input")
	}
	d := x.shape[len(x.shape)-1]
	for name, p := range map[string]*Tensor{"gamma": gamma, "beta": beta} {
		if len(p.shape) != 1 || p.shape[0] != d {
			return nil, fmt.Errorf("layernorm: %s shape %v does not match last dimension %d of %v", name, p.shape, d, x.shape)
		}
	}

	out := Zeros(x.shape, x.dtype)
	rows := len(x.data) / d
	for r := 0; r < rows; r++ {
		row := x.data[r*d : (r+1)*d]

		var mean float64
		for _, v := range row {
			mean += float64(v)
		}
		mean /= float64(d)

		var variance float64
		for _, v := range row {
			diff := float64(v) - mean
			variance += diff * diff
		}
		variance /= float64(d)

		inv := 1.0 / math.Sqrt(variance+float64(eps))
		dst := out.data[r*d : (r+1)*d]
		for i, v := range row {
			dst[i] = float32((float64(v)-mean)*inv)*gamma.data[i] + beta.data[i]
		}
	}
	return out, nil
}
