package tailor

import (
	"testing"

	"github.com/born-ml/tailor/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
)

func TestInputFuncs(t *testing.T) {
	shape := tensor.Shape{2, 3}

	z := must.M1(ZeroInput(shape))
	assert.Equal(t, shape, z.Shape())
	assert.Equal(t, make([]float32, 6), z.Data())

	seeded := SeededInput(7)
	a := must.M1(seeded(shape))
	b := must.M1(seeded(shape))
	assert.Equal(t, a.Data(), b.Data())

	r := must.M1(RandomInput(shape))
	assert.Equal(t, tensor.Float32, r.DType())

	_, err := ZeroInput(tensor.Shape{0})
	assert.Error(t, err)
}
