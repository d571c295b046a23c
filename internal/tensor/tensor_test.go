package tensor

import (
	"math/rand"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	s := Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, []int{12, 4, 1}, s.ComputeStrides())
	assert.Equal(t, "[2 3 4]", s.String())
	assert.True(t, s.Equal(s.Clone()))
	assert.Equal(t, 1, Shape{}.NumElements())

	require.Error(t, Shape{2, 0}.Validate())
	require.Error(t, Shape{-1}.Validate())
	require.NoError(t, s.Validate())
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{Shape{5}, Shape{2, 5}, Shape{2, 5}, true, false},
		{Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}
	for _, tt := range tests {
		got, broadcast, err := BroadcastShapes(tt.a, tt.b)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.broadcast, broadcast)
	}
}

func TestDTypeName(t *testing.T) {
	for _, dt := range []DType{Float32, Float64, Float16, BFloat16, Int32, Int64, Uint8, Bool} {
		back, ok := ParseDType(DTypeName(dt))
		assert.True(t, ok)
		assert.Equal(t, dt, back)
	}
	assert.Equal(t, "float32", DTypeName(Float32))
	assert.Equal(t, "bfloat16", DTypeName(BFloat16))
	assert.Equal(t, "uint8", DTypeName(Uint8))
	assert.Equal(t, "unknown", DTypeName(dtypes.Complex64))

	_, ok := ParseDType("complex256")
	assert.False(t, ok)
	assert.True(t, IsFloat(Float16))
	assert.False(t, IsFloat(Int64))
}

func TestReshape(t *testing.T) {
	x := Zeros(Shape{2, 3, 4}, Float32)

	y, err := x.Reshape(6, -1)
	require.NoError(t, err)
	assert.Equal(t, Shape{6, 4}, y.Shape())

	_, err = x.Reshape(5, -1)
	assert.Error(t, err)
	_, err = x.Reshape(-1, -1)
	assert.Error(t, err)
}

func TestMatMulAndAdd(t *testing.T) {
	a, err := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2})
	require.NoError(t, err)
	b, err := FromSlice([]float32{5, 6, 7, 8}, Shape{2, 2})
	require.NoError(t, err)

	c, err := MatMul(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float32{19, 22, 43, 50}, c.Data())

	bias, err := FromSlice([]float32{1, -1}, Shape{2})
	require.NoError(t, err)
	d, err := Add(c, bias)
	require.NoError(t, err)
	assert.Equal(t, []float32{20, 21, 44, 49}, d.Data())

	_, err = MatMul(a, Zeros(Shape{3, 2}, Float32))
	assert.Error(t, err)
}

func TestTranspose(t *testing.T) {
	a, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	at, err := Transpose(a)
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2}, at.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, at.Data())
}

func TestConv2DShape(t *testing.T) {
	x := Ones(Shape{1, 1, 4, 4}, Float32)
	k := Ones(Shape{2, 1, 3, 3}, Float32)

	y, err := Conv2D(x, k, nil, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, Shape{1, 2, 2, 2}, y.Shape())
	assert.InDelta(t, 9.0, y.Data()[0], 1e-6)

	y, err = Conv2D(x, k, nil, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, Shape{1, 2, 4, 4}, y.Shape())
	assert.InDelta(t, 4.0, y.Data()[0], 1e-6) // corner sees a 2x2 window

	_, err = Conv2D(x, Ones(Shape{2, 3, 3, 3}, Float32), nil, 1, 0)
	assert.Error(t, err)
}

func TestMaxPool2D(t *testing.T) {
	data := make([]float32, 16)
	for i := range data {
		data[i] = float32(i + 1)
	}
	x, err := FromSlice(data, Shape{1, 1, 4, 4})
	require.NoError(t, err)

	y, err := MaxPool2D(x, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, Shape{1, 1, 2, 2}, y.Shape())
	assert.Equal(t, []float32{6, 8, 14, 16}, y.Data())
}

func TestLayerNorm(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 4}, Shape{1, 4})
	require.NoError(t, err)
	y, err := LayerNorm(x, Ones(Shape{4}, Float32), Zeros(Shape{4}, Float32), 1e-5)
	require.NoError(t, err)

	var sum float32
	for _, v := range y.Data() {
		sum += v
	}
	assert.InDelta(t, 0, sum, 1e-4)

	_, err = LayerNorm(x, Ones(Shape{3}, Float32), Zeros(Shape{4}, Float32), 1e-5)
	assert.Error(t, err)
}

func TestCastFloat16(t *testing.T) {
	x, err := FromSlice([]float32{1.0001, 65504, 0.1}, Shape{3})
	require.NoError(t, err)

	h, err := Cast(x, Float16)
	require.NoError(t, err)
	assert.Equal(t, Float16, h.DType())
	assert.Equal(t, float32(1.0), h.Data()[0]) // below half precision
	assert.Equal(t, float32(65504), h.Data()[1])

	sum, err := Add(h, x)
	require.NoError(t, err)
	assert.Equal(t, Float32, sum.DType())
}

func TestRandnSeeded(t *testing.T) {
	a, err := Randn(Shape{2, 3}, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := Randn(Shape{2, 3}, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, a.Data(), b.Data())

	_, err = Randn(Shape{0}, nil)
	assert.Error(t, err)
}

func TestSoftmax(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 1000, 1000, 1000}, Shape{2, 3})
	require.NoError(t, err)

	y := Softmax(x)
	assert.Equal(t, Shape{2, 3}, y.Shape())
	for _, row := range [][]float32{y.Data()[:3], y.Data()[3:]} {
		var sum float32
		for _, v := range row {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
	assert.InDelta(t, 1.0/3, y.Data()[4], 1e-6, "large logits stay finite")
	assert.Greater(t, y.Data()[2], y.Data()[1])
}
