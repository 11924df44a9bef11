package dotthz

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataset(t *testing.T) {
	d := NewDataset([]float32{1, 2, 3, 4}, 2, 2)
	assert.Equal(t, []int{2, 2}, d.Shape)
	assert.Equal(t, Float32, d.DType())
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, 2, d.Rank())
	require.NoError(t, d.Validate())

	d = NewDataset([]int16{5, 6, 7})
	assert.Equal(t, []int{3}, d.Shape)

	d = NewDataset[uint8](nil)
	assert.Equal(t, []int{0}, d.Shape)
	assert.Equal(t, Uint8, d.DType())
	require.NoError(t, d.Validate())

	s := Scalar(int64(42))
	assert.Empty(t, s.Shape)
	assert.Equal(t, 0, s.Rank())
	require.NoError(t, s.Validate())
}

func TestValues(t *testing.T) {
	d := NewDataset([]uint32{1, 2})
	v, ok := Values[uint32](d)
	require.True(t, ok)
	assert.Equal(t, []uint32{1, 2}, v)

	_, ok = Values[int32](d)
	assert.False(t, ok)
}

func TestDTypes(t *testing.T) {
	tests := []struct {
		data any
		want DType
		name string
		size int
	}{
		{[]int8{}, Int8, "int8", 1},
		{[]int16{}, Int16, "int16", 2},
		{[]int32{}, Int32, "int32", 4},
		{[]int64{}, Int64, "int64", 8},
		{[]uint8{}, Uint8, "uint8", 1},
		{[]uint16{}, Uint16, "uint16", 2},
		{[]uint32{}, Uint32, "uint32", 4},
		{[]uint64{}, Uint64, "uint64", 8},
		{[]float32{}, Float32, "float32", 4},
		{[]float64{}, Float64, "float64", 8},
		{[]int{}, Invalid, "invalid", 0},
		{[]string{}, Invalid, "invalid", 0},
		{3.5, Invalid, "invalid", 0},
		{nil, Invalid, "invalid", 0},
	}
	for _, tt := range tests {
		d := Dataset{Shape: []int{0}, Data: tt.data}
		assert.Equal(t, tt.want, d.DType(), "%T", tt.data)
		assert.Equal(t, tt.name, d.DType().String())
		assert.Equal(t, tt.size, d.DType().Size())
	}
	assert.Equal(t, "DType(200)", DType(200).String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		d    Dataset
		kind error
	}{
		{"unsupported", Dataset{Shape: []int{1}, Data: []string{"x"}}, ErrType},
		{"nil data", Dataset{Shape: []int{0}}, ErrType},
		{"too few", Dataset{Shape: []int{2, 2}, Data: []float64{1, 2, 3}}, ErrFormat},
		{"too many", Dataset{Shape: []int{}, Data: []float64{1, 2}}, ErrFormat},
		{"negative", Dataset{Shape: []int{-1, -2}, Data: []float64{1, 2}}, ErrFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.d.Validate(), tt.kind)
		})
	}
}

func TestDatasetEqual(t *testing.T) {
	nan1 := math.Float64frombits(0x7ff8000000000001)
	nan2 := math.Float64frombits(0x7ff8000000000002)
	negZero := math.Copysign(0, -1)

	a := NewDataset([]float64{nan1, 1})
	assert.True(t, a.Equal(NewDataset([]float64{nan1, 1})))
	assert.False(t, a.Equal(NewDataset([]float64{nan2, 1})))
	assert.False(t, NewDataset([]float64{0}).Equal(NewDataset([]float64{negZero})))
	assert.False(t, NewDataset([]float32{1}).Equal(NewDataset([]float64{1})))
	assert.False(t, NewDataset([]int8{1, 2}, 2).Equal(NewDataset([]int8{1, 2}, 1, 2)))
	assert.False(t, NewDataset([]int8{1, 2}, 2).Equal(NewDataset([]int8{1, 3}, 2)))
	assert.True(t, NewDataset([]uint64{}).Equal(Dataset{Shape: []int{0}, Data: []uint64(nil)}))
	assert.True(t, Scalar(float32(2)).Equal(Dataset{Shape: nil, Data: []float32{2}}))
}

func TestDatasetClone(t *testing.T) {
	d := NewDataset([]int32{1, 2, 3, 4}, 2, 2)
	c := d.Clone()
	require.True(t, d.Equal(c))

	c.Data.([]int32)[0] = 99
	c.Shape[0] = 4
	assert.Equal(t, int32(1), d.Data.([]int32)[0])
	assert.Equal(t, 2, d.Shape[0])
}

func TestDatasetString(t *testing.T) {
	assert.Equal(t, "float32[2 2]", NewDataset([]float32{1, 2, 3, 4}, 2, 2).String())
}
