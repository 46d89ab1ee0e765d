package gcode

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointprint/aim"
)

var slicerHeader = []string{
	"; generated by PrusaSlicer\n",
	"; EXECUTABLE_BLOCK_START\n",
	"EXCLUDE_OBJECT_DEFINE NAME=cube_1 CENTER=100,100 POLYGON=[[90,90],[110,90],[110,110],[90,110]]\n",
	"\n",
	"; object two\n",
	"EXCLUDE_OBJECT_DEFINE NAME=cube_2 CENTER=250.5,40\n",
	"EXCLUDE_OBJECT_DEFINE NAME=broken CENTER=oops\n",
	"EXCLUDE_OBJECT_DEFINE NAME=cube_1 CENTER=110,120\n",
	"M190 S60\n",
	"EXCLUDE_OBJECT_DEFINE NAME=late CENTER=1,1\n",
	"; EXECUTABLE_BLOCK_END\n",
}

func TestExtract(t *testing.T) {
	table := Extract(slicerHeader)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"cube_1", "cube_2"}, table.Names())

	center, ok := table.Center("cube_1")
	require.True(t, ok)
	assert.Equal(t, aim.Point{X: 110, Y: 120}, center, "last declaration wins")

	center, ok = table.Center("cube_2")
	require.True(t, ok)
	assert.Equal(t, aim.Point{X: 250.5, Y: 40}, center)

	_, ok = table.Center("broken")
	assert.False(t, ok)
	_, ok = table.Center("late")
	assert.False(t, ok, "declarations after the block ends are ignored")
}

func TestExtractIdempotent(t *testing.T) {
	first := Extract(slicerHeader)
	second := Extract(slicerHeader)

	assert.Empty(t, cmp.Diff(first.Names(), second.Names()))
	for _, name := range first.Names() {
		a, _ := first.Center(name)
		b, _ := second.Center(name)
		assert.Equal(t, a, b)
	}
}

func TestExtractWithoutMarker(t *testing.T) {
	table := Extract([]string{
		"EXCLUDE_OBJECT_DEFINE NAME=a CENTER=1,1\n",
		"G1 X1 Y1\n",
	})
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Names())
}

func TestExtractRepeatedMarker(t *testing.T) {
	table := Extract([]string{
		"; EXECUTABLE_BLOCK_START\n",
		"; EXECUTABLE_BLOCK_START\n",
		"EXCLUDE_OBJECT_DEFINE NAME=a CENTER=1,2\n",
	})
	require.Equal(t, 1, table.Len())
}

func TestExtractEmptyBlock(t *testing.T) {
	table := Extract([]string{
		"; EXECUTABLE_BLOCK_START\n",
		"G28\n",
		"EXCLUDE_OBJECT_DEFINE NAME=a CENTER=1,2\n",
	})
	assert.Equal(t, 0, table.Len())
}

func TestNilObjectTable(t *testing.T) {
	var table *ObjectTable
	assert.Equal(t, 0, table.Len())
	assert.Nil(t, table.Names())
	_, ok := table.Center("a")
	assert.False(t, ok)
}

func TestNewObjectTable(t *testing.T) {
	table := NewObjectTable(map[string]aim.Point{"a": {X: 1, Y: 2}})
	center, ok := table.Center("a")
	require.True(t, ok)
	assert.Equal(t, aim.Point{X: 1, Y: 2}, center)
}
