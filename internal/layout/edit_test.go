package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCell_DoesNotMutateInput(t *testing.T) {
	l := New(Dimensions{Rows: 2, Columns: 2})
	before := l.Clone()

	next, err := l.SetLabel(0, 1, 1, "Q")
	require.NoError(t, err)

	assert.True(t, l.Equal(before), "original snapshot changed")
	assert.Equal(t, "Q", *next.Layers[0][1][1].Value)
}

func TestSetCell_CopiesCell(t *testing.T) {
	l := New(Dimensions{Rows: 1, Columns: 1})
	cell := Key("A")

	next, err := l.SetCell(0, 0, 0, cell)
	require.NoError(t, err)

	*cell.Value = "B"
	assert.Equal(t, "A", *next.Layers[0][0][0].Value)
}

func TestClearAndSkip(t *testing.T) {
	l := New(Dimensions{Rows: 1, Columns: 2})
	l, err := l.SetLabel(0, 0, 0, "Q")
	require.NoError(t, err)

	cleared, err := l.ClearCell(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Blank, *cleared.Layers[0][0][0].Value)

	skipped, err := l.SkipCell(0, 0, 1)
	require.NoError(t, err)
	assert.Nil(t, skipped.Layers[0][0][1])
	assert.Empty(t, skipped.Validate())
}

func TestSetCell_OutOfRange(t *testing.T) {
	l := New(Dimensions{Rows: 2, Columns: 3})

	positions := [][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 2, 0}, {0, 0, 3}, {0, -1, 0}}
	for _, p := range positions {
		_, err := l.SetLabel(p[0], p[1], p[2], "X")
		require.Error(t, err, "position %v", p)

		var ve ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, ErrOutOfRange, ve.Code)
	}
}

func TestAddLayer(t *testing.T) {
	l := New(Dimensions{Rows: 2, Columns: 3})
	for i := 0; i < 20; i++ {
		l = l.AddLayer()
	}
	assert.Len(t, l.Layers, MaxLayers)
	assert.Empty(t, l.Validate())
}

func TestRemoveLayer(t *testing.T) {
	l := New(Dimensions{Rows: 1, Columns: 1}).AddLayer().AddLayer()
	l, err := l.SetLabel(0, 0, 0, "Q")
	require.NoError(t, err)

	l = l.RemoveLayer()
	assert.Len(t, l.Layers, 2)
	assert.Equal(t, "Q", *l.Layers[0][0][0].Value, "the last layer is removed, not the first")

	l = l.RemoveLayer().RemoveLayer().RemoveLayer()
	assert.Len(t, l.Layers, 1)
}

func TestAddRemoveRow(t *testing.T) {
	l := New(Dimensions{Rows: 2, Columns: 3}).AddLayer()

	grown := l.AddRow()
	assert.Equal(t, 3, grown.Dimensions.Rows)
	for _, layer := range grown.Layers {
		require.Len(t, layer, 3)
		assert.Len(t, layer[2], 3)
	}
	assert.Empty(t, grown.Validate())
	assert.Equal(t, 2, l.Dimensions.Rows, "input untouched")

	shrunk := grown.RemoveRow().RemoveRow().RemoveRow()
	assert.Equal(t, 1, shrunk.Dimensions.Rows)
	assert.Empty(t, shrunk.Validate())
}

func TestAddRemoveColumn(t *testing.T) {
	l := New(Dimensions{Rows: 2, Columns: 2}).AddLayer()
	l, err := l.SetLabel(1, 1, 0, "K")
	require.NoError(t, err)

	grown := l.AddColumn()
	assert.Equal(t, 3, grown.Dimensions.Columns)
	assert.Empty(t, grown.Validate())
	assert.Equal(t, Blank, *grown.Layers[1][1][2].Value)
	assert.Len(t, l.Layers[0][0], 2, "input untouched")

	shrunk := grown.RemoveColumn().RemoveColumn().RemoveColumn()
	assert.Equal(t, 1, shrunk.Dimensions.Columns)
	assert.Equal(t, "K", *shrunk.Layers[1][1][0].Value)
	assert.Empty(t, shrunk.Validate())
}

func TestCell(t *testing.T) {
	l := New(Dimensions{Rows: 1, Columns: 1})
	c, err := l.Cell(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Blank, *c.Value)

	_, err = l.Cell(0, 0, 1)
	assert.Error(t, err)
}
