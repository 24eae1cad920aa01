package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Layout
		want  []string
	}{
		{
			name:  "default is valid",
			build: Default,
			want:  []string{},
		},
		{
			name: "no layers",
			build: func() *Layout {
				return &Layout{Dimensions: Dimensions{Rows: 1, Columns: 1}}
			},
			want: []string{ErrLayerCount},
		},
		{
			name: "too many layers",
			build: func() *Layout {
				l := New(Dimensions{Rows: 1, Columns: 1})
				for len(l.Layers) <= MaxLayers {
					l.Layers = append(l.Layers, l.Layers[0].Clone())
				}
				return l
			},
			want: []string{ErrLayerCount},
		},
		{
			name: "missing row",
			build: func() *Layout {
				l := New(Dimensions{Rows: 2, Columns: 1})
				l.Layers[0] = l.Layers[0][:1]
				return l
			},
			want: []string{ErrRowCount},
		},
		{
			name: "ragged row",
			build: func() *Layout {
				l := New(Dimensions{Rows: 2, Columns: 2})
				l.Layers[0][1] = append(l.Layers[0][1], Key("X"))
				return l
			},
			want: []string{ErrColumnCount},
		},
		{
			name: "zero span and empty value",
			build: func() *Layout {
				l := New(Dimensions{Rows: 1, Columns: 2})
				l.Layers[0][0][0] = &KeyCell{Value: strPtr("Q"), Span: 0}
				l.Layers[0][0][1] = Key("")
				return l
			},
			want: []string{ErrSpan, ErrEmptyValue},
		},
		{
			name: "non-positive dimensions",
			build: func() *Layout {
				return &Layout{Layers: []Layer{{}}}
			},
			want: []string{ErrDimensions},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codes(tt.build().Validate())
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestValidate_SkippedCellsAreValid(t *testing.T) {
	l := New(Dimensions{Rows: 1, Columns: 3})
	l.Layers[0][0] = Row{nil, nil, nil}
	assert.Empty(t, l.Validate())
}

func TestRectangular(t *testing.T) {
	l := New(Dimensions{Rows: 2, Columns: 2})
	require.NoError(t, l.Rectangular())

	l.Layers[0][0][0] = &KeyCell{Value: strPtr("Q"), Span: 0}
	assert.NoError(t, l.Rectangular(), "cell-level violations do not affect shape")

	l.Layers[0][1] = l.Layers[0][1][:1]
	err := l.Rectangular()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrColumnCount)
}
