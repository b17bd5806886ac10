package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfinder/core-go/internal/grid"
	"wayfinder/core-go/internal/mapstore"
	"wayfinder/core-go/internal/maperr"
	"wayfinder/core-go/internal/search"
)

func TestDefault_Builds(t *testing.T) {
	doc, err := Default()
	require.NoError(t, err)

	maps, err := Build(doc)
	require.NoError(t, err)
	require.Len(t, maps, 3)

	aulario := maps[0]
	assert.Equal(t, "Aulario I", aulario.Name)
	assert.Equal(t, []int{0, 1}, aulario.Floors.Numbers())
	assert.Len(t, aulario.Nodes, 6)
	assert.Len(t, aulario.Edges, 10)

	ground := aulario.Floors[0].Grid
	assert.Equal(t, 15, ground.Rows())
	assert.Equal(t, 30, ground.Cols())
	// The outer wall runs along y = 1, which is row 13.
	assert.Equal(t, grid.Occupied, ground.At(13, 5))
	assert.Equal(t, grid.Free, ground.At(14, 5))

	exits := aulario.ExitNodes()
	require.Len(t, exits, 1)
	assert.Equal(t, "Main Entrance", exits[0].Name)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("maps:\n  - name: A\n    colour: red\n"))
	assert.True(t, maperr.Is(err, maperr.CodeValidation), "got %v", err)
}

func TestParse_Empty(t *testing.T) {
	doc, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Maps)
}

func TestBuild_ExplicitGridAndCustomFill(t *testing.T) {
	doc, err := Parse([]byte(`
maps:
  - name: Annex
    floors:
      - number: 2
        grid:
          - [0, 0, 0]
          - [0, 0, 0]
          - [0, 0, 0]
        outlines:
          - fill: 5
            points: [[0, 0], [2, 0], [2, 2], [0, 2]]
`))
	require.NoError(t, err)

	maps, err := Build(doc)
	require.NoError(t, err)
	f, err := maps[0].Floors.Get(2)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{5, 5, 5}, {5, 0, 5}, {5, 5, 5}}, f.Grid.Cells())
}

func TestBuild_Errors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		code maperr.Code
	}{
		{
			name: "no floors",
			yaml: "maps:\n  - name: A\n",
			code: maperr.CodeValidation,
		},
		{
			name: "bad floor size",
			yaml: "maps:\n  - name: A\n    floors:\n      - {number: 0, rows: 0, cols: 3}\n",
			code: maperr.CodeInvalidDimension,
		},
		{
			name: "duplicate floor",
			yaml: "maps:\n  - name: A\n    floors:\n      - {number: 0, rows: 2, cols: 2}\n      - {number: 0, rows: 2, cols: 2}\n",
			code: maperr.CodeDuplicateFloor,
		},
		{
			name: "outline outside floor",
			yaml: "maps:\n  - name: A\n    floors:\n      - number: 0\n        rows: 2\n        cols: 2\n        outlines:\n          - points: [[0, 0], [5, 0]]\n",
			code: maperr.CodeCoordinateOutOfBounds,
		},
		{
			name: "node off grid",
			yaml: "maps:\n  - name: A\n    floors:\n      - {number: 0, rows: 2, cols: 2}\n    nodes:\n      - {key: a, floor: 0, x: 4, y: 0}\n",
			code: maperr.CodeOutOfBounds,
		},
		{
			name: "edge to unknown key",
			yaml: "maps:\n  - name: A\n    floors:\n      - {number: 0, rows: 2, cols: 2}\n    nodes:\n      - {key: a, floor: 0}\n    edges:\n      - {from: a, to: b}\n",
			code: maperr.CodeNodeNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Parse([]byte(tc.yaml))
			require.NoError(t, err)
			_, err = Build(doc)
			assert.True(t, maperr.Is(err, tc.code), "want %s, got %v", tc.code, err)
		})
	}
}

func TestApply_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := mapstore.NewMemory()

	doc, err := Default()
	require.NoError(t, err)
	maps, err := Build(doc)
	require.NoError(t, err)

	saved, err := Apply(ctx, store, maps)
	require.NoError(t, err)
	assert.Len(t, saved, 3)

	again, err := Apply(ctx, store, maps)
	require.NoError(t, err)
	assert.Empty(t, again)

	list, err := store.ListMaps(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestDefault_SearchHall(t *testing.T) {
	ctx := context.Background()
	store := mapstore.NewMemory()
	doc, err := Default()
	require.NoError(t, err)
	maps, err := Build(doc)
	require.NoError(t, err)
	_, err = Apply(ctx, store, maps)
	require.NoError(t, err)

	candidates, err := store.SearchCandidates(ctx)
	require.NoError(t, err)
	results := search.Rank(candidates, "central hall aulario", search.DefaultLimit)
	require.NotEmpty(t, results)

	// Both halls match three keywords; the lower id wins the tie.
	assert.Equal(t, "Central Hall", results[0].Node.Name)
	assert.Equal(t, "Aulario I", results[0].Map.Name)
	assert.Equal(t, 3, results[0].Score)
	assert.Equal(t, "Aulario II", results[1].Map.Name)
	assert.Equal(t, 3, results[1].Score)
}
