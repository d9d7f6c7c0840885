package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/boardcut/internal/model"
)

func testBoard() model.Material {
	return model.NewMaterial("MEL18", 1220, 2440, 45)
}

// assertLayoutInvariants checks bounds, overlap, kerf gaps and area conservation.
func assertLayoutInvariants(t *testing.T, l model.CuttingLayout, kerf float64) {
	t.Helper()
	const eps = 1e-6
	u := l.Usable
	for _, p := range l.Placements {
		assert.GreaterOrEqual(t, p.X, u.X-eps, "piece %s left of usable area", p.Piece.Label)
		assert.GreaterOrEqual(t, p.Y, u.Y-eps, "piece %s above usable area", p.Piece.Label)
		assert.LessOrEqual(t, p.X+p.Width, u.X+u.Width+model.Epsilon, "piece %s past right edge", p.Piece.Label)
		assert.LessOrEqual(t, p.Y+p.Height, u.Y+u.Height+model.Epsilon, "piece %s past bottom edge", p.Piece.Label)
	}
	for i := 0; i < len(l.Placements); i++ {
		for j := i + 1; j < len(l.Placements); j++ {
			a, b := l.Placements[i], l.Placements[j]
			separated := a.X+a.Width+kerf <= b.X+eps || b.X+b.Width+kerf <= a.X+eps ||
				a.Y+a.Height+kerf <= b.Y+eps || b.Y+b.Height+kerf <= a.Y+eps
			assert.True(t, separated, "pieces %d and %d overlap or violate kerf: %+v %+v", i, j, a.Bounds(), b.Bounds())
		}
	}
	total := l.UsedArea() + l.FreeArea() + l.CutLossArea
	assert.InDelta(t, u.Area(), total, 1e-3, "placed + free + loss must equal usable area")
	assert.GreaterOrEqual(t, l.CutLossArea, -1e-3)
}

func TestPacker_TwoPiecesSideBySide(t *testing.T) {
	params := model.CuttingParameters{Kerf: 5}
	pk := NewPacker(testBoard(), params, model.SplitShorterAxisFirst)
	piece := model.Piece{ID: "p1", Label: "Door", Width: 600, Height: 400, Quantity: 2, Material: "MEL18"}

	first, ok := pk.Place(piece, 1)
	require.True(t, ok)
	second, ok := pk.Place(piece, 2)
	require.True(t, ok)

	assert.Equal(t, 0.0, first.X)
	assert.Equal(t, 0.0, first.Y)
	assert.Equal(t, 605.0, second.X)
	assert.Equal(t, 0.0, second.Y)
	assert.False(t, first.Rotated)
	assert.False(t, second.Rotated)

	l := pk.Layout(1)
	assert.InDelta(t, 0.1612, l.Utilization(), 0.0001)
	assert.Equal(t, []model.FreeRect{
		{X: 0, Y: 405, Width: 1220, Height: 2035},
		{X: 1210, Y: 0, Width: 10, Height: 400},
	}, l.FreeRects)
	assertLayoutInvariants(t, l, params.Kerf)
}

func TestPacker_LongerAxisFirstGivesRightResidualFullHeight(t *testing.T) {
	pk := NewPacker(testBoard(), model.CuttingParameters{Kerf: 5}, model.SplitLongerAxisFirst)
	_, ok := pk.Place(model.Piece{Label: "A", Width: 600, Height: 400, Quantity: 1}, 1)
	require.True(t, ok)

	assert.Equal(t, []model.FreeRect{
		{X: 605, Y: 0, Width: 615, Height: 2440},
		{X: 0, Y: 405, Width: 600, Height: 2035},
	}, pk.FreeRects())
}

func TestPacker_TrimsOffsetPlacement(t *testing.T) {
	params := model.CuttingParameters{Kerf: 4, TopTrim: 10, BottomTrim: 10, LeftTrim: 15, RightTrim: 5}
	pk := NewPacker(testBoard(), params, model.SplitShorterAxisFirst)
	p, ok := pk.Place(model.Piece{Label: "A", Width: 500, Height: 500, Quantity: 1}, 1)
	require.True(t, ok)
	assert.Equal(t, 15.0, p.X)
	assert.Equal(t, 10.0, p.Y)

	l := pk.Layout(1)
	assert.Equal(t, model.FreeRect{X: 15, Y: 10, Width: 1200, Height: 2420}, l.Usable)
	assertLayoutInvariants(t, l, params.Kerf)
}

func TestPacker_ExactFitDropsSlivers(t *testing.T) {
	pk := NewPacker(testBoard(), model.CuttingParameters{Kerf: 5}, model.SplitShorterAxisFirst)
	_, ok := pk.Place(model.Piece{Label: "Full", Width: 1220, Height: 2440, Quantity: 1}, 1)
	require.True(t, ok)

	assert.Empty(t, pk.FreeRects())
	_, ok = pk.Place(model.Piece{Label: "Tiny", Width: 1, Height: 1, Quantity: 1}, 1)
	assert.False(t, ok, "a full sheet has no room left")
	assertLayoutInvariants(t, pk.Layout(1), 5)
}

func TestPacker_RotatesWhenOnlyRotatedFits(t *testing.T) {
	pk := NewPacker(testBoard(), model.CuttingParameters{Kerf: 3}, model.SplitShorterAxisFirst)
	p, ok := pk.Place(model.Piece{Label: "Side", Width: 2000, Height: 1000, Quantity: 1}, 1)
	require.True(t, ok)
	assert.True(t, p.Rotated)
	assert.Equal(t, 1000.0, p.Width)
	assert.Equal(t, 2000.0, p.Height)
}

func TestPacker_GrainPreventsRotation(t *testing.T) {
	piece := model.Piece{Label: "Side", Width: 2000, Height: 1000, Quantity: 1, Grain: model.GrainHorizontal}
	board := testBoard()

	assert.False(t, FitsEmptySheet(piece, board, model.CuttingParameters{}))
	pk := NewPacker(board, model.CuttingParameters{}, model.SplitShorterAxisFirst)
	_, ok := pk.Place(piece, 1)
	assert.False(t, ok)
	assert.True(t, pk.Empty())

	board.Grain = model.GrainVertical
	piece.Width, piece.Height = 1000, 2000
	assert.False(t, FitsEmptySheet(piece, board, model.CuttingParameters{}), "mismatched grain never fits")
}

func TestPacker_FailedPlacementLeavesSheetUntouched(t *testing.T) {
	pk := NewPacker(testBoard(), model.CuttingParameters{Kerf: 5}, model.SplitShorterAxisFirst)
	_, ok := pk.Place(model.Piece{Label: "A", Width: 1000, Height: 2000, Quantity: 1}, 1)
	require.True(t, ok)
	before := pk.Layout(1)

	_, ok = pk.Place(model.Piece{Label: "B", Width: 1000, Height: 1000, Quantity: 1}, 1)
	assert.False(t, ok)
	assert.Equal(t, before, pk.Layout(1))
}

func TestPacker_ManyPlacementsCompactFreeList(t *testing.T) {
	params := model.CuttingParameters{Kerf: 3}
	pk := NewPacker(testBoard(), params, model.SplitShorterAxisFirst)
	placed := 0
	for i := 0; i < 400; i++ {
		w := float64(40 + (i*37)%160)
		h := float64(30 + (i*53)%140)
		if _, ok := pk.Place(model.Piece{ID: fmt.Sprintf("p%03d", i), Label: "S", Width: w, Height: h, Quantity: 1}, 1); ok {
			placed++
		}
	}
	require.Greater(t, placed, compactThreshold)
	assert.LessOrEqual(t, pk.dead*2, len(pk.free)+2*compactThreshold)

	l := pk.Layout(1)
	assert.Len(t, l.Placements, placed)
	assertLayoutInvariants(t, l, params.Kerf)
}

func TestSortInstances_Order(t *testing.T) {
	pieces := []model.Piece{
		{ID: "c", Label: "Small", Width: 100, Height: 100, Quantity: 1},
		{ID: "b", Label: "Wide", Width: 400, Height: 100, Quantity: 1},
		{ID: "a", Label: "Tall", Width: 100, Height: 400, Quantity: 1},
		{ID: "d", Label: "Square", Width: 200, Height: 200, Quantity: 2},
	}
	in := expandInstances(pieces)
	require.Len(t, in, 5)
	sortInstances(in)

	var got []string
	for _, i := range in {
		got = append(got, fmt.Sprintf("%s#%d", i.piece.Label, i.n))
	}
	// Equal area (40000) for all but Small; longest side first, then label.
	assert.Equal(t, []string{"Tall#1", "Wide#1", "Square#1", "Square#2", "Small#1"}, got)
}
