package engine

import (
	"sort"

	"github.com/piwi3910/boardcut/internal/model"
)

// compactThreshold is the tombstone count above which the free list is compacted.
const compactThreshold = 64

// freeSlot is one entry of the free-rectangle arena. Consumed entries are
// tombstoned instead of removed so indexes stay stable during a scan.
type freeSlot struct {
	rect model.FreeRect
	dead bool
}

// Packer places pieces on a single sheet with guillotine cuts.
// Pieces go first-fit into the free rectangles in insertion order and are
// pinned to the top-left corner of the rectangle they land in.
type Packer struct {
	material model.Material
	params   model.CuttingParameters
	rule     model.SplitRule
	usable   model.FreeRect

	free       []freeSlot
	dead       int
	placements []model.PlacedPiece
	cutLoss    float64
}

// NewPacker creates a packer for one empty sheet of m. The parameters are
// assumed valid for m.
func NewPacker(m model.Material, params model.CuttingParameters, rule model.SplitRule) *Packer {
	usable := params.UsableArea(m)
	return &Packer{
		material: m,
		params:   params,
		rule:     rule,
		usable:   usable,
		free:     []freeSlot{{rect: usable}},
	}
}

// FitsEmptySheet reports whether a piece can be placed on an empty sheet of m
// in at least one allowed orientation.
func FitsEmptySheet(p model.Piece, m model.Material, params model.CuttingParameters) bool {
	usable := params.UsableArea(m)
	canNormal, canRotated := model.CanPlaceWithGrain(p.Grain, m.Grain)
	return (canNormal && usable.Fits(p.Width, p.Height)) ||
		(canRotated && usable.Fits(p.Height, p.Width))
}

// Place tries to put one unit of p on the sheet. It returns false, leaving
// the sheet untouched, when no free rectangle can take the piece.
func (pk *Packer) Place(p model.Piece, instance int) (model.PlacedPiece, bool) {
	canNormal, canRotated := model.CanPlaceWithGrain(p.Grain, pk.material.Grain)
	square := p.Width == p.Height

	for i := range pk.free {
		slot := pk.free[i]
		if slot.dead {
			continue
		}
		w, h, rotated := p.Width, p.Height, false
		switch {
		case canNormal && slot.rect.Fits(p.Width, p.Height):
		case canRotated && !square && slot.rect.Fits(p.Height, p.Width):
			w, h, rotated = p.Height, p.Width, true
		default:
			continue
		}

		placed := model.PlacedPiece{
			Piece:    p,
			Instance: instance,
			X:        slot.rect.X,
			Y:        slot.rect.Y,
			Width:    w,
			Height:   h,
			Rotated:  rotated,
		}
		pk.placements = append(pk.placements, placed)
		pk.consume(i, w, h)
		return placed, true
	}
	return model.PlacedPiece{}, false
}

// consume tombstones slot i and appends the residuals left by a w x h
// placement at its top-left corner.
func (pk *Packer) consume(i int, w, h float64) {
	r := pk.free[i].rect
	pk.free[i].dead = true
	pk.dead++

	kerf := pk.params.Kerf
	leftoverW := r.Width - w - kerf
	leftoverH := r.Height - h - kerf

	right := model.FreeRect{X: r.X + w + kerf, Y: r.Y, Width: leftoverW}
	bottom := model.FreeRect{X: r.X, Y: r.Y + h + kerf, Height: leftoverH}
	if pk.rule.FullWidthBottom(leftoverW, leftoverH) {
		right.Height = h
		bottom.Width = r.Width
	} else {
		right.Height = r.Height
		bottom.Width = w
	}

	kept := w * h
	for _, res := range []model.FreeRect{right, bottom} {
		if res.Width <= model.Epsilon || res.Height <= model.Epsilon {
			continue
		}
		pk.free = append(pk.free, freeSlot{rect: res})
		kept += res.Area()
	}
	pk.cutLoss += r.Area() - kept

	if pk.dead > compactThreshold && pk.dead*2 > len(pk.free) {
		pk.compact()
	}
}

// compact drops tombstones, keeping the relative order of live entries.
func (pk *Packer) compact() {
	live := pk.free[:0]
	for _, s := range pk.free {
		if !s.dead {
			live = append(live, s)
		}
	}
	for i := len(live); i < len(pk.free); i++ {
		pk.free[i] = freeSlot{}
	}
	pk.free = live
	pk.dead = 0
}

// FreeRects returns the live free rectangles in scan order.
func (pk *Packer) FreeRects() []model.FreeRect {
	out := make([]model.FreeRect, 0, len(pk.free)-pk.dead)
	for _, s := range pk.free {
		if !s.dead {
			out = append(out, s.rect)
		}
	}
	return out
}

// Empty reports whether nothing has been placed yet.
func (pk *Packer) Empty() bool {
	return len(pk.placements) == 0
}

// Layout snapshots the sheet as a CuttingLayout.
func (pk *Packer) Layout(sheetIndex int) model.CuttingLayout {
	return model.CuttingLayout{
		MaterialCode: pk.material.Code,
		SheetIndex:   sheetIndex,
		Board:        pk.material.Size(),
		Usable:       pk.usable,
		Placements:   append([]model.PlacedPiece(nil), pk.placements...),
		FreeRects:    pk.FreeRects(),
		CutLossArea:  pk.cutLoss,
	}
}

// instance is one unit of a piece awaiting placement.
type instance struct {
	piece model.Piece
	n     int // 1-based unit number
}

// expandInstances turns pieces into one entry per quantity unit.
func expandInstances(pieces []model.Piece) []instance {
	var out []instance
	for _, p := range pieces {
		for n := 1; n <= p.Quantity; n++ {
			out = append(out, instance{piece: p, n: n})
		}
	}
	return out
}

// sortInstances orders units largest first: area desc, longest side desc,
// label asc, then width desc, material and ID so the order is total.
func sortInstances(in []instance) {
	sort.SliceStable(in, func(i, j int) bool {
		a, b := in[i].piece, in[j].piece
		if a.Area() != b.Area() {
			return a.Area() > b.Area()
		}
		if ma, mb := maxDim(a), maxDim(b); ma != mb {
			return ma > mb
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		if a.Width != b.Width {
			return a.Width > b.Width
		}
		if a.Material != b.Material {
			return a.Material < b.Material
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return in[i].n < in[j].n
	})
}

func maxDim(p model.Piece) float64 {
	if p.Width > p.Height {
		return p.Width
	}
	return p.Height
}
