package model

import "sort"

// Offcut is a reusable rectangular remnant left on a sheet after cutting.
type Offcut struct {
	MaterialCode string  `json:"material"`
	SheetIndex   int     `json:"sheet_index"`
	X            float64 `json:"x"`      // Position on the board (mm from left)
	Y            float64 `json:"y"`      // Position on the board (mm from top)
	Width        float64 `json:"width"`  // mm
	Height       float64 `json:"height"` // mm
	Value        float64 `json:"value"`  // Share of the board price proportional to area
}

// Area returns the area of the offcut in square mm.
func (o Offcut) Area() float64 {
	return o.Width * o.Height
}

// ToMaterial converts an offcut into a board that can be fed to a later request.
func (o Offcut) ToMaterial(code string, source Material) Material {
	m := NewMaterial(code, o.Width, o.Height, o.Value)
	m.Name = "Offcut " + source.Code
	m.Thickness = source.Thickness
	m.Grain = source.Grain
	return m
}

// MinOffcutDimension is the minimum width or height (in mm) for a remnant
// to be considered a usable offcut. Remnants smaller than this are waste.
const MinOffcutDimension = 50.0

// MinOffcutArea is the minimum area (in sq mm) for a remnant to be considered usable.
const MinOffcutArea = 10000.0 // 100mm x 100mm equivalent

// DetectOffcuts returns the free rectangles of a layout that are large enough
// to reuse, largest first. Free rectangles never overlap, so offcuts don't either.
func DetectOffcuts(l CuttingLayout, m Material) []Offcut {
	var offcuts []Offcut
	boardArea := m.Width * m.Height
	for _, f := range l.FreeRects {
		if f.Width < MinOffcutDimension || f.Height < MinOffcutDimension || f.Area() < MinOffcutArea {
			continue
		}
		o := Offcut{
			MaterialCode: l.MaterialCode,
			SheetIndex:   l.SheetIndex,
			X:            f.X,
			Y:            f.Y,
			Width:        f.Width,
			Height:       f.Height,
		}
		if m.Price > 0 && boardArea > 0 {
			o.Value = (o.Area() / boardArea) * m.Price
		}
		offcuts = append(offcuts, o)
	}

	sort.SliceStable(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})
	return offcuts
}

// DetectAllOffcuts finds offcuts across every sheet of a result.
func DetectAllOffcuts(result Result, materials []Material) []Offcut {
	byCode := make(map[string]Material, len(materials))
	for _, m := range materials {
		byCode[m.Code] = m
	}
	var all []Offcut
	for _, l := range result.Layouts {
		all = append(all, DetectOffcuts(l, byCode[l.MaterialCode])...)
	}
	return all
}

// TotalOffcutArea returns the total area of all offcuts in square mm.
func TotalOffcutArea(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
