package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/boardcut/internal/model"
)

// DXF layer names.
const (
	LayerBoard  = "BOARD"
	LayerPieces = "PIECES"
	LayerFree   = "FREE"
	LayerText   = "TEXT"
)

// sheetGap separates consecutive sheets in the drawing (mm).
const sheetGap = 200.0

// ExportDXF writes every sheet layout into one DXF drawing, sheets side by
// side from left to right. Board outlines, pieces and leftover rectangles
// go on separate layers. DXF's Y axis points up, so layouts are flipped.
func ExportDXF(path string, result model.Result) error {
	if len(result.Layouts) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	d := dxf.NewDrawing()
	layers := []struct {
		name string
		cl   color.ColorNumber
	}{
		{LayerBoard, dxf.DefaultColor},
		{LayerPieces, color.Green},
		{LayerFree, color.Cyan},
		{LayerText, color.Yellow},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.cl, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	offsetX := 0.0
	for _, l := range result.Layouts {
		if err := drawLayout(d, l, offsetX); err != nil {
			return fmt.Errorf("failed to draw %s sheet %d: %w", l.MaterialCode, l.SheetIndex, err)
		}
		offsetX += l.Board.Width + sheetGap
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF %s: %w", path, err)
	}
	return nil
}

func drawLayout(d *drawing.Drawing, l model.CuttingLayout, offsetX float64) error {
	flip := func(r model.FreeRect) model.FreeRect {
		return model.FreeRect{X: offsetX + r.X, Y: l.Board.Height - r.Y - r.Height, Width: r.Width, Height: r.Height}
	}

	if err := d.ChangeLayer(LayerBoard); err != nil {
		return err
	}
	if err := rect(d, model.FreeRect{X: offsetX, Width: l.Board.Width, Height: l.Board.Height}); err != nil {
		return err
	}

	if err := d.ChangeLayer(LayerPieces); err != nil {
		return err
	}
	for _, p := range l.Placements {
		if err := rect(d, flip(p.Bounds())); err != nil {
			return err
		}
	}

	if err := d.ChangeLayer(LayerFree); err != nil {
		return err
	}
	for _, f := range l.FreeRects {
		if err := rect(d, flip(f)); err != nil {
			return err
		}
	}

	if err := d.ChangeLayer(LayerText); err != nil {
		return err
	}
	title := fmt.Sprintf("%s #%d", l.MaterialCode, l.SheetIndex)
	if _, err := d.Text(title, offsetX, l.Board.Height+20, 0, 30); err != nil {
		return err
	}
	for _, p := range l.Placements {
		b := flip(p.Bounds())
		height := textHeight(b)
		if height == 0 {
			continue
		}
		if _, err := d.Text(p.Piece.Label, b.X+height/2, b.Y+b.Height/2, 0, height); err != nil {
			return err
		}
	}
	return nil
}

// rect draws r as four lines.
func rect(d *drawing.Drawing, r model.FreeRect) error {
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.Width, r.Y+r.Height
	edges := [][4]float64{
		{x0, y0, x1, y0},
		{x1, y0, x1, y1},
		{x1, y1, x0, y1},
		{x0, y1, x0, y0},
	}
	for _, e := range edges {
		if _, err := d.Line(e[0], e[1], 0, e[2], e[3], 0); err != nil {
			return err
		}
	}
	return nil
}

// textHeight picks a label height for a piece, or 0 when it is too small to label.
func textHeight(r model.FreeRect) float64 {
	h := r.Height / 5
	if h > 40 {
		h = 40
	}
	if h < 8 || r.Width < 60 {
		return 0
	}
	return h
}
