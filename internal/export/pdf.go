// Package export renders optimization results as printable and machine
// readable files: PDF cut sheets, QR-coded piece labels, DXF drawings and
// Excel cut lists.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/boardcut/internal/model"
)

// pieceColor represents an RGB color for a placed piece.
type pieceColor struct {
	R, G, B int
}

var pieceColors = []pieceColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF writes one page per sheet layout with a scaled diagram,
// followed by a summary page with costs and the result hash.
func ExportPDF(path string, result model.Result) error {
	if len(result.Layouts) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, l := range result.Layouts {
		pdf.AddPage()
		renderSheetPage(pdf, l)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result)

	return pdf.OutputFileAndClose(path)
}

func renderSheetPage(pdf *fpdf.Fpdf, l model.CuttingLayout) {
	board := l.Board

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s sheet %d (%.0f x %.0f mm)", l.MaterialCode, l.SheetIndex, board.Width, board.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pieces: %d | Used area: %.0f mm² | Usable area: %.0f mm² | Utilization: %.1f%% | Cut loss: %.0f mm²",
		len(l.Placements), l.UsedArea(), l.Usable.Area(), l.Utilization()*100, l.CutLossArea)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight
	scale := math.Min(drawWidth/board.Width, drawHeight/board.Height)

	canvasW := board.Width * scale
	canvasH := board.Height * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Melamine board background
	pdf.SetFillColor(235, 235, 230)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	drawTrimZones(pdf, l, scale, offsetX, offsetY)

	for i, p := range l.Placements {
		col := pieceColors[i%len(pieceColors)]
		pw := p.Width * scale
		ph := p.Height * scale
		px := offsetX + p.X*scale
		py := offsetY + p.Y*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := p.Piece.Label
			dims := fmt.Sprintf("%.0fx%.0f", p.Piece.Width, p.Piece.Height)
			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)

			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, board, offsetX, offsetY, canvasW, canvasH)
	drawPiecesLegend(pdf, l, offsetY+canvasH+5)
}

// trimZones returns the board strips outside the usable area.
func trimZones(l model.CuttingLayout) []model.FreeRect {
	b, u := l.Board, l.Usable
	var zones []model.FreeRect
	if u.Y > 0 {
		zones = append(zones, model.FreeRect{X: 0, Y: 0, Width: b.Width, Height: u.Y})
	}
	if bottom := b.Height - (u.Y + u.Height); bottom > model.Epsilon {
		zones = append(zones, model.FreeRect{X: 0, Y: u.Y + u.Height, Width: b.Width, Height: bottom})
	}
	if u.X > 0 {
		zones = append(zones, model.FreeRect{X: 0, Y: 0, Width: u.X, Height: b.Height})
	}
	if right := b.Width - (u.X + u.Width); right > model.Epsilon {
		zones = append(zones, model.FreeRect{X: u.X + u.Width, Y: 0, Width: right, Height: b.Height})
	}
	return zones
}

func drawTrimZones(pdf *fpdf.Fpdf, l model.CuttingLayout, scale, offsetX, offsetY float64) {
	for _, zone := range trimZones(l) {
		zx := offsetX + zone.X*scale
		zy := offsetY + zone.Y*scale
		zw := zone.Width * scale
		zh := zone.Height * scale

		pdf.SetFillColor(255, 200, 200)
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.3)
		pdf.Rect(zx, zy, zw, zh, "FD")
		drawHatchPattern(pdf, zx, zy, zw, zh)

		if zw > 20 && zh > 8 {
			pdf.SetFont("Helvetica", "B", 6)
			pdf.SetTextColor(180, 0, 0)
			labelW := pdf.GetStringWidth("TRIM")
			pdf.SetXY(zx+(zw-labelW)/2, zy+zh/2-2)
			pdf.CellFormat(labelW, 4, "TRIM", "", 0, "C", false, 0, "")
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

// drawHatchPattern draws diagonal lines inside a rectangle.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)

	spacing := 4.0
	for d := spacing; d < w+h; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)
		pdf.Line(x1, y1, x2, y2)
	}
}

func drawDimensionAnnotations(pdf *fpdf.Fpdf, board model.Rectangle, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f mm", board.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f mm", board.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

func drawPiecesLegend(pdf *fpdf.Fpdf, l model.CuttingLayout, startY float64) {
	if len(l.Placements) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Pieces placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, p := range l.Placements {
		col := pieceColors[i%len(pieceColors)]
		label := fmt.Sprintf("%s (%.0fx%.0f)", p.Piece.Label, p.Piece.Width, p.Piece.Height)
		if p.Rotated {
			label += " R"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

func renderSummaryPage(pdf *fpdf.Fpdf, result model.Result) {
	title := "Cut Optimization Summary"
	if result.ProjectName != "" {
		title += ": " + result.ProjectName
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, title, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Total Sheets Used", fmt.Sprintf("%d", result.SheetsUsed)},
		{"Total Cost", fmt.Sprintf("%.2f", result.TotalCost)},
		{"Utilization", fmt.Sprintf("%.1f%%", result.Utilization*100)},
		{"Waste", fmt.Sprintf("%.1f%%", result.WastePercent)},
		{"Pieces Placed", fmt.Sprintf("%d", result.PlacedCount())},
		{"Unplaced Pieces", fmt.Sprintf("%d", len(result.Unplaced))},
		{"Split Rule", string(result.SplitRule)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Material Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{45, 30, 35, 35, 40, 40}
	headers := []string{"Material", "Sheets", "Min Sheets", "Unit Price", "Total Cost", "Utilization"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, c := range result.Costs {
		xPos = marginLeft
		rowData := []string{
			c.MaterialCode,
			fmt.Sprintf("%d", c.SheetsUsed),
			fmt.Sprintf("%d", c.MinSheets),
			fmt.Sprintf("%.2f", c.UnitPrice),
			fmt.Sprintf("%.2f", c.TotalCost),
			fmt.Sprintf("%.1f%%", c.Utilization*100),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if len(result.Unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Pieces", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, u := range result.Unplaced {
			if y > pageHeight-marginBottom-10 {
				pdf.SetXY(marginLeft+5, y)
				pdf.CellFormat(200, 5, "...", "", 0, "L", false, 0, "")
				break
			}
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s #%d (%s): %.0f x %.0f mm, %s",
				u.Piece.Label, u.Instance, u.Piece.Material, u.Piece.Width, u.Piece.Height, u.Reason)
			pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	footer := "Generated by boardcut"
	if result.Hash != "" {
		footer += " | " + result.Hash
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, footer, "", 0, "C", false, 0, "")
}

// labelFontSize returns a font size that fits the rectangle.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
