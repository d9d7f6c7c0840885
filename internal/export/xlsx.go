package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/boardcut/internal/model"
)

// Worksheet names of the Excel report.
const (
	SheetSummary  = "Summary"
	SheetCutList  = "Cut List"
	SheetUnplaced = "Unplaced"
	SheetOffcuts  = "Offcuts"
)

// ExportXLSX writes a workbook with a cost summary, the cut list per sheet,
// unplaced pieces and reusable offcuts. materials prices the offcuts; a
// material missing from it yields offcuts with zero value.
func ExportXLSX(path string, result model.Result, materials []model.Material) error {
	if len(result.Layouts) == 0 && len(result.Unplaced) == 0 {
		return fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetCutList, SheetUnplaced, SheetOffcuts} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	w := &sheetWriter{f: f, bold: bold}
	w.summary(result)
	w.cutList(result)
	w.unplaced(result)
	w.offcuts(model.DetectAllOffcuts(result, materials))
	if w.err != nil {
		return w.err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// sheetWriter appends rows and keeps the first error.
type sheetWriter struct {
	f    *excelize.File
	bold int
	err  error
}

func (w *sheetWriter) row(sheet string, n int, values ...interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("failed to write %s row %d: %w", sheet, n, err)
	}
}

func (w *sheetWriter) header(sheet string, values ...interface{}) {
	w.row(sheet, 1, values...)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(values), 1)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellStyle(sheet, "A1", last, w.bold); err != nil {
		w.err = err
		return
	}
	lastCol, _ := excelize.ColumnNumberToName(len(values))
	if err := w.f.SetColWidth(sheet, "A", lastCol, 14); err != nil {
		w.err = err
	}
}

func (w *sheetWriter) summary(result model.Result) {
	w.header(SheetSummary, "Material", "Sheets", "Min Sheets", "Unit Price", "Total Cost", "Utilization %")
	n := 2
	for _, c := range result.Costs {
		w.row(SheetSummary, n, c.MaterialCode, c.SheetsUsed, c.MinSheets, c.UnitPrice, c.TotalCost, round1(c.Utilization*100))
		n++
	}
	w.row(SheetSummary, n, "Total", result.SheetsUsed, "", "", result.TotalCost, round1(result.Utilization*100))
	n += 2
	w.row(SheetSummary, n, "Project", result.ProjectName)
	w.row(SheetSummary, n+1, "Split rule", string(result.SplitRule))
	w.row(SheetSummary, n+2, "Waste %", round1(result.WastePercent))
	w.row(SheetSummary, n+3, "Hash", result.Hash)
}

func (w *sheetWriter) cutList(result model.Result) {
	w.header(SheetCutList, "Material", "Sheet", "Label", "Piece ID", "Unit", "X", "Y", "Width", "Height", "Rotated")
	n := 2
	for _, l := range result.Layouts {
		for _, p := range l.Placements {
			rotated := ""
			if p.Rotated {
				rotated = "yes"
			}
			w.row(SheetCutList, n, l.MaterialCode, l.SheetIndex, p.Piece.Label, p.Piece.ID, p.Instance,
				p.X, p.Y, p.Width, p.Height, rotated)
			n++
		}
	}
}

func (w *sheetWriter) unplaced(result model.Result) {
	w.header(SheetUnplaced, "Material", "Label", "Piece ID", "Unit", "Width", "Height", "Reason")
	for i, u := range result.Unplaced {
		w.row(SheetUnplaced, i+2, u.Piece.Material, u.Piece.Label, u.Piece.ID, u.Instance, u.Piece.Width, u.Piece.Height, u.Reason)
	}
}

func (w *sheetWriter) offcuts(offcuts []model.Offcut) {
	w.header(SheetOffcuts, "Material", "Sheet", "X", "Y", "Width", "Height", "Value")
	for i, o := range offcuts {
		w.row(SheetOffcuts, i+2, o.MaterialCode, o.SheetIndex, o.X, o.Y, o.Width, o.Height, round2(o.Value))
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
