package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/boardcut/internal/model"
)

func TestExportXLSX_Sheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.xlsx")
	result := buildTestResult()
	result.Unplaced = []model.UnplacedPiece{{
		Piece:    model.Piece{ID: "u1", Label: "Too Big", Width: 3000, Height: 2000, Quantity: 1, Material: "MEL18"},
		Instance: 1,
		Reason:   model.ReasonExceedsSheet,
	}}
	materials := []model.Material{
		model.NewMaterial("MEL18", 2440, 1220, 62.5),
		model.NewMaterial("MDF3", 1200, 600, 12),
	}

	if err := ExportXLSX(path, result, materials); err != nil {
		t.Fatalf("ExportXLSX returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{SheetSummary, SheetCutList, SheetUnplaced, SheetOffcuts}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("sheet %d: expected %q, got %q", i, want[i], sheets[i])
		}
	}

	cut, err := f.GetRows(SheetCutList)
	if err != nil {
		t.Fatal(err)
	}
	if len(cut) != 1+result.PlacedCount() {
		t.Fatalf("expected header plus %d rows, got %d", result.PlacedCount(), len(cut))
	}
	if cut[1][0] != "MEL18" || cut[1][2] != "Side Panel" || cut[1][4] != "1" {
		t.Errorf("unexpected first cut row %v", cut[1])
	}
	if cut[3][9] != "yes" {
		t.Errorf("expected rotated marker, got %v", cut[3])
	}

	summary, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatal(err)
	}
	if summary[0][0] != "Material" || summary[1][0] != "MDF3" || summary[3][0] != "Total" {
		t.Errorf("unexpected summary rows %v", summary)
	}
	hash, err := f.GetCellValue(SheetSummary, "B9")
	if err != nil {
		t.Fatal(err)
	}
	if hash != result.Hash {
		t.Errorf("expected hash in summary, got %q", hash)
	}

	unplaced, err := f.GetRows(SheetUnplaced)
	if err != nil {
		t.Fatal(err)
	}
	if len(unplaced) != 2 || unplaced[1][6] != model.ReasonExceedsSheet {
		t.Errorf("unexpected unplaced rows %v", unplaced)
	}

	offcuts, err := f.GetRows(SheetOffcuts)
	if err != nil {
		t.Fatal(err)
	}
	want0 := len(model.DetectAllOffcuts(result, materials))
	if want0 == 0 || len(offcuts) != 1+want0 {
		t.Errorf("expected %d offcut rows, got %d", want0, len(offcuts)-1)
	}
}

func TestExportXLSX_NothingToExport(t *testing.T) {
	if err := ExportXLSX(filepath.Join(t.TempDir(), "empty.xlsx"), model.Result{}, nil); err == nil {
		t.Fatal("expected error for empty result, got nil")
	}
}
