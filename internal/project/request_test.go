package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/boardcut/internal/model"
)

func TestSaveAndLoadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kitchen.json")

	req := model.Request{
		ProjectName: "Kitchen",
		Pieces: []model.Piece{
			{ID: "side", Label: "Side", Width: 720, Height: 560, Quantity: 2, Material: "MEL18", Grain: model.GrainVertical},
		},
		Materials:  []model.Material{model.NewMaterial("MEL18", 2440, 1830, 62)},
		Parameters: model.CuttingParameters{Kerf: 4, TopTrim: 10},
		SplitRule:  model.SplitLongerAxisFirst,
		MaxSheets:  5,
	}
	if err := SaveRequest(path, req); err != nil {
		t.Fatalf("SaveRequest failed: %v", err)
	}

	loaded, err := LoadRequest(path)
	if err != nil {
		t.Fatalf("LoadRequest failed: %v", err)
	}
	if loaded.ProjectName != "Kitchen" || loaded.SplitRule != model.SplitLongerAxisFirst || loaded.MaxSheets != 5 {
		t.Errorf("unexpected request %+v", loaded)
	}
	if len(loaded.Pieces) != 1 || loaded.Pieces[0] != req.Pieces[0] {
		t.Errorf("piece mismatch: %+v", loaded.Pieces)
	}
	if loaded.Parameters != req.Parameters {
		t.Errorf("parameters mismatch: %+v", loaded.Parameters)
	}
}

func TestLoadRequestRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.json")
	if err := os.WriteFile(path, []byte(`{"pieces":[],"kerf_width":3}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadRequest(path)
	if err == nil || !strings.Contains(err.Error(), "kerf_width") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadRequestMissingFile(t *testing.T) {
	if _, err := LoadRequest(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
