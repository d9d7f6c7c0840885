package model

import (
	"errors"
	"testing"
)

func TestDefaultCatalogCodesUnique(t *testing.T) {
	c := DefaultCatalog()
	seen := make(map[string]bool)
	for _, code := range c.Codes() {
		if seen[code] {
			t.Errorf("duplicate code %s", code)
		}
		seen[code] = true
	}
	if len(seen) == 0 {
		t.Fatal("expected a non-empty default catalog")
	}
}

func TestCatalogUpsertAndMerge(t *testing.T) {
	c := Catalog{}
	c.Upsert(NewMaterial("A", 100, 100, 1))
	c.Upsert(NewMaterial("A", 200, 100, 2))
	if len(c.Materials) != 1 || c.Find("A").Width != 200 {
		t.Fatalf("expected replaced entry, got %+v", c.Materials)
	}

	c.Merge(Catalog{Materials: []Material{NewMaterial("A", 1, 1, 0), NewMaterial("B", 300, 300, 3)}})
	if len(c.Materials) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(c.Materials))
	}
	if c.Find("A").Width != 200 {
		t.Error("merge must not overwrite existing entries")
	}
}

func TestCatalogResolve(t *testing.T) {
	c := Catalog{Materials: []Material{NewMaterial("CAT", 2440, 1220, 40)}}
	req := Request{
		Pieces: []Piece{
			NewPiece("a", 100, 100, 1, "CAT"),
			NewPiece("b", 100, 100, 1, "OWN"),
			NewPiece("c", 100, 100, 1, "CAT"),
		},
		Materials: []Material{NewMaterial("OWN", 1000, 1000, 10)},
	}
	out, err := c.Resolve(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Materials) != 2 {
		t.Errorf("expected 2 materials, got %d", len(out.Materials))
	}
	if len(req.Materials) != 1 {
		t.Error("Resolve must not mutate the input request")
	}

	req.Pieces = append(req.Pieces, NewPiece("d", 1, 1, 1, "NOPE"))
	if _, err := c.Resolve(req); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("expected ErrInvalidParameters, got %v", err)
	}
}
