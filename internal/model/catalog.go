package model

import (
	"fmt"
	"sort"
)

// Catalog holds the boards a shop usually stocks, keyed by material code.
// Requests may reference catalog codes without repeating the board definition.
type Catalog struct {
	Materials []Material `json:"materials"`
}

// DefaultCatalog returns a catalog populated with common melamine boards.
func DefaultCatalog() Catalog {
	return Catalog{
		Materials: []Material{
			{Code: "MEL18-WHITE", Name: "Melamine white 18mm 2440x1830", Width: 2440, Height: 1830, Thickness: 18, Price: 62.00},
			{Code: "MEL15-WHITE", Name: "Melamine white 15mm 2440x1830", Width: 2440, Height: 1830, Thickness: 15, Price: 54.00},
			{Code: "MEL18-OAK", Name: "Melamine oak 18mm 2750x1830", Width: 2750, Height: 1830, Thickness: 18, Price: 78.50, Grain: GrainHorizontal},
			{Code: "MEL18-STD", Name: "Melamine 18mm 2440x1220", Width: 2440, Height: 1220, Thickness: 18, Price: 45.00},
			{Code: "MDF3-BACK", Name: "MDF backing 3mm 2440x1220", Width: 2440, Height: 1220, Thickness: 3, Price: 12.00},
		},
	}
}

// Find returns a pointer to the material with the given code, or nil.
func (c *Catalog) Find(code string) *Material {
	for i := range c.Materials {
		if c.Materials[i].Code == code {
			return &c.Materials[i]
		}
	}
	return nil
}

// Codes returns the catalog codes in sorted order.
func (c *Catalog) Codes() []string {
	codes := make([]string, len(c.Materials))
	for i, m := range c.Materials {
		codes[i] = m.Code
	}
	sort.Strings(codes)
	return codes
}

// Upsert adds m or replaces the entry with the same code.
func (c *Catalog) Upsert(m Material) {
	if existing := c.Find(m.Code); existing != nil {
		*existing = m
		return
	}
	c.Materials = append(c.Materials, m)
}

// Merge adds every material of other whose code is not yet present.
// Existing entries win.
func (c *Catalog) Merge(other Catalog) {
	for _, m := range other.Materials {
		if c.Find(m.Code) == nil {
			c.Materials = append(c.Materials, m)
		}
	}
}

// Resolve returns a copy of the request where every material code used by a
// piece but missing from the request is taken from the catalog. Codes found
// in neither place are reported as an error.
func (c *Catalog) Resolve(req Request) (Request, error) {
	out := req
	out.Materials = append([]Material(nil), req.Materials...)
	var missing []string
	seen := make(map[string]bool)
	for _, p := range req.Pieces {
		if seen[p.Material] {
			continue
		}
		seen[p.Material] = true
		if _, ok := out.MaterialByCode(p.Material); ok {
			continue
		}
		if m := c.Find(p.Material); m != nil {
			out.Materials = append(out.Materials, *m)
			continue
		}
		missing = append(missing, p.Material)
	}
	if len(missing) > 0 {
		return req, &ParameterError{Field: "material", Reason: fmt.Sprintf("unknown material codes %v", missing)}
	}
	return out, nil
}
