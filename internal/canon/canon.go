// Package canon builds the order-independent form of a packing request and
// the content hash that identifies its result.
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/piwi3910/boardcut/internal/model"
)

// SchemaVersion is bumped whenever the canonical form or the packing output
// changes in a way that invalidates cached results.
const SchemaVersion = "boardcut/v1"

// Canonical is the normalized form of a request. Field order is fixed and
// every number is a fixed-point string with two decimals.
type Canonical struct {
	Version    string              `json:"v"`
	Materials  []CanonicalMaterial `json:"materials"`
	Pieces     []CanonicalPiece    `json:"pieces"`
	Parameters [5]string           `json:"params"` // kerf, top, bottom, left, right
	SplitRule  string              `json:"split_rule"`
	MaxSheets  int                 `json:"max_sheets"`
}

type CanonicalMaterial struct {
	Code      string `json:"code"`
	Width     string `json:"w"`
	Height    string `json:"h"`
	Thickness string `json:"t"`
	Price     string `json:"price"`
	Grain     string `json:"grain"`
}

type CanonicalPiece struct {
	Material string `json:"material"`
	Width    string `json:"w"`
	Height   string `json:"h"`
	Label    string `json:"label"`
	Grain    string `json:"grain"`
	Quantity int    `json:"qty"`
}

// pieceKey identifies pieces that produce identical placements.
type pieceKey struct {
	material string
	width    int64
	height   int64
	label    string
	grain    model.Grain
}

// cents rounds v to 0.01 and returns it as an integer count of hundredths.
func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fixed(c int64) string {
	return strconv.FormatFloat(float64(c)/100, 'f', 2, 64)
}

func number(v float64) string {
	return fixed(cents(v))
}

// round snaps v to the hundredth that cents counts, so cents(round(v)) ==
// cents(v) and equal cents always give the same float.
func round(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundRequest returns a copy of req with every length, parameter and price
// rounded to the precision of the canonical form. Packing the rounded copy
// makes requests with equal hashes pack identically. Non-finite values are
// kept so validation can reject them.
func RoundRequest(req model.Request) model.Request {
	out := req
	out.Parameters = model.CuttingParameters{
		Kerf:       round(req.Parameters.Kerf),
		TopTrim:    round(req.Parameters.TopTrim),
		BottomTrim: round(req.Parameters.BottomTrim),
		LeftTrim:   round(req.Parameters.LeftTrim),
		RightTrim:  round(req.Parameters.RightTrim),
	}
	if req.Materials != nil {
		out.Materials = make([]model.Material, len(req.Materials))
		for i, m := range req.Materials {
			m.Width, m.Height = round(m.Width), round(m.Height)
			m.Thickness, m.Price = round(m.Thickness), round(m.Price)
			out.Materials[i] = m
		}
	}
	if req.Pieces != nil {
		out.Pieces = make([]model.Piece, len(req.Pieces))
		for i, p := range req.Pieces {
			p.Width, p.Height = round(p.Width), round(p.Height)
			out.Pieces[i] = p
		}
	}
	return out
}

// Normalize returns the canonical form of req. The request is not modified.
// Piece IDs are ignored; pieces differing only by ID are merged and their
// quantities summed.
func Normalize(req model.Request) Canonical {
	c := Canonical{
		Version:   SchemaVersion,
		SplitRule: req.EffectiveSplitRule().String(),
		MaxSheets: req.EffectiveMaxSheets(),
		Parameters: [5]string{
			number(req.Parameters.Kerf),
			number(req.Parameters.TopTrim),
			number(req.Parameters.BottomTrim),
			number(req.Parameters.LeftTrim),
			number(req.Parameters.RightTrim),
		},
	}

	c.Materials = make([]CanonicalMaterial, 0, len(req.Materials))
	for _, m := range req.Materials {
		c.Materials = append(c.Materials, CanonicalMaterial{
			Code:      m.Code,
			Width:     number(m.Width),
			Height:    number(m.Height),
			Thickness: number(m.Thickness),
			Price:     number(m.Price),
			Grain:     m.Grain.String(),
		})
	}
	sort.SliceStable(c.Materials, func(i, j int) bool {
		return c.Materials[i].Code < c.Materials[j].Code
	})

	qty := make(map[pieceKey]int)
	var keys []pieceKey
	for _, p := range req.Pieces {
		k := pieceKey{
			material: p.Material,
			width:    cents(p.Width),
			height:   cents(p.Height),
			label:    p.Label,
			grain:    p.Grain,
		}
		if _, ok := qty[k]; !ok {
			keys = append(keys, k)
		}
		qty[k] += p.Quantity
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.material != b.material {
			return a.material < b.material
		}
		if a.width != b.width {
			return a.width < b.width
		}
		if a.height != b.height {
			return a.height < b.height
		}
		if a.label != b.label {
			return a.label < b.label
		}
		return a.grain < b.grain
	})

	c.Pieces = make([]CanonicalPiece, 0, len(keys))
	for _, k := range keys {
		c.Pieces = append(c.Pieces, CanonicalPiece{
			Material: k.material,
			Width:    fixed(k.width),
			Height:   fixed(k.height),
			Label:    k.label,
			Grain:    k.grain.String(),
			Quantity: qty[k],
		})
	}
	return c
}

// Bytes returns the byte-stable JSON encoding of the canonical form.
func (c Canonical) Bytes() []byte {
	// Only strings, ints and slices of structs: Marshal cannot fail.
	data, _ := json.Marshal(c)
	return data
}

// Hash returns the hex SHA-256 of the canonical form.
func (c Canonical) Hash() string {
	sum := sha256.Sum256(c.Bytes())
	return hex.EncodeToString(sum[:])
}

// Hash returns the content hash of a request.
func Hash(req model.Request) string {
	return Normalize(req).Hash()
}

// ValidHash reports whether s looks like a value returned by Hash.
func ValidHash(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
