package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// Epsilon is the tolerance used for all dimension comparisons, in mm.
const Epsilon = 0.001

// Grain represents the grain direction constraint for a piece or a board.
type Grain int

const (
	GrainNone       Grain = iota // No grain constraint, can rotate freely
	GrainHorizontal              // Grain runs along the width
	GrainVertical                // Grain runs along the height
)

func (g Grain) String() string {
	switch g {
	case GrainHorizontal:
		return "Horizontal"
	case GrainVertical:
		return "Vertical"
	default:
		return "None"
	}
}

// ParseGrain converts "h", "horizontal", "v", "vertical" or an empty string to a Grain.
func ParseGrain(s string) (Grain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "n", "-":
		return GrainNone, nil
	case "h", "horizontal":
		return GrainHorizontal, nil
	case "v", "vertical":
		return GrainVertical, nil
	default:
		return GrainNone, fmt.Errorf("unknown grain direction %q", s)
	}
}

// CanPlaceWithGrain reports which orientations a piece may take on a board.
// A grain-free piece may rotate. A piece with grain keeps its orientation and
// only goes on grain-free boards or boards with the same grain.
func CanPlaceWithGrain(piece, board Grain) (canNormal, canRotated bool) {
	if piece == GrainNone {
		return true, true
	}
	if board == GrainNone || board == piece {
		return true, false
	}
	return false, false
}

// Rectangle is a width x height extent in mm.
type Rectangle struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rectangle) Area() float64 {
	return r.Width * r.Height
}

// Valid reports whether both dimensions are finite and strictly positive.
func (r Rectangle) Valid() bool {
	return Finite(r.Width) && Finite(r.Height) && r.Width > 0 && r.Height > 0
}

// Finite reports whether v is neither NaN nor an infinity.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FreeRect is unused sheet area still available for placement.
type FreeRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (f FreeRect) Area() float64 {
	return f.Width * f.Height
}

// Fits reports whether a w x h piece fits inside the rectangle. Packed
// sizes are whole hundredths of a mm, so Epsilon only absorbs float error
// from subtracting kerf and trims and never admits a larger piece.
func (f FreeRect) Fits(w, h float64) bool {
	return w <= f.Width+Epsilon && h <= f.Height+Epsilon
}

// Piece is a required rectangular cut. Quantity is at least 1.
type Piece struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Width    float64 `json:"width"`  // mm
	Height   float64 `json:"height"` // mm
	Quantity int     `json:"quantity"`
	Material string  `json:"material"` // Material code
	Grain    Grain   `json:"grain"`
}

func NewPiece(label string, w, h float64, qty int, material string) Piece {
	return Piece{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Width:    w,
		Height:   h,
		Quantity: qty,
		Material: material,
		Grain:    GrainNone,
	}
}

func (p Piece) Area() float64 {
	return p.Width * p.Height
}

// Material is a sheet stock board. Codes are unique within a request.
type Material struct {
	Code      string  `json:"code"`
	Name      string  `json:"name,omitempty"`
	Width     float64 `json:"width"`     // mm
	Height    float64 `json:"height"`    // mm
	Thickness float64 `json:"thickness"` // mm
	Price     float64 `json:"price"`     // per sheet
	Grain     Grain   `json:"grain"`
}

func NewMaterial(code string, w, h, price float64) Material {
	return Material{
		Code:   code,
		Name:   code,
		Width:  w,
		Height: h,
		Price:  price,
		Grain:  GrainNone,
	}
}

// Size returns the full board size.
func (m Material) Size() Rectangle {
	return Rectangle{Width: m.Width, Height: m.Height}
}

// CuttingParameters holds the blade width and the edge trims, all in mm.
type CuttingParameters struct {
	Kerf       float64 `json:"kerf"`
	TopTrim    float64 `json:"top_trim"`
	BottomTrim float64 `json:"bottom_trim"`
	LeftTrim   float64 `json:"left_trim"`
	RightTrim  float64 `json:"right_trim"`
}

// UsableArea returns the board area left after trims, positioned from the
// top-left corner of the board.
func (cp CuttingParameters) UsableArea(m Material) FreeRect {
	return FreeRect{
		X:      cp.LeftTrim,
		Y:      cp.TopTrim,
		Width:  m.Width - cp.LeftTrim - cp.RightTrim,
		Height: m.Height - cp.TopTrim - cp.BottomTrim,
	}
}

// SplitRule decides how a consumed free rectangle is divided after a placement.
type SplitRule string

const (
	SplitShorterAxisFirst SplitRule = "shorter_axis_first"
	SplitLongerAxisFirst  SplitRule = "longer_axis_first"
)

// SplitRules lists every supported rule in a stable order.
var SplitRules = []SplitRule{SplitShorterAxisFirst, SplitLongerAxisFirst}

func (r SplitRule) String() string {
	return string(r)
}

// ParseSplitRule accepts the rule names plus the short forms "shorter" and "longer".
// An empty string yields the default rule.
func ParseSplitRule(s string) (SplitRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shorter", "shorter_axis_first", "shorter-axis-first":
		return SplitShorterAxisFirst, nil
	case "longer", "longer_axis_first", "longer-axis-first":
		return SplitLongerAxisFirst, nil
	default:
		return "", fmt.Errorf("unknown split rule %q", s)
	}
}

// FullWidthBottom decides, for the given horizontal and vertical leftovers,
// whether the bottom residual spans the full free width (the right residual
// is then bounded to the piece height). Otherwise the right residual spans
// the full free height and the bottom residual is bounded to the piece width.
func (r SplitRule) FullWidthBottom(leftoverW, leftoverH float64) bool {
	switch r {
	case SplitLongerAxisFirst:
		return leftoverW > leftoverH
	default:
		return leftoverW <= leftoverH
	}
}

// DefaultMaxSheets caps the number of sheets opened per material.
const DefaultMaxSheets = 100

// Request is a validated, material-grouped packing request.
type Request struct {
	ProjectName string            `json:"project_name"`
	Pieces      []Piece           `json:"pieces"`
	Materials   []Material        `json:"materials"`
	Parameters  CuttingParameters `json:"cutting_parameters"`
	SplitRule   SplitRule         `json:"split_rule,omitempty"`
	MaxSheets   int               `json:"max_sheets,omitempty"`
}

// EffectiveSplitRule returns the request's rule in canonical form, or the
// default one when unset. Unknown rules are returned unchanged.
func (r Request) EffectiveSplitRule() SplitRule {
	rule, err := ParseSplitRule(string(r.SplitRule))
	if err != nil {
		return r.SplitRule
	}
	return rule
}

// EffectiveMaxSheets returns the request's sheet cap or DefaultMaxSheets.
func (r Request) EffectiveMaxSheets() int {
	if r.MaxSheets <= 0 {
		return DefaultMaxSheets
	}
	return r.MaxSheets
}

// MaterialByCode returns the material with the given code.
func (r Request) MaterialByCode(code string) (Material, bool) {
	for _, m := range r.Materials {
		if m.Code == code {
			return m, true
		}
	}
	return Material{}, false
}
