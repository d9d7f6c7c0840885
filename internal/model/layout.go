package model

import "time"

// PlacedPiece is one unit of a piece placed on a sheet.
type PlacedPiece struct {
	Piece    Piece   `json:"piece"`
	Instance int     `json:"instance"` // 1-based unit number within Piece.Quantity
	X        float64 `json:"x"`        // Position from left edge of the board (mm)
	Y        float64 `json:"y"`        // Position from top edge of the board (mm)
	Width    float64 `json:"width"`    // Placed width, after rotation
	Height   float64 `json:"height"`   // Placed height, after rotation
	Rotated  bool    `json:"rotated"`
}

func (p PlacedPiece) Area() float64 {
	return p.Width * p.Height
}

// Bounds returns the rectangle covered by the piece.
func (p PlacedPiece) Bounds() FreeRect {
	return FreeRect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

// CuttingLayout is one sheet instance with its placements and leftover space.
type CuttingLayout struct {
	MaterialCode string        `json:"material"`
	SheetIndex   int           `json:"sheet_index"` // 1-based, per material
	Board        Rectangle     `json:"board"`
	Usable       FreeRect      `json:"usable"`
	Placements   []PlacedPiece `json:"placements"`
	FreeRects    []FreeRect    `json:"free_rects"`
	CutLossArea  float64       `json:"cut_loss_area"` // Area consumed by kerf and discarded slivers
}

// UsedArea returns the total area covered by placed pieces.
func (l CuttingLayout) UsedArea() float64 {
	var total float64
	for _, p := range l.Placements {
		total += p.Area()
	}
	return total
}

// FreeArea returns the total area of the remaining free rectangles.
func (l CuttingLayout) FreeArea() float64 {
	var total float64
	for _, f := range l.FreeRects {
		total += f.Area()
	}
	return total
}

// Utilization returns placed area over usable area, in [0, 1].
func (l CuttingLayout) Utilization() float64 {
	ua := l.Usable.Area()
	if ua <= 0 {
		return 0
	}
	return l.UsedArea() / ua
}

// WastePercent returns the share of the usable area not covered by pieces, 0..100.
func (l CuttingLayout) WastePercent() float64 {
	if l.Usable.Area() <= 0 {
		return 0
	}
	return (1 - l.Utilization()) * 100
}

// Unplaced reasons.
const (
	ReasonExceedsSheet = "exceeds_sheet"
	ReasonSheetLimit   = "sheet_limit"
)

// UnplacedPiece is a piece unit that could not be placed.
type UnplacedPiece struct {
	Piece    Piece  `json:"piece"`
	Instance int    `json:"instance"`
	Reason   string `json:"reason"`
}

// MaterialCost summarizes sheet consumption for one material.
type MaterialCost struct {
	MaterialCode string  `json:"material"`
	SheetsUsed   int     `json:"sheets_used"`
	MinSheets    int     `json:"min_sheets"` // Area lower bound
	UnitPrice    float64 `json:"unit_price"`
	TotalCost    float64 `json:"total_cost"`
	Utilization  float64 `json:"utilization"`
}

// Result is the complete packing outcome for a request.
type Result struct {
	Hash         string          `json:"hash"`
	ProjectName  string          `json:"project_name"`
	SplitRule    SplitRule       `json:"split_rule"`
	Layouts      []CuttingLayout `json:"layouts"`
	Unplaced     []UnplacedPiece `json:"unplaced"`
	Costs        []MaterialCost  `json:"costs"`
	TotalCost    float64         `json:"total_cost"`
	SheetsUsed   int             `json:"sheets_used"`
	Utilization  float64         `json:"utilization"`
	WastePercent float64         `json:"waste_percent"`
	Elapsed      time.Duration   `json:"elapsed_ns"`
	Cached       bool            `json:"cached"`
}

// PlacedCount returns the number of piece units placed across all sheets.
func (r Result) PlacedCount() int {
	n := 0
	for _, l := range r.Layouts {
		n += len(l.Placements)
	}
	return n
}

// LayoutsFor returns the layouts of one material in sheet order.
func (r Result) LayoutsFor(code string) []CuttingLayout {
	var out []CuttingLayout
	for _, l := range r.Layouts {
		if l.MaterialCode == code {
			out = append(out, l)
		}
	}
	return out
}
