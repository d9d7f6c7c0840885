package model

import "math"

// PurchaseEstimate is an area-based lower bound on the sheets a cut list needs.
type PurchaseEstimate struct {
	TotalPieceArea    float64 `json:"total_piece_area"`    // sq mm
	UsableSheetArea   float64 `json:"usable_sheet_area"`   // Area of one sheet after trims (sq mm)
	SheetsNeededExact float64 `json:"sheets_needed_exact"` // Exact fractional number of sheets
	SheetsNeededMin   int     `json:"sheets_needed_min"`   // Ceiling of exact
	EstimatedCost     float64 `json:"estimated_cost"`      // SheetsNeededMin x price
}

// CalculatePurchaseEstimate computes how many sheets of m the pieces need at
// the very least. Kerf is ignored so the bound never overshoots.
func CalculatePurchaseEstimate(pieces []Piece, m Material, params CuttingParameters) PurchaseEstimate {
	var totalPieceArea float64
	for _, p := range pieces {
		totalPieceArea += p.Area() * float64(p.Quantity)
	}

	usable := params.UsableArea(m)
	sheetArea := usable.Area()
	if usable.Width <= 0 || usable.Height <= 0 {
		return PurchaseEstimate{TotalPieceArea: totalPieceArea}
	}

	exact := totalPieceArea / sheetArea
	minSheets := int(math.Ceil(exact - Epsilon))
	if minSheets < 0 {
		minSheets = 0
	}

	return PurchaseEstimate{
		TotalPieceArea:    totalPieceArea,
		UsableSheetArea:   sheetArea,
		SheetsNeededExact: exact,
		SheetsNeededMin:   minSheets,
		EstimatedCost:     float64(minSheets) * m.Price,
	}
}
