package engine

import (
	"context"

	"github.com/piwi3910/boardcut/internal/model"
)

// ComparisonResult holds the outcome and headline figures of one split rule.
type ComparisonResult struct {
	Rule          model.SplitRule
	Result        model.Result
	SheetsUsed    int
	TotalCost     float64
	Utilization   float64
	WastePercent  float64
	UnplacedCount int
}

// CompareSplitRules packs req once per supported split rule so the layouts
// can be compared side by side. Results follow model.SplitRules order.
func (o *Optimizer) CompareSplitRules(ctx context.Context, req model.Request) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(model.SplitRules))

	for _, rule := range model.SplitRules {
		scenario := req
		scenario.SplitRule = rule
		result, err := o.Optimize(ctx, scenario)
		if err != nil {
			return nil, err
		}

		results = append(results, ComparisonResult{
			Rule:          rule,
			Result:        result,
			SheetsUsed:    result.SheetsUsed,
			TotalCost:     result.TotalCost,
			Utilization:   result.Utilization,
			WastePercent:  result.WastePercent,
			UnplacedCount: len(result.Unplaced),
		})
	}

	return results, nil
}

// Best returns the index of the cheapest comparison, preferring fewer
// unplaced pieces, then lower cost, then higher utilization. Ties keep the
// earlier rule. Returns -1 for an empty slice.
func Best(results []ComparisonResult) int {
	best := -1
	for i, r := range results {
		if best < 0 {
			best = i
			continue
		}
		b := results[best]
		switch {
		case r.UnplacedCount != b.UnplacedCount:
			if r.UnplacedCount < b.UnplacedCount {
				best = i
			}
		case r.TotalCost != b.TotalCost:
			if r.TotalCost < b.TotalCost {
				best = i
			}
		case r.Utilization > b.Utilization:
			best = i
		}
	}
	return best
}
