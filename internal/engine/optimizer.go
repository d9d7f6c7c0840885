package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/boardcut/internal/canon"
	"github.com/piwi3910/boardcut/internal/logging"
	"github.com/piwi3910/boardcut/internal/metrics"
	"github.com/piwi3910/boardcut/internal/model"
)

// Config controls how the optimizer runs. The zero value packs materials
// sequentially and logs nothing.
type Config struct {
	// Parallel packs each material group in its own goroutine.
	Parallel bool
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Optimizer turns a multi-material request into sheet layouts.
type Optimizer struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config) *Optimizer {
	return &Optimizer{cfg: cfg, log: logging.OrDiscard(cfg.Logger)}
}

// materialGroup holds the pieces cut from a single material.
type materialGroup struct {
	material model.Material
	pieces   []model.Piece
}

// groupResult is the packing outcome of one material group.
type groupResult struct {
	layouts  []model.CuttingLayout
	unplaced []model.UnplacedPiece
	elapsed  time.Duration
}

// Optimize validates req, packs every material group and aggregates the
// result. Sizes are packed at the precision of canon.Hash, so requests with
// the same hash yield the same layouts. The request is not modified. Pieces that cannot be placed are
// listed in Result.Unplaced; only structural problems with the request
// are returned as errors, and those match model.ErrInvalidParameters.
func (o *Optimizer) Optimize(ctx context.Context, req model.Request) (model.Result, error) {
	start := time.Now()
	req = canon.RoundRequest(req)
	if err := Validate(req); err != nil {
		return model.Result{}, err
	}

	rule := req.EffectiveSplitRule()
	maxSheets := req.EffectiveMaxSheets()
	groups := groupByMaterial(req)
	results := make([]groupResult, len(groups))

	pack := func(ctx context.Context, i int) error {
		g := groups[i]
		res, err := packGroup(ctx, g, req.Parameters, rule, maxSheets)
		if err != nil {
			return err
		}
		results[i] = res
		o.cfg.Metrics.ObservePack(g.material.Code, res.elapsed.Seconds(), len(res.layouts))
		o.log.Debug("packed material group",
			"material", g.material.Code,
			"pieces", len(g.pieces),
			"sheets", len(res.layouts),
			"unplaced", len(res.unplaced),
			"elapsed", res.elapsed)
		return nil
	}

	if o.cfg.Parallel && len(groups) > 1 {
		eg, egCtx := errgroup.WithContext(ctx)
		for i := range groups {
			i := i
			eg.Go(func() error { return pack(egCtx, i) })
		}
		if err := eg.Wait(); err != nil {
			return model.Result{}, err
		}
	} else {
		for i := range groups {
			if err := pack(ctx, i); err != nil {
				return model.Result{}, err
			}
		}
	}

	result := aggregate(req, groups, results)
	result.SplitRule = rule
	result.Elapsed = time.Since(start)
	for _, u := range result.Unplaced {
		o.cfg.Metrics.UnplacedPiece(u.Reason)
	}
	return result, nil
}

// Validate reports every structural problem of req at once. The returned
// error matches model.ErrInvalidParameters.
func Validate(req model.Request) error {
	var err error
	if _, perr := model.ParseSplitRule(string(req.SplitRule)); perr != nil {
		err = multierr.Append(err, &model.ParameterError{Field: "split_rule", Reason: perr.Error()})
	}
	if req.MaxSheets < 0 {
		err = multierr.Append(err, &model.ParameterError{Field: "max_sheets", Reason: "must not be negative"})
	}

	codes := make(map[string]bool, len(req.Materials))
	for _, m := range req.Materials {
		if m.Code == "" {
			err = multierr.Append(err, &model.ParameterError{Field: "material", Reason: "empty material code"})
			continue
		}
		if codes[m.Code] {
			err = multierr.Append(err, &model.ParameterError{Field: "material", Material: m.Code, Reason: "duplicate material code"})
			continue
		}
		codes[m.Code] = true
		if !model.Finite(m.Price) || m.Price < 0 {
			err = multierr.Append(err, &model.ParameterError{Field: "price", Material: m.Code, Reason: "must be a finite, non-negative number"})
		}
		if !model.Finite(m.Thickness) {
			err = multierr.Append(err, &model.ParameterError{Field: "thickness", Material: m.Code, Reason: "must be a finite number"})
		}
		err = multierr.Append(err, req.Parameters.Validate(m))
	}

	unknown := make(map[string]bool)
	for _, p := range req.Pieces {
		if !codes[p.Material] && !unknown[p.Material] {
			unknown[p.Material] = true
			err = multierr.Append(err, &model.ParameterError{Field: "material", Material: p.Material, Reason: "unknown material code"})
		}
		if p.Quantity < 1 {
			err = multierr.Append(err, &model.ParameterError{Field: "quantity",
				Reason: fmt.Sprintf("piece %q has quantity %d", p.Label, p.Quantity)})
		}
		if !(model.Rectangle{Width: p.Width, Height: p.Height}).Valid() {
			err = multierr.Append(err, &model.ParameterError{Field: "size",
				Reason: fmt.Sprintf("piece %q is %.2f x %.2f", p.Label, p.Width, p.Height)})
		}
	}
	return err
}

// groupByMaterial splits the pieces by material code, in code order.
// Materials without pieces produce no group.
func groupByMaterial(req model.Request) []materialGroup {
	byCode := make(map[string]*materialGroup)
	for _, p := range req.Pieces {
		g, ok := byCode[p.Material]
		if !ok {
			m, _ := req.MaterialByCode(p.Material)
			g = &materialGroup{material: m}
			byCode[p.Material] = g
		}
		g.pieces = append(g.pieces, p)
	}

	codes := make([]string, 0, len(byCode))
	for c := range byCode {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	groups := make([]materialGroup, 0, len(codes))
	for _, c := range codes {
		groups = append(groups, *byCode[c])
	}
	return groups
}

// packGroup fills sheets of one material until every piece is placed or
// declared unplaceable. Pieces that do not fit an empty sheet never open one.
// ctx is checked before each new sheet.
func packGroup(ctx context.Context, g materialGroup, params model.CuttingParameters, rule model.SplitRule, maxSheets int) (groupResult, error) {
	start := time.Now()
	var res groupResult

	instances := expandInstances(g.pieces)
	sortInstances(instances)

	pending := make([]instance, 0, len(instances))
	for _, in := range instances {
		if !FitsEmptySheet(in.piece, g.material, params) {
			res.unplaced = append(res.unplaced, model.UnplacedPiece{Piece: in.piece, Instance: in.n, Reason: model.ReasonExceedsSheet})
			continue
		}
		pending = append(pending, in)
	}

	for sheet := 1; len(pending) > 0; sheet++ {
		if err := ctx.Err(); err != nil {
			return groupResult{}, fmt.Errorf("failed to pack material %s: %w", g.material.Code, err)
		}
		if sheet > maxSheets {
			for _, in := range pending {
				res.unplaced = append(res.unplaced, model.UnplacedPiece{Piece: in.piece, Instance: in.n, Reason: model.ReasonSheetLimit})
			}
			break
		}

		pk := NewPacker(g.material, params, rule)
		var next []instance
		for _, in := range pending {
			if _, ok := pk.Place(in.piece, in.n); !ok {
				next = append(next, in)
			}
		}
		res.layouts = append(res.layouts, pk.Layout(sheet))
		pending = next
	}

	res.elapsed = time.Since(start)
	return res, nil
}

// aggregate merges group results in material code order and computes the
// per-material and overall cost and utilization figures.
func aggregate(req model.Request, groups []materialGroup, results []groupResult) model.Result {
	result := model.Result{ProjectName: req.ProjectName}

	var placedArea, usableArea float64
	for i, g := range groups {
		res := results[i]
		result.Layouts = append(result.Layouts, res.layouts...)
		result.Unplaced = append(result.Unplaced, res.unplaced...)

		var groupPlaced, groupUsable float64
		for _, l := range res.layouts {
			groupPlaced += l.UsedArea()
			groupUsable += l.Usable.Area()
		}
		cost := model.MaterialCost{
			MaterialCode: g.material.Code,
			SheetsUsed:   len(res.layouts),
			MinSheets:    model.CalculatePurchaseEstimate(g.pieces, g.material, req.Parameters).SheetsNeededMin,
			UnitPrice:    g.material.Price,
			TotalCost:    float64(len(res.layouts)) * g.material.Price,
		}
		if groupUsable > 0 {
			cost.Utilization = groupPlaced / groupUsable
		}
		result.Costs = append(result.Costs, cost)
		result.TotalCost += cost.TotalCost
		result.SheetsUsed += cost.SheetsUsed
		placedArea += groupPlaced
		usableArea += groupUsable
	}

	if usableArea > 0 {
		result.Utilization = placedArea / usableArea
		result.WastePercent = (1 - result.Utilization) * 100
	}
	return result
}
