package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/boardcut/internal/importer"
	"github.com/piwi3910/boardcut/internal/model"
	"github.com/piwi3910/boardcut/internal/project"
)

// requestFlags are the flags shared by commands that read a request.
type requestFlags struct {
	materialsPath   string
	defaultMaterial string
	project         string
	kerf            float64
	splitRule       string
	maxSheets       int
}

func (f *requestFlags) add(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.materialsPath, "materials", "", "CSV or Excel board list to add to the request")
	fs.StringVarP(&f.defaultMaterial, "material", "m", "", "Material code for cut list rows without one")
	fs.StringVar(&f.project, "project", "", "Project name")
	fs.Float64Var(&f.kerf, "kerf", 0, "Saw kerf in mm")
	fs.StringVar(&f.splitRule, "split-rule", "", "Split rule: shorter_axis_first or longer_axis_first")
	fs.IntVar(&f.maxSheets, "max-sheets", 0, "Maximum sheets per material")
}

// loadRequest reads path as a JSON request or as a CSV/Excel cut list,
// then applies flags, config defaults and the catalog.
func (e *env) loadRequest(cmd *cobra.Command, path string, f *requestFlags) (model.Request, error) {
	var req model.Request
	if strings.EqualFold(filepath.Ext(path), ".json") {
		r, err := project.LoadRequest(path)
		if err != nil {
			return model.Request{}, err
		}
		req = r
	} else {
		res := importer.ImportPieces(path, f.defaultMaterial)
		e.logImport(path, res)
		if !res.OK() {
			return model.Request{}, fmt.Errorf("failed to import %s: %s", path, strings.Join(res.Errors, "; "))
		}
		req.Pieces = res.Pieces
		req.ProjectName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if f.materialsPath != "" {
		res := importer.ImportMaterials(f.materialsPath)
		e.logImport(f.materialsPath, res)
		if !res.OK() {
			return model.Request{}, fmt.Errorf("failed to import %s: %s", f.materialsPath, strings.Join(res.Errors, "; "))
		}
		for _, m := range res.Materials {
			if _, ok := req.MaterialByCode(m.Code); !ok {
				req.Materials = append(req.Materials, m)
			}
		}
	}

	fs := cmd.Flags()
	if fs.Changed("project") {
		req.ProjectName = f.project
	}
	if fs.Changed("kerf") {
		req.Parameters.Kerf = f.kerf
	}
	if fs.Changed("split-rule") {
		rule, err := model.ParseSplitRule(f.splitRule)
		if err != nil {
			return model.Request{}, &model.ParameterError{Field: "split_rule", Reason: err.Error()}
		}
		req.SplitRule = rule
	}
	if fs.Changed("max-sheets") {
		req.MaxSheets = f.maxSheets
	}
	e.cfg.ApplyToRequest(&req)

	catalog, err := e.catalog()
	if err != nil {
		return model.Request{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	return catalog.Resolve(req)
}

func (e *env) logImport(path string, res importer.ImportResult) {
	for _, w := range res.Warnings {
		e.log.Warn("import warning", "file", path, "detail", w)
	}
	e.log.Debug("imported file", "file", path, "pieces", len(res.Pieces), "materials", len(res.Materials), "errors", len(res.Errors))
}
