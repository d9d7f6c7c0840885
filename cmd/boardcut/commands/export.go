package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/boardcut/internal/export"
	"github.com/piwi3910/boardcut/internal/model"
)

// exportFlags name the files a result is written to.
type exportFlags struct {
	pdf    string
	labels string
	dxf    string
	xlsx   string
}

func (f *exportFlags) add(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.pdf, "pdf", "", "Write the cut sheets as PDF")
	fs.StringVar(&f.labels, "labels", "", "Write QR piece labels as PDF")
	fs.StringVar(&f.dxf, "dxf", "", "Write the layouts as DXF")
	fs.StringVar(&f.xlsx, "xlsx", "", "Write the cut list as an Excel workbook")
}

func (f *exportFlags) empty() bool {
	return f.pdf == "" && f.labels == "" && f.dxf == "" && f.xlsx == ""
}

// write exports result to every requested file.
func (f *exportFlags) write(e *env, result model.Result, materials []model.Material) error {
	targets := []struct {
		path  string
		write func(string) error
	}{
		{f.pdf, func(p string) error { return export.ExportPDF(p, result) }},
		{f.labels, func(p string) error { return export.ExportLabels(p, result) }},
		{f.dxf, func(p string) error { return export.ExportDXF(p, result) }},
		{f.xlsx, func(p string) error { return export.ExportXLSX(p, result, materials) }},
	}
	for _, t := range targets {
		if t.path == "" {
			continue
		}
		if err := t.write(t.path); err != nil {
			return fmt.Errorf("failed to export %s: %w", t.path, err)
		}
		e.log.Info("exported result", "hash", result.Hash, "file", t.path)
	}
	return nil
}

// export <hash>: write a cached result to files.
func exportCmd(e *env) *cobra.Command {
	var ef exportFlags
	cmd := &cobra.Command{
		Use:   "export <hash>",
		Short: "Write a cached result as PDF, labels, DXF or Excel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ef.empty() {
				return fmt.Errorf("nothing to export: set --pdf, --labels, --dxf or --xlsx")
			}
			result, err := e.lookup(cmd, args[0])
			if err != nil {
				return err
			}
			// Offcut values come from catalog prices when the catalog knows the board.
			var materials []model.Material
			if catalog, err := e.catalog(); err == nil {
				materials = catalog.Materials
			} else {
				e.log.Warn("catalog unavailable, offcuts exported without value", "error", err)
			}
			return ef.write(e, result, materials)
		},
	}
	ef.add(cmd)
	return cmd
}
