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

func (e *env) catalog() (model.Catalog, error) {
	return project.LoadCatalog(e.opts.CatalogPath)
}

func catalogCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List or import the material catalog",
	}
	cmd.AddCommand(catalogListCmd(e), catalogImportCmd(e))
	return cmd
}

// catalog list: print every board in code order.
func catalogListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the boards in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.catalog()
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%-14s %-34s %12s %6s %9s %s\n", "CODE", "NAME", "SIZE", "THK", "PRICE", "GRAIN")
			for _, code := range c.Codes() {
				m := c.Find(code)
				fmt.Fprintf(e.out, "%-14s %-34s %12s %6.1f %9.2f %s\n",
					m.Code, m.Name, fmt.Sprintf("%.0fx%.0f", m.Width, m.Height), m.Thickness, m.Price, m.Grain)
			}
			return nil
		},
	}
}

// catalog import <file>: merge boards from a JSON catalog or a CSV/Excel board list.
func catalogImportCmd(e *env) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <catalog.json|boards.csv|boards.xlsx>",
		Short: "Add boards to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			c, err := e.catalog()
			if err != nil {
				return err
			}
			before := len(c.Materials)

			var incoming model.Catalog
			if strings.EqualFold(filepath.Ext(path), ".json") {
				if incoming, err = project.ImportCatalog(path, model.Catalog{}); err != nil {
					return err
				}
			} else {
				res := importer.ImportMaterials(path)
				e.logImport(path, res)
				if !res.OK() {
					return fmt.Errorf("failed to import %s: %s", path, strings.Join(res.Errors, "; "))
				}
				incoming.Materials = res.Materials
			}

			if replace {
				for _, m := range incoming.Materials {
					c.Upsert(m)
				}
			} else {
				c.Merge(incoming)
			}
			if err := project.SaveCatalog(e.opts.CatalogPath, c); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "catalog has %d boards (%d added)\n", len(c.Materials), len(c.Materials)-before)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Overwrite boards whose code already exists")
	return cmd
}
