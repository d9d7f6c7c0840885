package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/boardcut/internal/model"
)

// DefaultCatalogPath returns the default file path for the material catalog.
// This is located at ~/.boardcut/catalog.json.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultConfigDir(), "catalog.json")
}

// SaveCatalog writes the catalog to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveCatalog(path string, c model.Catalog) error {
	return writeJSON(path, c)
}

// LoadCatalog reads the catalog from the specified JSON file.
// If the file does not exist, it returns the default catalog and saves it.
func LoadCatalog(path string) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c := model.DefaultCatalog()
			if saveErr := SaveCatalog(path, c); saveErr != nil {
				return c, saveErr
			}
			return c, nil
		}
		return model.Catalog{}, err
	}
	var c model.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return model.Catalog{}, err
	}
	return c, nil
}

// ImportCatalog merges the catalog stored at path into existing. Codes
// already present in existing are skipped.
func ImportCatalog(path string, existing model.Catalog) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Catalog
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}
	existing.Merge(imported)
	return existing, nil
}
