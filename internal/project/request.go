package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/boardcut/internal/model"
)

// SaveRequest writes an optimization request to a JSON file.
func SaveRequest(path string, req model.Request) error {
	return writeJSON(path, req)
}

// LoadRequest reads an optimization request from a JSON file. Unknown
// fields are rejected so typos in parameter names don't pass silently.
func LoadRequest(path string) (model.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Request{}, err
	}
	defer f.Close()

	var req model.Request
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return model.Request{}, fmt.Errorf("failed to parse request %s: %w", path, err)
	}
	return req, nil
}
