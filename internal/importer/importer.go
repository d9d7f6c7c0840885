// Package importer reads cut lists and board lists from CSV and Excel files.
// Columns are matched by header name in any order and the CSV delimiter is
// detected from the data.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/boardcut/internal/model"
)

// ImportResult holds the rows that parsed plus per-row problems. Rows with
// errors are skipped; warnings do not prevent a row from being imported.
type ImportResult struct {
	Pieces    []model.Piece
	Materials []model.Material
	Errors    []string
	Warnings  []string
}

// OK reports whether the import produced no errors.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0
}

// Column roles.
const (
	colLabel     = "label"
	colWidth     = "width"
	colHeight    = "height"
	colQuantity  = "quantity"
	colGrain     = "grain"
	colMaterial  = "material"
	colCode      = "code"
	colName      = "name"
	colThickness = "thickness"
	colPrice     = "price"
)

// headerAliases maps a column role to the header spellings it accepts (lowercase).
var headerAliases = map[string][]string{
	colLabel:     {"label", "name", "part", "part name", "description", "desc", "piece", "item"},
	colWidth:     {"width", "w", "length", "len", "x", "ancho"},
	colHeight:    {"height", "h", "depth", "d", "y", "largo", "alto"},
	colQuantity:  {"quantity", "qty", "count", "num", "amount", "pcs", "pieces", "cantidad"},
	colGrain:     {"grain", "grain direction", "direction", "grain dir", "orientation", "veta"},
	colMaterial:  {"material", "board", "material code", "melamine"},
	colCode:      {"code", "material code", "sku", "codigo"},
	colName:      {"name", "board name", "nombre"},
	colThickness: {"thickness", "t", "espesor"},
	colPrice:     {"price", "cost", "unit price", "precio"},
}

// ColumnMapping maps column roles to indices in a row; -1 means absent.
type ColumnMapping map[string]int

// Index returns the column of role, or -1.
func (m ColumnMapping) Index(role string) int {
	if i, ok := m[role]; ok {
		return i
	}
	return -1
}

var (
	pieceRoles    = []string{colLabel, colWidth, colHeight, colQuantity, colGrain, colMaterial}
	materialRoles = []string{colCode, colName, colWidth, colHeight, colThickness, colPrice, colGrain}
)

// DetectColumns matches a header row against the aliases of roles. The
// first column matching a role wins. The second value is false when no
// cell looks like a header, in which case the roles map positionally.
func DetectColumns(row []string, roles []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{}
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for _, role := range roles {
			if _, taken := mapping[role]; taken {
				continue
			}
			for _, alias := range headerAliases[role] {
				if normalized == alias {
					mapping[role] = i
					break
				}
			}
			if _, matched := mapping[role]; matched {
				break
			}
		}
	}
	if len(mapping) > 0 {
		return mapping, true
	}

	for i, role := range roles {
		mapping[role] = i
	}
	return mapping, false
}

// DetectCSVDelimiter picks the delimiter among comma, semicolon, tab and
// pipe that splits the most rows into the same number of columns.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		consistent := 0
		for _, row := range records {
			if len(row) == len(records[0]) {
				consistent++
			}
		}
		if score := consistent*10 + len(records[0]); score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

func readCSV(r io.Reader, delim rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

// ReadRows loads the raw rows of a CSV or Excel file, chosen by extension.
// For Excel files sheet selects the worksheet; empty means the first one.
func ReadRows(path, sheet string) ([][]string, []string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		rows, err := readExcel(path, sheet)
		return rows, nil, err
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, nil, fmt.Errorf("%s is empty", path)
		}
		var warnings []string
		delim := DetectCSVDelimiter(data)
		if delim != ',' {
			name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delim]
			warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", name))
		}
		rows, err := readCSV(bytes.NewReader(data), delim)
		if err != nil {
			return nil, warnings, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return rows, warnings, nil
	}
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// ImportPieces reads a cut list file. Rows without a material column get
// defaultMaterial.
func ImportPieces(path, defaultMaterial string) ImportResult {
	rows, warnings, err := ReadRows(path, "")
	if err != nil {
		return ImportResult{Errors: []string{err.Error()}, Warnings: warnings}
	}
	result := PiecesFromRows(rows, defaultMaterial, rowPrefix(path))
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// ImportPiecesFromReader reads a CSV cut list with a known delimiter.
func ImportPiecesFromReader(r io.Reader, delimiter rune, defaultMaterial string) ImportResult {
	rows, err := readCSV(r, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return PiecesFromRows(rows, defaultMaterial, "Line")
}

// ImportMaterials reads a board list: code, name, width, height, thickness,
// price and grain columns. Excel workbooks are read from the sheet named
// "Materials" when present, else the first sheet.
func ImportMaterials(path string) ImportResult {
	sheet := ""
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".xlsx" || ext == ".xlsm" {
		if f, err := excelize.OpenFile(path); err == nil {
			if idx, _ := f.GetSheetIndex(MaterialsSheet); idx >= 0 {
				sheet = MaterialsSheet
			}
			f.Close()
		}
	}
	rows, warnings, err := ReadRows(path, sheet)
	if err != nil {
		return ImportResult{Errors: []string{err.Error()}, Warnings: warnings}
	}
	result := MaterialsFromRows(rows, rowPrefix(path))
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// MaterialsSheet is the worksheet name used for board lists in workbooks.
const MaterialsSheet = "Materials"

func rowPrefix(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return "Row"
	default:
		return "Line"
	}
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseNumber accepts a decimal comma as well as a decimal point.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

// startRow detects the header and checks the required roles are present.
func startRow(rows [][]string, roles, required []string, result *ImportResult) (ColumnMapping, int, bool) {
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return nil, 0, false
	}
	mapping, hasHeader := DetectColumns(rows[0], roles)
	if !hasHeader {
		// An unrecognized header still has a non-numeric width column.
		if _, err := parseNumber(getCell(rows[0], mapping.Index(colWidth))); err != nil {
			result.Warnings = append(result.Warnings, "Unrecognized header row, using column positions")
			return mapping, 1, true
		}
		return mapping, 0, true
	}

	var missing []string
	for _, role := range required {
		if mapping.Index(role) < 0 {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
		return nil, 0, false
	}
	return mapping, 1, true
}

// PiecesFromRows parses cut list rows from either source.
func PiecesFromRows(rows [][]string, defaultMaterial, prefix string) ImportResult {
	var result ImportResult
	mapping, start, ok := startRow(rows, pieceRoles, []string{colWidth, colHeight, colQuantity}, &result)
	if !ok {
		return result
	}

	for i := start; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		where := fmt.Sprintf("%s %d", prefix, i+1)
		piece, err := parsePiece(rows[i], mapping, defaultMaterial, len(result.Pieces))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", where, err))
			continue
		}
		if raw := getCell(rows[i], mapping.Index(colGrain)); raw != "" {
			if g, gerr := model.ParseGrain(raw); gerr == nil {
				piece.Grain = g
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Unknown grain direction '%s', defaulting to None", where, raw))
			}
		}
		result.Pieces = append(result.Pieces, piece)
	}
	return result
}

func parsePiece(row []string, mapping ColumnMapping, defaultMaterial string, n int) (model.Piece, error) {
	label := getCell(row, mapping.Index(colLabel))
	if label == "" {
		label = fmt.Sprintf("Piece %d", n+1)
	}
	width, err := requiredNumber(row, mapping, colWidth)
	if err != nil {
		return model.Piece{}, err
	}
	height, err := requiredNumber(row, mapping, colHeight)
	if err != nil {
		return model.Piece{}, err
	}
	qtyStr := getCell(row, mapping.Index(colQuantity))
	if qtyStr == "" {
		return model.Piece{}, fmt.Errorf("missing quantity value")
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return model.Piece{}, fmt.Errorf("invalid quantity '%s'", qtyStr)
	}
	if width <= 0 || height <= 0 || qty <= 0 {
		return model.Piece{}, fmt.Errorf("width, height and quantity must be positive")
	}

	material := getCell(row, mapping.Index(colMaterial))
	if material == "" {
		material = defaultMaterial
	}
	if material == "" {
		return model.Piece{}, fmt.Errorf("no material code and no default material")
	}
	return model.NewPiece(label, width, height, qty, material), nil
}

func requiredNumber(row []string, mapping ColumnMapping, role string) (float64, error) {
	s := getCell(row, mapping.Index(role))
	if s == "" {
		return 0, fmt.Errorf("missing %s value", role)
	}
	v, err := parseNumber(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s'", role, s)
	}
	return v, nil
}

// MaterialsFromRows parses board list rows. Codes must be unique.
func MaterialsFromRows(rows [][]string, prefix string) ImportResult {
	var result ImportResult
	mapping, start, ok := startRow(rows, materialRoles, []string{colCode, colWidth, colHeight}, &result)
	if !ok {
		return result
	}

	seen := make(map[string]bool)
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		where := fmt.Sprintf("%s %d", prefix, i+1)

		code := getCell(row, mapping.Index(colCode))
		if code == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: missing material code", where))
			continue
		}
		if seen[code] {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: duplicate material code %s", where, code))
			continue
		}
		width, err := requiredNumber(row, mapping, colWidth)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", where, err))
			continue
		}
		height, err := requiredNumber(row, mapping, colHeight)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", where, err))
			continue
		}

		m := model.NewMaterial(code, width, height, 0)
		if name := getCell(row, mapping.Index(colName)); name != "" {
			m.Name = name
		}
		if s := getCell(row, mapping.Index(colThickness)); s != "" {
			if v, err := parseNumber(s); err == nil {
				m.Thickness = v
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: invalid thickness '%s' ignored", where, s))
			}
		}
		if s := getCell(row, mapping.Index(colPrice)); s != "" {
			if v, err := parseNumber(s); err == nil {
				m.Price = v
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: invalid price '%s' ignored", where, s))
			}
		}
		if s := getCell(row, mapping.Index(colGrain)); s != "" {
			if g, err := model.ParseGrain(s); err == nil {
				m.Grain = g
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Unknown grain direction '%s', defaulting to None", where, s))
			}
		}
		seen[code] = true
		result.Materials = append(result.Materials, m)
	}
	return result
}
