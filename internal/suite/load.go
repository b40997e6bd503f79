package suite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/xuri/excelize/v2"

	"truthmate_probe/internal/errs"
	"truthmate_probe/internal/model"
)

// Spreadsheet column layout, one case per row.
const (
	colName = iota
	colMethod
	colPath
	colBody
	colBaseURL
	colExpectStatus
)

// LoadOptions controls spreadsheet loading.
type LoadOptions struct {
	SheetName string // defaults to Sheet1
	HeaderRow int    // rows to skip, defaults to 1
}

// LoadFile reads a suite from a .yaml/.yml or .xlsx file.
func LoadFile(path string, opts LoadOptions) (Suite, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	case ".xlsx":
		return loadXLSX(path, opts)
	default:
		return Suite{}, fmt.Errorf("unsupported suite file %s: %w", path, errs.ErrInvalidInput)
	}
}

func loadYAML(path string) (Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, fmt.Errorf("read suite file: %w", err)
	}

	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Suite{}, fmt.Errorf("parse suite file %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	for i := range s.Cases {
		s.Cases[i].Method = strings.ToUpper(strings.TrimSpace(s.Cases[i].Method))
	}
	if len(s.Cases) == 0 {
		return Suite{}, fmt.Errorf("no cases in %s: %w", path, errs.ErrInvalidInput)
	}
	return s, nil
}

func loadXLSX(path string, opts LoadOptions) (Suite, error) {
	if opts.SheetName == "" {
		opts.SheetName = "Sheet1"
	}
	if opts.HeaderRow <= 0 {
		opts.HeaderRow = 1
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return Suite{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(opts.SheetName)
	if err != nil {
		return Suite{}, fmt.Errorf("read sheet %s: %w", opts.SheetName, err)
	}
	if len(rows) <= opts.HeaderRow {
		return Suite{}, fmt.Errorf("no cases in sheet %s: %w", opts.SheetName, errs.ErrInvalidInput)
	}

	s := Suite{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	for i, row := range rows[opts.HeaderRow:] {
		if blank(row) {
			continue
		}
		tc, err := parseRow(row)
		if err != nil {
			return Suite{}, fmt.Errorf("row %d: %w", opts.HeaderRow+i+1, err)
		}
		s.Cases = append(s.Cases, tc)
	}
	if len(s.Cases) == 0 {
		return Suite{}, fmt.Errorf("no cases in sheet %s: %w", opts.SheetName, errs.ErrInvalidInput)
	}
	return s, nil
}

func parseRow(row []string) (model.TestCase, error) {
	tc := model.TestCase{
		Name:    cell(row, colName),
		Method:  strings.ToUpper(cell(row, colMethod)),
		Path:    cell(row, colPath),
		BaseURL: cell(row, colBaseURL),
	}

	if body := cell(row, colBody); body != "" {
		var payload any
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			return tc, errs.NewValidationError(tc.Name, "body", fmt.Sprintf("not valid JSON: %v", err))
		}
		tc.Payload = payload
	}

	if status := cell(row, colExpectStatus); status != "" {
		n, err := strconv.Atoi(status)
		if err != nil {
			return tc, errs.NewValidationError(tc.Name, "expect_status", fmt.Sprintf("not a number: %q", status))
		}
		tc.ExpectStatus = n
	}
	return tc, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
