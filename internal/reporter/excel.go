package reporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"truthmate_probe/internal/model"
)

const (
	sheetNameFormat    = "Report_%s"
	sheetTimeFormat    = "2006-01-02_15-04-05"
	firstColumn        = 'A'
	lastColumn         = 'K'
	defaultColumnWidth = 16

	patternType    = "pattern"
	patternValue   = 1
	errorBgColor   = "FF5900"
	warningBgColor = "FFEB9C"
)

var excelHeaders = []any{
	"Case #", "Suite", "Case Name", "Method", "Path", "Request Body",
	"Outcome", "Status", "Detail", "Duration (ms)", "Curl",
}

// ExcelReport appends one sheet per invocation to a workbook.
type ExcelReport struct {
	Path string
	Now  func() time.Time
}

// NewExcelReport creates an ExcelReport writing to path.
func NewExcelReport(path string) *ExcelReport {
	return &ExcelReport{Path: path, Now: time.Now}
}

// Write adds a sheet holding every run's results followed by a summary block,
// and returns the sheet name. The workbook is created if it does not exist.
func (e *ExcelReport) Write(runs ...*model.Run) (string, error) {
	f, created, err := openOrCreate(e.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sheet, err := uniqueSheetName(f, fmt.Sprintf(sheetNameFormat, e.Now().Format(sheetTimeFormat)))
	if err != nil {
		return "", err
	}
	if created {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			return "", fmt.Errorf("name sheet: %w", err)
		}
	} else {
		index, err := f.NewSheet(sheet)
		if err != nil {
			return "", fmt.Errorf("create sheet: %w", err)
		}
		f.SetActiveSheet(index)
	}

	if err := f.SetColWidth(sheet, string(firstColumn), string(lastColumn), defaultColumnWidth); err != nil {
		return "", err
	}
	if err := f.SetSheetRow(sheet, "A1", &excelHeaders); err != nil {
		return "", err
	}

	errorStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: patternType, Pattern: patternValue, Color: []string{errorBgColor}},
	})
	if err != nil {
		return "", err
	}
	warningStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: patternType, Pattern: patternValue, Color: []string{warningBgColor}},
	})
	if err != nil {
		return "", err
	}

	row := 2
	for _, run := range runs {
		for _, res := range run.Results {
			style := 0
			switch {
			case !res.Succeeded():
				style = errorStyle
			case res.Outcome.SoftError():
				style = warningStyle
			}
			if err := writeResultRow(f, sheet, row, run.Suite, res, style); err != nil {
				return "", err
			}
			row++
		}
	}

	row++
	for _, run := range runs {
		if err := writeSummary(f, sheet, row, run); err != nil {
			return "", err
		}
		row += 6
	}

	if created {
		err = f.SaveAs(e.Path)
	} else {
		err = f.Save()
	}
	if err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return sheet, nil
}

// uniqueSheetName returns base, or base with the first free "_N" suffix when
// a sheet of that name already exists. Names stay within Excel's limit.
func uniqueSheetName(f *excelize.File, base string) (string, error) {
	name := base
	for n := 2; ; n++ {
		index, err := f.GetSheetIndex(name)
		if err != nil {
			return "", fmt.Errorf("look up sheet %s: %w", name, err)
		}
		if index == -1 {
			return name, nil
		}
		suffix := fmt.Sprintf("_%d", n)
		prefix := base
		if len(prefix)+len(suffix) > excelize.MaxSheetNameLength {
			prefix = prefix[:excelize.MaxSheetNameLength-len(suffix)]
		}
		name = prefix + suffix
	}
}

func openOrCreate(path string) (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(path)
	if err == nil {
		return f, false, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("open report workbook: %w", err)
}

func writeResultRow(f *excelize.File, sheet string, row int, suite string, res model.TestResult, style int) error {
	body := ""
	if res.Case.Payload != nil {
		data, _ := json.Marshal(res.Case.Payload)
		body = string(data)
	}

	cells := []any{
		res.CaseNumber,
		suite,
		res.Case.Name,
		res.Case.Method,
		res.Case.Path,
		body,
		outcomeLabel(res.Outcome),
		res.Outcome.StatusCode,
		detail(res.Outcome),
		float64(res.Duration.Microseconds()) / 1000,
		res.Curl,
	}

	start := fmt.Sprintf("%c%d", firstColumn, row)
	if err := f.SetSheetRow(sheet, start, &cells); err != nil {
		return err
	}
	if style != 0 {
		end := fmt.Sprintf("%c%d", lastColumn, row)
		return f.SetCellStyle(sheet, start, end, style)
	}
	return nil
}

func detail(o model.Outcome) string {
	switch {
	case o.SoftError():
		return o.AppError
	case o.BodyTruncated:
		return "body too large, not inspected"
	case o.Kind == model.OutcomeHTTPError:
		return Truncate(o.Body, errorBodyPreview)
	default:
		return o.Message
	}
}

func writeSummary(f *excelize.File, sheet string, startRow int, run *model.Run) error {
	lines := []string{
		fmt.Sprintf("Summary: %s (%s)", run.Suite, run.Endpoint.BaseURL),
		fmt.Sprintf("Run ID: %s", run.ID),
		fmt.Sprintf("Total duration: %.3fms", float64(run.Duration.Microseconds())/1000),
		fmt.Sprintf("Total cases: %d", run.Summary.Total),
		fmt.Sprintf("Succeeded: %d (%s)", run.Summary.Succeeded, run.Summary.RateString()),
	}
	for i, line := range lines {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", startRow+i), line); err != nil {
			return err
		}
	}
	return nil
}
