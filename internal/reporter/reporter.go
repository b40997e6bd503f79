package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"

	"truthmate_probe/internal/errs"
	"truthmate_probe/internal/model"
)

// Format selects how a run is written.
type Format string

const (
	// FormatText prints the per-case lines and the verdict.
	FormatText Format = "text"
	// FormatTable adds a results table after the text report.
	FormatTable Format = "table"
	// FormatJSON writes the run as JSON.
	FormatJSON Format = "json"
	// FormatYAML writes the run as YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat validates s. An empty string selects FormatTable.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatTable, nil
	case FormatText, FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q: %w", s, errs.ErrInvalidInput)
	}
}

// Reporter writes run reports.
type Reporter struct {
	out     io.Writer
	format  Format
	details Details
	noun    string
}

// New creates a Reporter writing to out.
func New(out io.Writer, format Format) *Reporter {
	return &Reporter{out: out, format: format, details: DefaultDetails(), noun: "endpoints"}
}

// WithNoun changes the word used in the verdict line ("endpoints", "claims").
func (r *Reporter) WithNoun(noun string) *Reporter {
	r.noun = noun
	return r
}

// Structured reports whether the format is machine-readable.
func (r *Reporter) Structured() bool {
	return r.format == FormatJSON || r.format == FormatYAML
}

// GenerateReport writes run in the configured format.
func (r *Reporter) GenerateReport(run *model.Run) error {
	switch r.format {
	case FormatJSON, FormatYAML:
		return r.Encode(run)
	case FormatTable:
		r.printConsoleReport(run)
		return r.printTable(run)
	default:
		r.printConsoleReport(run)
		return nil
	}
}

// Encode writes v as JSON or YAML, depending on the format.
func (r *Reporter) Encode(v any) error {
	if r.format == FormatYAML {
		data, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(false))
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = r.out.Write(data)
		return err
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Banner writes a title underlined with '=' for the console formats.
func (r *Reporter) Banner(title string) {
	if r.Structured() {
		return
	}
	fmt.Fprintln(r.out, title)
	fmt.Fprintln(r.out, strings.Repeat("=", 55))
}

// PrintResult writes the lines for one case.
func (r *Reporter) PrintResult(res model.TestResult) {
	fmt.Fprintf(r.out, "\n🔍 Testing: %s\n", res.Case.Name)
	for _, line := range r.ResultLines(res) {
		fmt.Fprintf(r.out, "   %s\n", line)
	}
}

// ResultLines renders one case's outcome.
func (r *Reporter) ResultLines(res model.TestResult) []string {
	o := res.Outcome
	switch o.Kind {
	case model.OutcomeSuccess:
		lines := []string{fmt.Sprintf("✅ Status: %d", o.StatusCode)}
		if o.SoftError() {
			return append(lines, fmt.Sprintf("⚠️  Response: %s", o.AppError))
		}
		if o.BodyTruncated {
			return append(lines, truncatedNote)
		}
		if res.Response == nil {
			return lines
		}
		return append(lines, r.details.Render(res)...)
	case model.OutcomeHTTPError:
		return []string{
			fmt.Sprintf("❌ Status: %d", o.StatusCode),
			fmt.Sprintf("📄 Response: %s...", Truncate(o.Body, errorBodyPreview)),
		}
	default:
		return []string{fmt.Sprintf("❌ Error: %s", o.Message)}
	}
}

// Verdict is the closing line of a run.
func (r *Reporter) Verdict(s model.RunSummary) string {
	if s.FullyPassing() {
		return fmt.Sprintf("🚀 All %s working!", r.noun)
	}
	return fmt.Sprintf("⚠️  %d/%d %s working", s.Succeeded, s.Total, r.noun)
}

func (r *Reporter) printConsoleReport(run *model.Run) {
	for _, res := range run.Results {
		r.PrintResult(res)
	}
	fmt.Fprintf(r.out, "\n%s\n", r.Verdict(run.Summary))
	fmt.Fprintf(r.out, "Success rate: %s\n", run.Summary.RateString())
}

func (r *Reporter) printTable(run *model.Run) error {
	fmt.Fprintln(r.out)
	table := tablewriter.NewTable(r.out)
	table.Header("#", "Case", "Method", "Path", "Outcome", "Status", "Duration")
	for _, res := range run.Results {
		status := "-"
		if res.Outcome.StatusCode != 0 {
			status = strconv.Itoa(res.Outcome.StatusCode)
		}
		if err := table.Append(
			strconv.Itoa(res.CaseNumber),
			res.Case.Name,
			res.Case.Method,
			res.Case.Path,
			outcomeLabel(res.Outcome),
			status,
			res.Duration.Round(time.Millisecond).String(),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func outcomeLabel(o model.Outcome) string {
	if o.SoftError() {
		return "soft_error"
	}
	return o.Kind.String()
}
