package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"truthmate_probe/internal/errs"
	"truthmate_probe/internal/logging"
	"truthmate_probe/internal/metrics"
	"truthmate_probe/internal/model"
	"truthmate_probe/internal/reporter"
	"truthmate_probe/internal/suite"
)

type endpointsOptions struct {
	url         string
	text        string
	casesFile   string
	sheet       string
	headerRow   int
	wait        time.Duration
	reportPath  string
	metricsFile string
}

func newEndpointsCommand(a *app) *cobra.Command {
	opts := &endpointsOptions{}
	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "Run the endpoint battery against the ML service",
		Long: `Run every case of the ML service battery in order and report each outcome.

A 200 response carrying an "error" field counts as working and is flagged
with a warning. The command fails when not every case succeeded.`,
		Example: `  truthprobe endpoints
  truthprobe endpoints --url http://127.0.0.1:5000 --wait 2s
  truthprobe endpoints --cases cases.xlsx --sheet Smoke --report report.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runEndpoints(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.url, "url", "", "ML service base URL (overrides ml_service_url)")
	f.StringVar(&opts.text, "text", "", "sample text sent to the text endpoints")
	f.StringVar(&opts.casesFile, "cases", "", "load cases from a .yaml or .xlsx file instead of the built-in battery")
	f.StringVar(&opts.sheet, "sheet", "", "sheet holding the cases in an .xlsx file")
	f.IntVar(&opts.headerRow, "header-row", 0, "header row of the cases sheet")
	f.DurationVar(&opts.wait, "wait", 0, "delay before the first request, e.g. while the service starts")
	f.StringVar(&opts.reportPath, "report", "", "append the results as a new sheet to this .xlsx workbook")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	return cmd
}

func (a *app) runEndpoints(cmd *cobra.Command, opts *endpointsOptions) error {
	cfg := a.cfg
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	s, err := a.endpointsSuite(opts, logger)
	if err != nil {
		return err
	}

	baseURL := cfg.MLServiceURL
	if s.BaseURL != "" {
		baseURL = s.BaseURL
	}
	if opts.url != "" {
		baseURL = opts.url
	}

	rep, err := a.reporter()
	if err != nil {
		return err
	}
	rep.Banner("🧪 Testing All TruthMate ML Service Endpoints")

	wait := firstDuration(opts.wait, cfg.StartDelay)
	if wait > 0 {
		logger.Info().Dur("wait", wait).Msg("Waiting before first request")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	run, err := a.verifier(ctx).Run(ctx, s.Name, model.ServiceEndpoint{BaseURL: baseURL}, s.Cases, cfg.ProbeTimeout)
	if err != nil {
		return err
	}
	return a.finish(run, rep, logger, firstString(opts.reportPath, cfg.ReportPath), firstString(opts.metricsFile, cfg.MetricsFile))
}

func (a *app) endpointsSuite(opts *endpointsOptions, logger zerolog.Logger) (suite.Suite, error) {
	path := firstString(opts.casesFile, a.cfg.CasesFile)
	if path == "" {
		return suite.MLServiceBattery(firstString(opts.text, a.cfg.SampleText)), nil
	}
	headerRow := opts.headerRow
	if headerRow <= 0 {
		headerRow = a.cfg.HeaderRow
	}
	s, err := suite.LoadFile(path, suite.LoadOptions{
		SheetName: firstString(opts.sheet, a.cfg.SheetName),
		HeaderRow: headerRow,
	})
	if err != nil {
		return suite.Suite{}, fmt.Errorf("load cases: %w", err)
	}
	logger.Debug().Str("file", path).Int("cases", len(s.Cases)).Msg("Loaded cases")
	return s, nil
}

// finish writes the report, the optional workbook and metrics, and turns a
// partially passing run into an error.
func (a *app) finish(run *model.Run, rep *reporter.Reporter, logger zerolog.Logger, reportPath, metricsFile string) error {
	if err := rep.GenerateReport(run); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if reportPath != "" {
		sheet, err := reporter.NewExcelReport(reportPath).Write(run)
		if err != nil {
			return fmt.Errorf("write excel report: %w", err)
		}
		logger.Info().Str("path", reportPath).Str("sheet", sheet).Msg("Excel report written")
	}

	if metricsFile != "" {
		rec := metrics.NewRecorder()
		rec.Observe(run)
		if err := rec.WriteFile(metricsFile); err != nil {
			return err
		}
		logger.Info().Str("path", metricsFile).Msg("Metrics written")
	}

	if !run.Summary.FullyPassing() {
		return fmt.Errorf("%d/%d cases succeeded: %w", run.Summary.Succeeded, run.Summary.Total, errs.ErrNotFullyPassing)
	}
	return nil
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstDuration(values ...time.Duration) time.Duration {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
