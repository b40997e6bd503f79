package cli

import (
	"github.com/spf13/cobra"

	"truthmate_probe/internal/logging"
	"truthmate_probe/internal/model"
	"truthmate_probe/internal/suite"
)

func newClaimsCommand(a *app) *cobra.Command {
	var (
		claims      []string
		mlURL       string
		gatewayURL  string
		reportPath  string
		metricsFile string
	)
	cmd := &cobra.Command{
		Use:   "claims",
		Short: "Verify a batch of claims against the ML service and the gateway",
		Long: `Check that the gateway API is responding, then send every claim to the ML
service's /verify endpoint and to the gateway's /api/verify endpoint.`,
		Example: `  truthprobe claims
  truthprobe claims --claim "The Earth is flat" --claim "Water boils at 100°C at sea level"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if len(claims) == 0 {
				claims = cfg.Claims
			}

			rep, err := a.reporter()
			if err != nil {
				return err
			}
			rep.WithNoun("checks").Banner("🧪 TruthMate Claim Batch")

			s := suite.ClaimBattery(claims, firstString(gatewayURL, cfg.GatewayURL))
			endpoint := model.ServiceEndpoint{BaseURL: firstString(mlURL, cfg.MLServiceURL)}
			ctx := cmd.Context()
			run, err := a.verifier(ctx).Run(ctx, s.Name, endpoint, s.Cases, cfg.ProbeTimeout)
			if err != nil {
				return err
			}
			return a.finish(run, rep, logging.FromContext(ctx), firstString(reportPath, cfg.ReportPath), firstString(metricsFile, cfg.MetricsFile))
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&claims, "claim", nil, "claim to verify (repeatable, defaults to the configured batch)")
	f.StringVar(&mlURL, "ml-url", "", "ML service base URL (overrides ml_service_url)")
	f.StringVar(&gatewayURL, "gateway-url", "", "gateway base URL (overrides gateway_url)")
	f.StringVar(&reportPath, "report", "", "append the results as a new sheet to this .xlsx workbook")
	f.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	return cmd
}
