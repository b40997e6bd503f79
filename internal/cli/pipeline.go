package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"truthmate_probe/internal/errs"
	"truthmate_probe/internal/logging"
	"truthmate_probe/internal/pipeline"
)

func newPipelineCommand(a *app) *cobra.Command {
	var claim, mlURL, gatewayURL string
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Smoke test the ML service and gateway together",
		Long: `Check the ML service and gateway health endpoints, then submit one claim
through the gateway's verification pipeline.

The pipeline stage only runs when the ML service answers and the gateway
reports its ML backend as healthy or model_loaded. Otherwise the command
prints which service to start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			rep, err := a.reporter()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st := pipeline.New(a.verifier(ctx), pipeline.Options{
				MLServiceURL:  firstString(mlURL, cfg.MLServiceURL),
				GatewayURL:    firstString(gatewayURL, cfg.GatewayURL),
				Claim:         firstString(claim, cfg.PipelineClaim),
				ProbeTimeout:  cfg.ProbeTimeout,
				VerifyTimeout: cfg.PipelineTimeout,
			}, logging.FromContext(ctx))

			res, err := st.Run(ctx)
			if err != nil {
				return err
			}
			if err := rep.PipelineReport(res); err != nil {
				return fmt.Errorf("generate report: %w", err)
			}
			if !res.Passed() {
				return fmt.Errorf("verification pipeline did not pass: %w", errs.ErrNotFullyPassing)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&claim, "claim", "", "claim submitted to the gateway")
	cmd.Flags().StringVar(&mlURL, "ml-url", "", "ML service base URL (overrides ml_service_url)")
	cmd.Flags().StringVar(&gatewayURL, "gateway-url", "", "gateway base URL (overrides gateway_url)")
	return cmd
}
