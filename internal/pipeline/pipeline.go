// Package pipeline runs the cross-service smoke test: both health checks,
// then the gateway's full verification pipeline when both pass.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"truthmate_probe/internal/model"
	"truthmate_probe/internal/runner"
	"truthmate_probe/internal/suite"
)

// ML service states reported by the gateway that allow the verify stage.
var readyStates = map[string]bool{
	"healthy":      true,
	"model_loaded": true,
}

const (
	hintStartMLService = "Start ML service: cd ml-service && python app.py"
	hintStartGateway   = "Start gateway: npm run dev"
)

// Options configures a smoke test.
type Options struct {
	MLServiceURL  string
	GatewayURL    string
	Claim         string
	ProbeTimeout  time.Duration // per health check
	VerifyTimeout time.Duration // the /api/verify stage
}

// Check is one health check and whether it passed.
type Check struct {
	Result model.TestResult `yaml:"result" json:"result"`
	Passed bool             `yaml:"passed" json:"passed"`
}

// Result is the outcome of a smoke test.
type Result struct {
	ID              string            `yaml:"id" json:"id"`
	MLService       Check             `yaml:"ml_service" json:"ml_service"`
	Gateway         Check             `yaml:"gateway" json:"gateway"`
	GatewayMLStatus string            `yaml:"gateway_ml_status,omitempty" json:"gateway_ml_status,omitempty"`
	VerifyInvoked   bool              `yaml:"verify_invoked" json:"verify_invoked"`
	Verify          *model.TestResult `yaml:"verify,omitempty" json:"verify,omitempty"`
	Hints           []string          `yaml:"hints,omitempty" json:"hints,omitempty"`
	NextSteps       []string          `yaml:"next_steps" json:"next_steps"`
	Duration        time.Duration     `yaml:"duration" json:"duration"`
}

// HealthPassed reports whether both health checks passed.
func (r *Result) HealthPassed() bool {
	return r.MLService.Passed && r.Gateway.Passed
}

// Passed reports whether the verify stage ran and succeeded.
func (r *Result) Passed() bool {
	return r.VerifyInvoked && r.Verify != nil && r.Verify.Succeeded()
}

// SmokeTest composes the verifier into the three pipeline stages.
type SmokeTest struct {
	verifier *runner.Verifier
	opts     Options
	logger   zerolog.Logger
}

// New creates a SmokeTest.
func New(verifier *runner.Verifier, opts Options, logger zerolog.Logger) *SmokeTest {
	return &SmokeTest{verifier: verifier, opts: opts, logger: logger}
}

// Run executes the health checks and, only if both pass, the verify stage.
// Failed checks are never retried; they produce remediation hints.
func (s *SmokeTest) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}

	mlRun, err := s.verifier.Run(ctx, "ml-health", model.ServiceEndpoint{BaseURL: s.opts.MLServiceURL}, suite.MLHealth().Cases, s.opts.ProbeTimeout)
	if err != nil {
		return nil, fmt.Errorf("ml service health check: %w", err)
	}
	res.ID = mlRun.ID
	res.MLService = Check{Result: mlRun.Results[0], Passed: mlRun.Results[0].Succeeded()}

	gwRun, err := s.verifier.Run(ctx, "gateway-health", model.ServiceEndpoint{BaseURL: s.opts.GatewayURL}, suite.GatewayHealth().Cases, s.opts.ProbeTimeout)
	if err != nil {
		return nil, fmt.Errorf("gateway health check: %w", err)
	}
	gw := gwRun.Results[0]
	status, ready := MLServiceReady(gw.Response)
	res.GatewayMLStatus = status
	res.Gateway = Check{Result: gw, Passed: gw.Succeeded() && ready}

	if !res.MLService.Passed {
		res.Hints = append(res.Hints, hintStartMLService)
	}
	if !res.Gateway.Passed {
		res.Hints = append(res.Hints, hintStartGateway)
	}

	if res.HealthPassed() {
		verifyRun, err := s.verifier.Run(ctx, "gateway-pipeline", model.ServiceEndpoint{BaseURL: s.opts.GatewayURL}, suite.GatewayVerify(s.opts.Claim).Cases, s.opts.VerifyTimeout)
		if err != nil {
			return nil, fmt.Errorf("verification pipeline: %w", err)
		}
		res.VerifyInvoked = true
		res.Verify = &verifyRun.Results[0]
	} else {
		s.logger.Warn().
			Bool("ml_service", res.MLService.Passed).
			Bool("gateway", res.Gateway.Passed).
			Str("gateway_ml_status", status).
			Msg("Skipping verification pipeline")
	}

	res.NextSteps = NextSteps(s.opts.GatewayURL)
	res.Duration = time.Since(start)
	return res, nil
}

// MLServiceReady reads services.ml_service from a gateway health response and
// reports whether it names a state that can serve verifications.
func MLServiceReady(response map[string]any) (string, bool) {
	services, _ := response["services"].(map[string]any)
	status, _ := services["ml_service"].(string)
	return status, readyStates[status]
}

// NextSteps is the advisory printed after every smoke test.
func NextSteps(gatewayURL string) []string {
	return []string{
		"Make sure both services are running",
		fmt.Sprintf("Visit %s/dashboard", gatewayURL),
		"Submit a claim to test the full pipeline",
		"Check the results page for AI-powered analysis",
	}
}
