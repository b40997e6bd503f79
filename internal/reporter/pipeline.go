package reporter

import (
	"fmt"

	"truthmate_probe/internal/model"
	"truthmate_probe/internal/pipeline"
)

// PipelineReport writes a smoke test result in the configured format.
func (r *Reporter) PipelineReport(res *pipeline.Result) error {
	if r.Structured() {
		return r.Encode(res)
	}

	r.Banner("🧪 Integration Smoke Test")

	r.printCheck("ML service", res.MLService)
	r.printCheck("Gateway", res.Gateway)
	if res.GatewayMLStatus != "" {
		fmt.Fprintf(r.out, "   ML Service Status: %s\n", res.GatewayMLStatus)
	}
	fmt.Fprintln(r.out)

	switch {
	case res.VerifyInvoked:
		r.printVerify(*res.Verify)
		fmt.Fprintln(r.out)
		if res.Passed() {
			fmt.Fprintln(r.out, "🎉 All systems working!")
		} else {
			fmt.Fprintln(r.out, "⚠️  Services are running but pipeline has issues")
		}
	default:
		fmt.Fprintln(r.out, "⚠️  Some services are not running properly")
		for _, hint := range res.Hints {
			fmt.Fprintf(r.out, "   → %s\n", hint)
		}
	}

	fmt.Fprintln(r.out, "\n📋 Next Steps:")
	for i, step := range res.NextSteps {
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, step)
	}
	return nil
}

func (r *Reporter) printCheck(name string, c pipeline.Check) {
	o := c.Result.Outcome
	switch {
	case c.Passed:
		fmt.Fprintf(r.out, "✅ %s is running\n", name)
	case o.Kind == model.OutcomeTransportError:
		fmt.Fprintf(r.out, "❌ %s not reachable: %s\n", name, o.Message)
	case o.Kind == model.OutcomeHTTPError:
		fmt.Fprintf(r.out, "❌ %s returned %d\n", name, o.StatusCode)
	default:
		fmt.Fprintf(r.out, "❌ %s is up but not ready\n", name)
	}
}

func (r *Reporter) printVerify(res model.TestResult) {
	o := res.Outcome
	switch o.Kind {
	case model.OutcomeSuccess:
		if o.SoftError() {
			fmt.Fprintln(r.out, "⚠️  Verification pipeline answered with an application error")
		} else {
			fmt.Fprintln(r.out, "✅ Verification pipeline works!")
		}
		for _, line := range r.ResultLines(res)[1:] {
			fmt.Fprintf(r.out, "   %s\n", line)
		}
	case model.OutcomeHTTPError:
		fmt.Fprintf(r.out, "❌ Verification failed with %d\n", o.StatusCode)
		fmt.Fprintf(r.out, "   Error: %s\n", o.Body)
	default:
		fmt.Fprintf(r.out, "❌ Verification pipeline error: %s\n", o.Message)
	}
}
