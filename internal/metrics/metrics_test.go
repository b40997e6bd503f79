package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthmate_probe/internal/model"
)

func sampleRun() *model.Run {
	results := []model.TestResult{
		{
			Case:     model.TestCase{Name: "Health Check", Method: "GET", Path: "/health"},
			Outcome:  model.Outcome{Kind: model.OutcomeSuccess, StatusCode: 200},
			Duration: 250 * time.Millisecond,
		},
		{
			Case:    model.TestCase{Name: "Generate Explanation", Method: "POST", Path: "/generate-explanation"},
			Outcome: model.Outcome{Kind: model.OutcomeHTTPError, StatusCode: 500},
		},
	}
	return &model.Run{
		Suite:     "ml-service",
		StartedAt: utc.Time{Time: time.Unix(1760000000, 0)},
		Results:   results,
		Summary:   model.Summarize(results),
	}
}

func TestObserve(t *testing.T) {
	r := NewRecorder()
	r.Observe(sampleRun())

	assert.Equal(t, 1.0, testutil.ToFloat64(r.caseSuccess.WithLabelValues("ml-service", "Health Check", "/health")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.caseSuccess.WithLabelValues("ml-service", "Generate Explanation", "/generate-explanation")))
	assert.Equal(t, 0.25, testutil.ToFloat64(r.caseDuration.WithLabelValues("ml-service", "Health Check", "/health")))
	assert.Equal(t, 500.0, testutil.ToFloat64(r.caseStatus.WithLabelValues("ml-service", "Generate Explanation", "/generate-explanation")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.runTotal.WithLabelValues("ml-service")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runSucceeded.WithLabelValues("ml-service")))
	assert.Equal(t, 0.5, testutil.ToFloat64(r.runRate.WithLabelValues("ml-service")))
	assert.Equal(t, 1760000000.0, testutil.ToFloat64(r.lastRun.WithLabelValues("ml-service")))
}

func TestWriteFile(t *testing.T) {
	r := NewRecorder()
	r.Observe(sampleRun())

	path := filepath.Join(t.TempDir(), "truthprobe.prom")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# TYPE truthprobe_case_success gauge")
	assert.Contains(t, out, `truthprobe_case_success{case="Health Check",path="/health",suite="ml-service"} 1`)
	assert.Contains(t, out, `truthprobe_run_succeeded{suite="ml-service"} 1`)
	assert.Contains(t, out, `truthprobe_run_total{suite="ml-service"} 2`)
}

func TestWriteFileBadDirectory(t *testing.T) {
	r := NewRecorder()
	err := r.WriteFile(filepath.Join(t.TempDir(), "missing", "truthprobe.prom"))
	assert.Error(t, err)
}
