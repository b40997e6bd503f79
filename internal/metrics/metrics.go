// Package metrics exports run outcomes in the Prometheus text format, for
// pickup by the node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"truthmate_probe/internal/model"
)

const namespace = "truthprobe"

// Recorder collects gauges for one or more runs.
type Recorder struct {
	registry     *prometheus.Registry
	caseSuccess  *prometheus.GaugeVec
	caseDuration *prometheus.GaugeVec
	caseStatus   *prometheus.GaugeVec
	runTotal     *prometheus.GaugeVec
	runSucceeded *prometheus.GaugeVec
	runRate      *prometheus.GaugeVec
	lastRun      *prometheus.GaugeVec
}

// NewRecorder creates a Recorder backed by its own registry.
func NewRecorder() *Recorder {
	caseLabels := []string{"suite", "case", "path"}
	runLabels := []string{"suite"}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		caseSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "case_success",
			Help:      "1 if the case succeeded (soft errors included), 0 otherwise.",
		}, caseLabels),
		caseDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "case_duration_seconds",
			Help:      "Round trip duration of the case.",
		}, caseLabels),
		caseStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "case_status_code",
			Help:      "HTTP status code of the case, 0 on transport errors.",
		}, caseLabels),
		runTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_total",
			Help:      "Number of cases in the run.",
		}, runLabels),
		runSucceeded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_succeeded",
			Help:      "Number of succeeded cases in the run.",
		}, runLabels),
		runRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_success_ratio",
			Help:      "Succeeded cases divided by total cases.",
		}, runLabels),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_started_timestamp_seconds",
			Help:      "Unix time the run started.",
		}, runLabels),
	}
	r.registry.MustRegister(
		r.caseSuccess, r.caseDuration, r.caseStatus,
		r.runTotal, r.runSucceeded, r.runRate, r.lastRun,
	)
	return r
}

// Observe records every result of run.
func (r *Recorder) Observe(run *model.Run) {
	for _, res := range run.Results {
		labels := prometheus.Labels{"suite": run.Suite, "case": res.Case.Name, "path": res.Case.Path}
		success := 0.0
		if res.Succeeded() {
			success = 1
		}
		r.caseSuccess.With(labels).Set(success)
		r.caseDuration.With(labels).Set(res.Duration.Seconds())
		r.caseStatus.With(labels).Set(float64(res.Outcome.StatusCode))
	}

	suite := prometheus.Labels{"suite": run.Suite}
	r.runTotal.With(suite).Set(float64(run.Summary.Total))
	r.runSucceeded.With(suite).Set(float64(run.Summary.Succeeded))
	r.runRate.With(suite).Set(run.Summary.Rate() / 100)
	if !run.StartedAt.IsZero() {
		r.lastRun.With(suite).Set(float64(run.StartedAt.Unix()))
	}
}

// WriteFile writes the collected metrics to path atomically.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
