package model

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agentstation/utc"
)

// TestCase is one declarative HTTP probe.
type TestCase struct {
	Name         string `yaml:"name" json:"name"`                                       // display name
	Method       string `yaml:"method" json:"method"`                                   // GET or POST
	Path         string `yaml:"path" json:"path"`                                       // joined onto the base URL
	Payload      any    `yaml:"payload,omitempty" json:"payload,omitempty"`             // JSON body, POST only
	BaseURL      string `yaml:"base_url,omitempty" json:"base_url,omitempty"`           // per-case override
	ExpectStatus int    `yaml:"expect_status,omitempty" json:"expect_status,omitempty"` // defaults to 200
}

// ExpectedStatus returns the status that classifies the case as a success.
func (tc TestCase) ExpectedStatus() int {
	if tc.ExpectStatus == 0 {
		return http.StatusOK
	}
	return tc.ExpectStatus
}

// ServiceEndpoint is the base URL a run is aimed at.
type ServiceEndpoint struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
}

// URL joins path onto the endpoint's base URL.
func (e ServiceEndpoint) URL(path string) string {
	return strings.TrimRight(e.BaseURL, "/") + path
}

// OutcomeKind classifies how a probe ended.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeHTTPError
	OutcomeTransportError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeHTTPError:
		return "http_error"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// MarshalText lets the kind render by name in JSON and YAML reports.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the classified result of one probe.
type Outcome struct {
	Kind       OutcomeKind `yaml:"kind" json:"kind"`
	StatusCode int         `yaml:"status_code,omitempty" json:"status_code,omitempty"`
	Body       string      `yaml:"body,omitempty" json:"body,omitempty"`           // raw body of an HTTP error
	Message    string      `yaml:"message,omitempty" json:"message,omitempty"`     // transport error text
	AppError   string      `yaml:"app_error,omitempty" json:"app_error,omitempty"` // soft success: the body's error value

	// BodyTruncated marks a success whose body was too large to inspect.
	BodyTruncated bool `yaml:"body_truncated,omitempty" json:"body_truncated,omitempty"`
}

// Success reports whether the outcome counts towards RunSummary.Succeeded.
func (o Outcome) Success() bool {
	return o.Kind == OutcomeSuccess
}

// SoftError reports a protocol-level success that carried an application error.
func (o Outcome) SoftError() bool {
	return o.Kind == OutcomeSuccess && o.AppError != ""
}

// TestResult is created once per executed case and never mutated afterwards.
type TestResult struct {
	CaseNumber int            `yaml:"case_number" json:"case_number"`
	Case       TestCase       `yaml:"case" json:"case"`
	Outcome    Outcome        `yaml:"outcome" json:"outcome"`
	Response   map[string]any `yaml:"response,omitempty" json:"response,omitempty"`
	Duration   time.Duration  `yaml:"duration" json:"duration"`
	Curl       string         `yaml:"curl,omitempty" json:"curl,omitempty"`
}

// Succeeded reports whether the case counts as a success.
func (r TestResult) Succeeded() bool {
	return r.Outcome.Success()
}

// RunSummary folds a run's results into counters.
type RunSummary struct {
	Total           int `yaml:"total" json:"total"`
	Succeeded       int `yaml:"succeeded" json:"succeeded"`
	SoftErrors      int `yaml:"soft_errors" json:"soft_errors"`
	HTTPErrors      int `yaml:"http_errors" json:"http_errors"`
	TransportErrors int `yaml:"transport_errors" json:"transport_errors"`
}

// Summarize folds results into a RunSummary.
func Summarize(results []TestResult) RunSummary {
	s := RunSummary{Total: len(results)}
	for _, r := range results {
		switch r.Outcome.Kind {
		case OutcomeSuccess:
			s.Succeeded++
			if r.Outcome.SoftError() {
				s.SoftErrors++
			}
		case OutcomeHTTPError:
			s.HTTPErrors++
		case OutcomeTransportError:
			s.TransportErrors++
		}
	}
	return s
}

// Rate is the success percentage. An empty run has a rate of zero.
func (s RunSummary) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total) * 100
}

// RateString formats Rate with one decimal place.
func (s RunSummary) RateString() string {
	return fmt.Sprintf("%.1f%%", s.Rate())
}

// FullyPassing reports whether every case succeeded.
func (s RunSummary) FullyPassing() bool {
	return s.Succeeded == s.Total
}

// Run is one Endpoint Verifier execution against one service.
type Run struct {
	ID        string          `yaml:"id" json:"id"`
	Suite     string          `yaml:"suite" json:"suite"`
	Endpoint  ServiceEndpoint `yaml:"endpoint" json:"endpoint"`
	StartedAt utc.Time        `yaml:"started_at" json:"started_at"`
	Duration  time.Duration   `yaml:"duration" json:"duration"`
	Results   []TestResult    `yaml:"results" json:"results"`
	Summary   RunSummary      `yaml:"summary" json:"summary"`
}
